package domain

// ValidateSchema checks that a dataset declares exactly the expected column
// schema: all required columns present, none duplicated, each with the
// expected kind, and no unknown columns. It is a pure predicate over the
// declared columns; cross-field consistency (e.g. Year matching Date's year)
// is deliberately not checked.
func ValidateSchema(ds *Dataset) error {
	if ds == nil || len(ds.Columns) == 0 {
		return &SchemaError{Reason: "not a table-like dataset"}
	}

	required := make(map[string]Kind, 7)
	for _, c := range StandardColumns() {
		required[c.Name] = c.Kind
	}

	seen := make(map[string]bool, len(ds.Columns))
	for _, c := range ds.Columns {
		if seen[c.Name] {
			return &SchemaError{Column: c.Name, Reason: "duplicated"}
		}
		seen[c.Name] = true

		want, ok := required[c.Name]
		if !ok {
			return &SchemaError{Column: c.Name, Reason: "not part of the expected schema"}
		}
		if c.Kind != want {
			return &SchemaError{Column: c.Name, Reason: "expected kind " + want.String() + ", got " + c.Kind.String()}
		}
	}

	for _, c := range StandardColumns() {
		if !seen[c.Name] {
			return &SchemaError{Column: c.Name, Reason: "missing"}
		}
	}
	return nil
}
