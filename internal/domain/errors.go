package domain

import "fmt"

// SchemaError reports a dataset whose shape does not match the expected
// column schema. Column is empty when the dataset is not table-like at all.
type SchemaError struct {
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("schema: %s", e.Reason)
	}
	return fmt.Sprintf("schema: column %q: %s", e.Column, e.Reason)
}

// ArgumentError reports an invalid caller-supplied input. These are
// non-recoverable: the caller must correct the request.
type ArgumentError struct {
	Field  string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Field, e.Reason)
}

// EmptyRangeError reports that the resolved season window contains no rows.
type EmptyRangeError struct {
	Season    Season
	StartYear int
	EndYear   int
}

func (e *EmptyRangeError) Error() string {
	return fmt.Sprintf("no %s data in resolved window %d-%d", e.Season, e.StartYear, e.EndYear)
}

// EmptyExtremesError reports that no day in the window crosses even the
// mildest threshold after missing temperatures are removed.
type EmptyExtremesError struct {
	Season    Season
	Threshold float64
}

func (e *EmptyExtremesError) Error() string {
	return fmt.Sprintf("no %s day beyond the mildest threshold %g in the resolved window", e.Season, e.Threshold)
}
