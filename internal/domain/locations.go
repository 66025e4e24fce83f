package domain

import "sort"

// Locations returns the distinct station names in the dataset, sorted
// ascending.
func Locations(ds *Dataset) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range ds.Records {
		if seen[r.Location] {
			continue
		}
		seen[r.Location] = true
		out = append(out, r.Location)
	}
	sort.Strings(out)
	return out
}

// DefaultLocation picks the station used when the caller names none: the
// last entry of the sorted list. The rule is inherited from the upstream
// product, where the lexicographically last of same-city stations tends to
// hold the longer record; do not change it without sign-off.
func DefaultLocation(ds *Dataset) string {
	locs := Locations(ds)
	if len(locs) == 0 {
		return ""
	}
	return locs[len(locs)-1]
}
