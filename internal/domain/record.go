package domain

import (
	"sort"
	"time"
)

// ObsType distinguishes daily maximum from daily minimum series.
type ObsType string

const (
	TypeMaximum ObsType = "Maximum"
	TypeMinimum ObsType = "Minimum"
)

// Season selects which half of the year a calendar grid covers.
type Season string

const (
	SeasonSummer Season = "Summer"
	SeasonWinter Season = "Winter"
)

// Kind is the declared storage type of a dataset column.
type Kind uint8

const (
	KindDate Kind = iota + 1
	KindNumeric
	KindText
)

// String returns the kind name used in schema error messages.
func (k Kind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindNumeric:
		return "numeric"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Column describes one declared column of a tabular dataset.
type Column struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// DailyRecord is one observation row: a single day's temperature for one
// station and one observation type.
//
// Date mirrors the Year/Month/Day fields for real calendar dates. Synthetic
// rows inserted by leap-day normalization carry February 29 of a non-leap
// year, which has no time.Time representation, so Date is the zero value
// there and the component fields are authoritative for ordering.
type DailyRecord struct {
	Date        time.Time `json:"date"`
	Year        int       `json:"year"`
	Month       int       `json:"month"`
	Day         int       `json:"day"`
	Location    string    `json:"location"`
	Type        ObsType   `json:"type"`
	Temperature *float64  `json:"temperature"` // nil when the observation is missing
}

// Missing reports whether the row has no recorded temperature.
func (r DailyRecord) Missing() bool { return r.Temperature == nil }

// Dataset is an ordered collection of daily records together with the column
// schema declared by whichever collaborator produced it.
type Dataset struct {
	Columns []Column      `json:"columns"`
	Records []DailyRecord `json:"records"`
}

// StandardColumns is the column schema every valid temperature dataset
// must declare.
func StandardColumns() []Column {
	return []Column{
		{Name: "Date", Kind: KindDate},
		{Name: "Year", Kind: KindNumeric},
		{Name: "Month", Kind: KindNumeric},
		{Name: "Day", Kind: KindNumeric},
		{Name: "Location", Kind: KindText},
		{Name: "Type", Kind: KindText},
		{Name: "Temperature", Kind: KindNumeric},
	}
}

// BuildDataset assembles raw rows into a canonical dataset: sorted by
// (date, location, type), deduplicated on that key (first occurrence wins),
// and gap-filled so every series has a row for every calendar date between
// its first and last observation, with nil temperature where no data exists.
// Input rows must carry valid Date values.
func BuildDataset(rows []DailyRecord) *Dataset {
	sorted := make([]DailyRecord, len(rows))
	copy(sorted, rows)
	sortRecords(sorted)

	deduped := dedupRecords(sorted)
	filled := gapFill(deduped)
	sortRecords(filled)

	return &Dataset{Columns: StandardColumns(), Records: filled}
}

// sortRecords orders rows by (year, month, day, location, type). Component
// fields are used instead of Date so synthetic leap-day rows sort correctly.
func sortRecords(rows []DailyRecord) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if a.Location != b.Location {
			return a.Location < b.Location
		}
		return a.Type < b.Type
	})
}

type recordKey struct {
	year, month, day int
	location         string
	typ              ObsType
}

func keyOf(r DailyRecord) recordKey {
	return recordKey{r.Year, r.Month, r.Day, r.Location, r.Type}
}

func dedupRecords(sorted []DailyRecord) []DailyRecord {
	seen := make(map[recordKey]bool, len(sorted))
	out := sorted[:0]
	for _, r := range sorted {
		k := keyOf(r)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

// gapFill inserts nil-temperature rows for calendar dates absent from a
// (location, type) series, between that series' first and last dates.
func gapFill(rows []DailyRecord) []DailyRecord {
	type series struct{ first, last time.Time }
	ranges := make(map[seriesKey]*series)
	present := make(map[recordKey]bool, len(rows))

	for _, r := range rows {
		present[keyOf(r)] = true
		if r.Date.IsZero() {
			continue
		}
		k := seriesKey{r.Location, r.Type}
		s, ok := ranges[k]
		if !ok {
			ranges[k] = &series{first: r.Date, last: r.Date}
			continue
		}
		if r.Date.Before(s.first) {
			s.first = r.Date
		}
		if r.Date.After(s.last) {
			s.last = r.Date
		}
	}

	out := rows
	for k, s := range ranges {
		for d := s.first; !d.After(s.last); d = d.AddDate(0, 0, 1) {
			rk := recordKey{d.Year(), int(d.Month()), d.Day(), k.location, k.typ}
			if present[rk] {
				continue
			}
			out = append(out, DailyRecord{
				Date:     d,
				Year:     d.Year(),
				Month:    int(d.Month()),
				Day:      d.Day(),
				Location: k.location,
				Type:     k.typ,
			})
		}
	}
	return out
}

type seriesKey struct {
	location string
	typ      ObsType
}

// FilterSeries returns the rows of one (location, type) series.
func FilterSeries(ds *Dataset, location string, typ ObsType) []DailyRecord {
	var out []DailyRecord
	for _, r := range ds.Records {
		if r.Location == location && r.Type == typ {
			out = append(out, r)
		}
	}
	return out
}
