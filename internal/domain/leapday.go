package domain

import "time"

// NormalizeLeapDays pads a window's rows so February 29 appears uniformly
// across all season-years. When at least one in-window February belongs to a
// leap year, every season-year that has a February 28 row but no February 29
// row gains a synthetic missing-temperature row cloned from the February 28
// row's location and type. When no in-window year is a leap year, rows are
// returned unchanged and February 29 is simply absent everywhere.
//
// Synthetic rows for non-leap years have no valid time.Time date, so the
// result is re-sorted on the (year, month, day) component fields.
func NormalizeLeapDays(rows []DailyRecord, p *SeasonPolicy, w *SeasonWindow) []DailyRecord {
	if !w.LeapPadded(p) {
		return rows
	}

	feb28 := make(map[int]DailyRecord)
	feb29 := make(map[int]bool)
	for _, r := range rows {
		if r.Month != 2 {
			continue
		}
		switch r.Day {
		case 28:
			feb28[r.Year] = r
		case 29:
			feb29[r.Year] = true
		}
	}

	out := rows
	for year, base := range feb28 {
		if feb29[year] {
			continue
		}
		synthetic := DailyRecord{
			Year:     year,
			Month:    2,
			Day:      29,
			Location: base.Location,
			Type:     base.Type,
		}
		if isLeapYear(year) {
			synthetic.Date = time.Date(year, time.February, 29, 0, 0, 0, 0, time.UTC)
		}
		out = append(out, synthetic)
	}

	sortRecords(out)
	return out
}
