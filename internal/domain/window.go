package domain

import "fmt"

// SeasonWindow is the resolved year range a grid is drawn over, together
// with the data bounds it was clamped against. It is derived per request
// and never stored.
type SeasonWindow struct {
	Season           Season `json:"season"`
	StartYear        int    `json:"start_year"`
	EndYear          int    `json:"end_year"`
	MinAvailableYear int    `json:"min_available_year"`
	MaxAvailableYear int    `json:"max_available_year"`
}

// Notice is an advisory message about a silent, non-fatal adjustment made
// while resolving a request, such as clamping an out-of-range year.
type Notice string

// DefaultYearRange returns the year window used when the caller supplies
// none: the thirty years up to today.
func DefaultYearRange() (start, end int) {
	end = clock.Now().Year()
	return end - 30, end
}

// ResolveWindow computes the effective season window for one station series
// and returns the rows that fall inside it. Requested years outside the
// available data are clamped with an advisory notice rather than an error;
// a window that ends up containing no rows at all is an EmptyRangeError.
//
// The series must already be filtered to a single location and type.
func ResolveWindow(series []DailyRecord, p *SeasonPolicy, reqStart, reqEnd int) (*SeasonWindow, []DailyRecord, []Notice, error) {
	if reqStart > reqEnd {
		return nil, nil, nil, &ArgumentError{
			Field:  "start_year",
			Reason: fmt.Sprintf("start year %d is after end year %d", reqStart, reqEnd),
		}
	}

	seasonal := make([]DailyRecord, 0, len(series))
	minAvail, maxAvail := 0, 0
	for _, r := range series {
		if !p.InSeason(r.Month) {
			continue
		}
		seasonal = append(seasonal, r)
		if r.Missing() {
			continue
		}
		if minAvail == 0 || r.Year < minAvail {
			minAvail = r.Year
		}
		if r.Year > maxAvail {
			maxAvail = r.Year
		}
	}
	if minAvail == 0 {
		return nil, nil, nil, &EmptyRangeError{Season: p.Season, StartYear: reqStart, EndYear: reqEnd}
	}

	start, end := reqStart, reqEnd
	var notices []Notice
	if start < minAvail {
		start = minAvail
		notices = append(notices, Notice(fmt.Sprintf(
			"requested start year %d predates available data; using %d", reqStart, minAvail)))
	}
	if end > maxAvail {
		end = maxAvail
		notices = append(notices, Notice(fmt.Sprintf(
			"requested end year %d postdates available data; using %d", reqEnd, maxAvail)))
	}

	start, end = p.expandWindow(start, end, minAvail, maxAvail)

	w := &SeasonWindow{
		Season:           p.Season,
		StartYear:        start,
		EndYear:          end,
		MinAvailableYear: minAvail,
		MaxAvailableYear: maxAvail,
	}

	rows := filterWindow(seasonal, p, w)
	if len(rows) == 0 {
		return nil, nil, nil, &EmptyRangeError{Season: p.Season, StartYear: start, EndYear: end}
	}
	return w, rows, notices, nil
}

// expandWindow applies the season's boundary rules to a clamped year range.
//
// Summer widens one year at each edge because a season straddles the year
// boundary: a request for 2000-2010 includes the 1999-2000 and 2010-11
// summers. A window collapsed entirely outside the data is forced to the
// minimal two seasons at the nearer boundary. Winter does neither; a
// collapsed winter window anchors at the boundary without widening.
func (p *SeasonPolicy) expandWindow(start, end, minAvail, maxAvail int) (int, int) {
	if !p.crossesYears {
		if start > maxAvail {
			return maxAvail, maxAvail
		}
		if end < minAvail {
			return minAvail, minAvail
		}
		return start, end
	}

	start--
	end++
	if start < minAvail {
		start = minAvail
	}
	if end > maxAvail {
		end = maxAvail
	}
	if start >= maxAvail {
		return maxAvail - 2, maxAvail
	}
	if end <= minAvail {
		return minAvail, minAvail + 2
	}
	return start, end
}

// SeasonStartYears lists the start year of every season-year in the window,
// chronologically. A Summer window of years [s, e] holds the seasons
// starting s..e-1; a Winter window holds one season per year s..e.
func (w *SeasonWindow) SeasonStartYears(p *SeasonPolicy) []int {
	last := w.EndYear
	if p.crossesYears {
		last--
	}
	var out []int
	for y := w.StartYear; y <= last; y++ {
		out = append(out, y)
	}
	return out
}

// SeasonsAgo converts a season start year to its reverse-chronological
// index: 1 for the window's most recent season.
func (w *SeasonWindow) SeasonsAgo(p *SeasonPolicy, startYear int) int {
	years := w.SeasonStartYears(p)
	return years[len(years)-1] - startYear + 1
}

// FebruaryYears lists the calendar years whose February falls inside the
// window's seasons. Empty for seasons without a February.
func (w *SeasonWindow) FebruaryYears(p *SeasonPolicy) []int {
	if !p.HasFebruary() {
		return nil
	}
	var out []int
	for _, y := range w.SeasonStartYears(p) {
		feb := y
		if p.crossesYears {
			feb = y + 1
		}
		out = append(out, feb)
	}
	return out
}

// LeapPadded reports whether any in-window February belongs to a leap year,
// which forces a Feb 29 position in every season-year.
func (w *SeasonWindow) LeapPadded(p *SeasonPolicy) bool {
	for _, y := range w.FebruaryYears(p) {
		if isLeapYear(y) {
			return true
		}
	}
	return false
}

func isLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// filterWindow keeps the rows whose season-year falls inside the window.
func filterWindow(seasonal []DailyRecord, p *SeasonPolicy, w *SeasonWindow) []DailyRecord {
	last := w.EndYear
	if p.crossesYears {
		last--
	}
	var out []DailyRecord
	for _, r := range seasonal {
		y := p.SeasonStartYear(r.Year, r.Month)
		if y >= w.StartYear && y <= last {
			out = append(out, r)
		}
	}
	return out
}
