package domain

import (
	"fmt"
	"time"
)

// SeasonPolicy bundles the per-season rules that would otherwise be
// scattered conditionals: which months belong to the season, which direction
// counts as extreme, how the year window expands, and how labels are
// formatted. Summer and Winter are deliberately not mirror images; the
// asymmetries are part of the product contract.
type SeasonPolicy struct {
	Season      Season
	DefaultType ObsType

	// months lists the season's months in drawing order. Summer spans the
	// year boundary, so its order starts in November.
	months []time.Month

	// aboveIsExtreme is true when temperatures above a threshold are
	// extreme (Summer). Winter treats at-or-below as extreme.
	aboveIsExtreme bool

	// crossesYears marks seasons spanning two calendar years. It drives
	// window expansion, season-year labeling, and leap-day handling.
	crossesYears bool

	// palette holds the band colors, mildest first.
	palette [3]string
}

var summerPolicy = &SeasonPolicy{
	Season:         SeasonSummer,
	DefaultType:    TypeMaximum,
	months:         []time.Month{time.November, time.December, time.January, time.February, time.March},
	aboveIsExtreme: true,
	crossesYears:   true,
	palette:        [3]string{"#ffb347", "#ff6e40", "#b71c1c"},
}

var winterPolicy = &SeasonPolicy{
	Season:         SeasonWinter,
	DefaultType:    TypeMinimum,
	months:         []time.Month{time.May, time.June, time.July, time.August, time.September},
	aboveIsExtreme: false,
	crossesYears:   false,
	palette:        [3]string{"#81d4fa", "#2979ff", "#0d47a1"},
}

// PolicyFor resolves a season name to its policy.
func PolicyFor(s Season) (*SeasonPolicy, error) {
	switch s {
	case SeasonSummer:
		return summerPolicy, nil
	case SeasonWinter:
		return winterPolicy, nil
	default:
		return nil, &ArgumentError{Field: "season", Reason: fmt.Sprintf("unknown season %q", string(s))}
	}
}

// InSeason reports whether a calendar month belongs to the season.
func (p *SeasonPolicy) InSeason(month int) bool {
	if p.crossesYears {
		return month < 4 || month > 10
	}
	return month >= 5 && month <= 9
}

// SeasonStartYear maps a record's calendar year and month to the year its
// season began. A Summer date in Jan-Mar belongs to the season that started
// the previous November.
func (p *SeasonPolicy) SeasonStartYear(year, month int) int {
	if p.crossesYears && month < 4 {
		return year - 1
	}
	return year
}

// HasFebruary reports whether the season contains February, i.e. whether
// leap-day normalization applies at all.
func (p *SeasonPolicy) HasFebruary() bool {
	for _, m := range p.months {
		if m == time.February {
			return true
		}
	}
	return false
}

// YearLabel formats a season-year for the vertical axis: "1995-96" for
// Summer (the season straddles the boundary), plain "1995" for Winter.
func (p *SeasonPolicy) YearLabel(startYear int) string {
	if p.crossesYears {
		return fmt.Sprintf("%d-%02d", startYear, (startYear+1)%100)
	}
	return fmt.Sprintf("%d", startYear)
}

// bandColor returns the display color of a severity band (1 = mildest).
func (p *SeasonPolicy) bandColor(band int) string {
	return p.palette[band-1]
}

// daysIn returns the length of a season month, with February padded to 29
// when the window contains a leap year so day positions stay aligned.
func daysIn(m time.Month, leapPadded bool) int {
	switch m {
	case time.February:
		if leapPadded {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// DayNumber is the 1-based horizontal position of a date within its season.
// The offset of months after February shifts by one when the window is
// leap-padded.
func (p *SeasonPolicy) DayNumber(month, day int, leapPadded bool) int {
	offset := 0
	for _, m := range p.months {
		if int(m) == month {
			return offset + day
		}
		offset += daysIn(m, leapPadded)
	}
	return 0
}

// SeasonLength is the number of day positions a season occupies.
func (p *SeasonPolicy) SeasonLength(leapPadded bool) int {
	n := 0
	for _, m := range p.months {
		n += daysIn(m, leapPadded)
	}
	return n
}

// MonthOffsets returns the 1-based day position of each season month's first
// day, in drawing order.
func (p *SeasonPolicy) MonthOffsets(leapPadded bool) []int {
	out := make([]int, 0, len(p.months))
	offset := 0
	for _, m := range p.months {
		out = append(out, offset+1)
		offset += daysIn(m, leapPadded)
	}
	return out
}

// Months returns the season's months in drawing order.
func (p *SeasonPolicy) Months() []time.Month {
	return p.months
}
