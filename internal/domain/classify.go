package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TemperatureCategory is a severity band of the calendar grid, or the
// pseudo-category for days with no recorded temperature.
type TemperatureCategory string

const (
	CategoryModerate TemperatureCategory = "moderate" // mildest band
	CategorySevere   TemperatureCategory = "severe"
	CategoryExtreme  TemperatureCategory = "extreme" // open-ended band
	CategoryMissing  TemperatureCategory = "missing"
)

// Thresholds are the three ascending cutoffs [t1 < t2 < t3] that define the
// severity bands. For Summer, larger is more extreme; for Winter the scale
// is read from the other end, so t1 marks the most severe band.
type Thresholds [3]float64

// Validate checks that the cutoffs are strictly ascending.
func (t Thresholds) Validate() error {
	if !(t[0] < t[1] && t[1] < t[2]) {
		return &ArgumentError{
			Field:  "thresholds",
			Reason: fmt.Sprintf("must be strictly ascending, got [%g %g %g]", t[0], t[1], t[2]),
		}
	}
	return nil
}

// Band is one severity band with its display label and color.
type Band struct {
	Category TemperatureCategory `json:"category"`
	Label    string              `json:"label"`
	Color    string              `json:"color"`
}

// ClassifiedDay is a single day assigned to a category.
type ClassifiedDay struct {
	Record          DailyRecord
	SeasonStartYear int
	Category        TemperatureCategory
}

// Classification is the output of threshold bucketing over a normalized
// window: the extreme days, the missing days, and the per-season-year count
// of days beyond the most severe threshold.
type Classification struct {
	Days         []ClassifiedDay
	MissingDays  []ClassifiedDay
	SevereCounts map[int]int // season start year -> days in the open-ended band
	Precision    int
	Bands        []Band
}

// Classify buckets each day of a normalized window into severity bands.
// A nil precision selects dynamic detection: the maximum number of
// fractional digits observed in the temperature column. Every season-year in
// the window appears in SevereCounts even when its count is zero, so the
// grid has no silent gaps. Returns EmptyExtremesError when no non-missing
// day crosses even the mildest threshold.
func Classify(rows []DailyRecord, p *SeasonPolicy, w *SeasonWindow, th Thresholds, precision *int) (*Classification, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	prec, err := resolvePrecision(rows, precision)
	if err != nil {
		return nil, err
	}

	c := &Classification{
		SevereCounts: make(map[int]int),
		Precision:    prec,
		Bands:        bandsFor(p, th, prec),
	}
	for _, y := range w.SeasonStartYears(p) {
		c.SevereCounts[y] = 0
	}

	for _, r := range rows {
		seasonYear := p.SeasonStartYear(r.Year, r.Month)
		if r.Missing() {
			c.MissingDays = append(c.MissingDays, ClassifiedDay{
				Record: r, SeasonStartYear: seasonYear, Category: CategoryMissing,
			})
			continue
		}
		cat := p.categorize(*r.Temperature, th)
		if cat == "" {
			continue
		}
		c.Days = append(c.Days, ClassifiedDay{
			Record: r, SeasonStartYear: seasonYear, Category: cat,
		})
		if cat == CategoryExtreme {
			c.SevereCounts[seasonYear]++
		}
	}

	if len(c.Days) == 0 {
		return nil, &EmptyExtremesError{Season: p.Season, Threshold: p.mildestThreshold(th)}
	}
	return c, nil
}

// categorize assigns a temperature to a band, or "" when the day is not
// extreme. Summer counts strictly-above as extreme; Winter counts
// at-or-below.
func (p *SeasonPolicy) categorize(t float64, th Thresholds) TemperatureCategory {
	if p.aboveIsExtreme {
		switch {
		case t > th[2]:
			return CategoryExtreme
		case t > th[1]:
			return CategorySevere
		case t > th[0]:
			return CategoryModerate
		default:
			return ""
		}
	}
	switch {
	case t <= th[0]:
		return CategoryExtreme
	case t <= th[1]:
		return CategorySevere
	case t <= th[2]:
		return CategoryModerate
	default:
		return ""
	}
}

// mildestThreshold is the cutoff a day must cross to count as extreme at
// all: t1 for Summer, t3 for Winter.
func (p *SeasonPolicy) mildestThreshold(th Thresholds) float64 {
	if p.aboveIsExtreme {
		return th[0]
	}
	return th[2]
}

// bandsFor builds the legend bands, mildest first. Closed band labels start
// one precision increment past the cutoff so boundary values read
// unambiguously: with thresholds [30 35 40] at one decimal, the mildest
// Summer band is "30.1-35.0".
func bandsFor(p *SeasonPolicy, th Thresholds, prec int) []Band {
	inc := math.Pow(10, -float64(prec))
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', prec, 64) }

	var labels [3]string
	if p.aboveIsExtreme {
		labels = [3]string{
			f(th[0]+inc) + "-" + f(th[1]),
			f(th[1]+inc) + "-" + f(th[2]),
			f(th[2]+inc) + "+",
		}
	} else {
		labels = [3]string{
			f(th[1]+inc) + "-" + f(th[2]),
			f(th[0]+inc) + "-" + f(th[1]),
			f(th[0]) + " & below",
		}
	}

	cats := [3]TemperatureCategory{CategoryModerate, CategorySevere, CategoryExtreme}
	bands := make([]Band, 0, 3)
	for i := range cats {
		bands = append(bands, Band{Category: cats[i], Label: labels[i], Color: p.bandColor(i + 1)})
	}
	return bands
}

// resolvePrecision returns the explicit precision when given, otherwise the
// maximum count of fractional digits observed in the temperature column.
func resolvePrecision(rows []DailyRecord, precision *int) (int, error) {
	if precision != nil {
		if *precision < 0 {
			return 0, &ArgumentError{Field: "precision", Reason: "must not be negative"}
		}
		return *precision, nil
	}

	maxDigits := 0
	for _, r := range rows {
		if r.Missing() {
			continue
		}
		if d := fractionalDigits(*r.Temperature); d > maxDigits {
			maxDigits = d
		}
	}
	return maxDigits, nil
}

func fractionalDigits(v float64) int {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}
