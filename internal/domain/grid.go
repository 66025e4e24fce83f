package domain

// missingColor is the legend color of the missing-data pseudo-category.
const missingColor = "#9e9e9e"

// GridCell is one marked day of the calendar grid: its horizontal day
// position, its vertical season-year position, and the band it falls in.
type GridCell struct {
	DayNumber  int                 `json:"day_number"`
	SeasonsAgo int                 `json:"seasons_ago"`
	Category   TemperatureCategory `json:"category"`
}

// SeasonCount annotates one season-year row with its count of days beyond
// the most severe threshold.
type SeasonCount struct {
	SeasonsAgo  int    `json:"seasons_ago"`
	Label       string `json:"label"`
	ExtremeDays int    `json:"extreme_days"`
}

// AxisTick is a labeled position on a grid axis.
type AxisTick struct {
	Position int    `json:"position"`
	Label    string `json:"label"`
}

// CalendarGrid is the renderable hand-off structure: marked cells, the
// per-season-year extreme counts, the legend, and both axes. It carries no
// rendering logic; an external charting collaborator consumes it as-is.
type CalendarGrid struct {
	Location  string  `json:"location"`
	Season    Season  `json:"season"`
	Type      ObsType `json:"type"`
	StartYear int     `json:"start_year"`
	EndYear   int     `json:"end_year"`

	SeasonLength int           `json:"season_length"` // day positions per season-year
	Cells        []GridCell    `json:"cells"`
	Counts       []SeasonCount `json:"counts"`
	Legend       []Band        `json:"legend"`
	MonthTicks   []AxisTick    `json:"month_ticks"`
	YearTicks    []AxisTick    `json:"year_ticks"`

	Notices []string `json:"notices,omitempty"`
}

// AssembleGrid merges a classification with its window's axis metadata into
// the final grid. Missing-temperature days become cells of the missing
// pseudo-category, and the legend gains a missing entry only when such cells
// exist. Month tick offsets account for leap padding, which shifts every
// position from March onward.
func AssembleGrid(c *Classification, p *SeasonPolicy, w *SeasonWindow, location string, typ ObsType) *CalendarGrid {
	leapPadded := w.LeapPadded(p)

	g := &CalendarGrid{
		Location:     location,
		Season:       p.Season,
		Type:         typ,
		StartYear:    w.StartYear,
		EndYear:      w.EndYear,
		SeasonLength: p.SeasonLength(leapPadded),
		Legend:       c.Bands,
	}

	appendCells := func(days []ClassifiedDay) {
		for _, d := range days {
			g.Cells = append(g.Cells, GridCell{
				DayNumber:  p.DayNumber(d.Record.Month, d.Record.Day, leapPadded),
				SeasonsAgo: w.SeasonsAgo(p, d.SeasonStartYear),
				Category:   d.Category,
			})
		}
	}
	appendCells(c.Days)
	appendCells(c.MissingDays)

	if len(c.MissingDays) > 0 {
		g.Legend = append(g.Legend, Band{Category: CategoryMissing, Label: "No data", Color: missingColor})
	}

	years := w.SeasonStartYears(p)
	for _, y := range years {
		ago := w.SeasonsAgo(p, y)
		g.Counts = append(g.Counts, SeasonCount{
			SeasonsAgo:  ago,
			Label:       p.YearLabel(y),
			ExtremeDays: c.SevereCounts[y],
		})
		g.YearTicks = append(g.YearTicks, AxisTick{Position: ago, Label: p.YearLabel(y)})
	}

	offsets := p.MonthOffsets(leapPadded)
	for i, m := range p.Months() {
		g.MonthTicks = append(g.MonthTicks, AxisTick{Position: offsets[i], Label: m.String()[:3]})
	}

	return g
}
