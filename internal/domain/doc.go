// Package domain models Australian daily temperature records and the
// transformation of one station's series into a season-aligned,
// extreme-temperature calendar grid.
//
// # Data Source
//
// Daily records originate from Bureau of Meteorology (BOM) long-term station
// archives. The fetch adapter downloads a station's zipped daily CSV, maps
// the temperature column (any column whose name contains "deg") onto the
// canonical schema, and gap-fills so every calendar date between a series'
// first and last observation has a row, with a nil temperature where the
// station reported nothing. The core depends only on that normalized shape,
// never on how it was obtained.
//
// # Seasons
//
// A Summer season spans the year boundary: November through March, labeled
// by both years ("1995-96"). A Winter season is May through September within
// one calendar year, labeled plainly ("1995"). The grid's vertical unit is
// one such season-year, indexed reverse-chronologically (seasons_ago = 1 is
// the most recent); the horizontal unit is the 1-based day position within
// the season.
//
// Because Summer crosses the boundary, its resolved year window widens by
// one year at each edge, and a window requested entirely outside the data is
// forced to the two seasons nearest the boundary. Winter does neither. The
// asymmetry is inherited from the upstream product and is intentional.
//
// # Leap days
//
// When any in-window February belongs to a leap year, every season-year
// gets a February 29 position; season-years without one gain a synthetic
// missing-temperature row cloned from their February 28 row. This keeps day
// positions aligned across rows of the grid, at the cost of shifting every
// March offset by one in leap-padded windows.
//
// # Severity bands
//
// Three ascending thresholds [t1 < t2 < t3] define three ordered bands.
// Summer reads them upward (above t3 is the open-ended band, counted per
// season-year as the extreme-day annotation); Winter reads them downward
// (at-or-below t1 is open-ended). Band boundary labels are formatted at the
// column's decimal precision, with closed-band lower bounds shifted by one
// precision increment so a boundary value is never ambiguous.
package domain
