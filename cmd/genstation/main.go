// Command genstation writes synthetic station archives in the same zipped
// CSV layout the fetch adapter consumes, for local development without
// hitting the real archive host.
//
// Usage:
//
//	go run ./cmd/genstation -station 086338 -name "MELBOURNE (OLYMPIC PARK)" \
//	  -start 1990 -end 2020 -out ./data/mock
package main

import (
	"archive/zip"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	station := flag.String("station", "086338", "station identifier")
	name := flag.String("name", "MELBOURNE (OLYMPIC PARK)", "station display name")
	startYear := flag.Int("start", 1990, "first calendar year")
	endYear := flag.Int("end", 2020, "last calendar year")
	outDir := flag.String("out", "data/mock", "output directory")
	seed := flag.Int64("seed", 1, "random seed for reproducible output")
	flag.Parse()

	if *startYear > *endYear {
		return fmt.Errorf("-start %d is after -end %d", *startYear, *endYear)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(*seed))
	for _, m := range []struct {
		measure string
		column  string
		base    float64
	}{
		{"tmax", "maximum temperature (degrees C)", 20},
		{"tmin", "minimum temperature (degrees C)", 10},
	} {
		path := filepath.Join(*outDir, fmt.Sprintf("%s.%s.daily.zip", m.measure, *station))
		if err := writeArchive(path, m.measure, m.column, *station, *name, *startYear, *endYear, m.base, rng); err != nil {
			return err
		}
		log.Printf("wrote %s", path)
	}
	return nil
}

// writeArchive generates one zipped daily CSV. Temperatures follow a yearly
// sine around base with noise; roughly one day in two hundred is left blank
// to exercise missing-data handling downstream.
func writeArchive(path, measure, column, station, name string, startYear, endYear int, base float64, rng *rand.Rand) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	entry, err := zw.Create(fmt.Sprintf("%s.%s.daily.csv", measure, station))
	if err != nil {
		return err
	}

	cw := csv.NewWriter(entry)
	if err := cw.Write([]string{"date", column, "site number", "site name"}); err != nil {
		return err
	}

	first := time.Date(startYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(endYear, time.December, 31, 0, 0, 0, 0, time.UTC)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		temp := ""
		if rng.Intn(200) != 0 {
			// Southern-hemisphere seasonality: peak in January.
			phase := 2 * math.Pi * float64(d.YearDay()) / 365
			v := base + 12*math.Cos(phase) + rng.NormFloat64()*3
			temp = strconv.FormatFloat(math.Round(v*10)/10, 'f', 1, 64)
		}
		if err := cw.Write([]string{d.Format("2006-01-02"), temp, station, name}); err != nil {
			return err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return zw.Close()
}
