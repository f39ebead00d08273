// Command genmock generates deterministic climate dataset fixtures and their
// agriculture summaries for local development and pipeline tests. It runs the
// same summarizer as the service so the fixtures match real pipeline output.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -records-out data/mock/climate_records_generated.json \
//	  -summary-out data/mock/agriculture_summary_generated.json \
//	  -days 7 -per-day 4 -seed 240516
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/storm-data-agriculture/internal/domain"
	"github.com/couchcryptid/storm-data-agriculture/internal/observability"
	"github.com/couchcryptid/storm-data-agriculture/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

var baseDate = time.Date(2024, time.May, 16, 0, 0, 0, 0, time.UTC)

// climate describes the typical conditions generated for one location.
type climate struct {
	name       string
	meanTemp   float64
	meanHum    float64
	rainChance float64 // probability of measurable rain per observation
	meanWind   float64
}

var climates = []climate{
	{name: "Kabul", meanTemp: 26, meanHum: 35, rainChance: 0.1, meanWind: 16},
	{name: "Tirana", meanTemp: 21, meanHum: 68, rainChance: 0.4, meanWind: 12},
	{name: "Algiers", meanTemp: 24, meanHum: 55, rainChance: 0.2, meanWind: 20},
	{name: "Luanda", meanTemp: 29, meanHum: 74, rainChance: 0.3, meanWind: 14},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	recordsOut := flag.String("records-out", "", "output path for the climate dataset fixture")
	summaryOut := flag.String("summary-out", "", "output path for the summary fixture")
	days := flag.Int("days", 7, "number of consecutive days to generate")
	perDay := flag.Int("per-day", 4, "observations per location per day")
	seed := flag.Uint64("seed", 240516, "random seed")
	flag.Parse()

	if *recordsOut == "" || *summaryOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -records-out, -summary-out")
	}
	if *days <= 0 || *perDay <= 0 {
		return fmt.Errorf("-days and -per-day must be positive")
	}

	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	records := generate(rng, *days, *perDay)
	log.Printf("generated %d records for %d locations", len(records), len(climates))

	raws := make([]domain.RawClimateRecord, len(records))
	for i, r := range records {
		raws[i] = r.Raw()
	}

	// Fixed clock for reproducible generated_at timestamps.
	clock := clockwork.NewFakeClockAt(baseDate.AddDate(0, 0, *days).Add(6 * time.Hour))
	summarizer := pipeline.NewSummarizer(clock, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting(), pipeline.SourceKafka)

	summary, err := summarizer.Summarize(context.Background(), raws)
	if err != nil {
		return fmt.Errorf("summarize generated dataset: %w", err)
	}

	if err := writeJSON(*recordsOut, raws); err != nil {
		return fmt.Errorf("writing records fixture: %w", err)
	}
	log.Printf("wrote records fixture: %s", *recordsOut)

	if err := writeJSON(*summaryOut, summary); err != nil {
		return fmt.Errorf("writing summary fixture: %w", err)
	}
	log.Printf("wrote summary fixture: %s", *summaryOut)

	printStats(summary)
	return nil
}

// generate produces perDay observations per location per day, interleaving
// locations so grouping order is exercised.
func generate(rng *rand.Rand, days, perDay int) []domain.ClimateRecord {
	records := make([]domain.ClimateRecord, 0, days*perDay*len(climates))
	step := 24 * time.Hour / time.Duration(perDay)

	for d := 0; d < days; d++ {
		day := baseDate.AddDate(0, 0, d)
		for i := 0; i < perDay; i++ {
			for _, c := range climates {
				ts := day.Add(time.Duration(i)*step + time.Duration(rng.IntN(60))*time.Minute)
				records = append(records, domain.ClimateRecord{
					TemperatureCelsius: domain.RoundTenth(c.meanTemp + rng.NormFloat64()*5),
					Humidity:           domain.RoundTenth(clamp(c.meanHum+rng.NormFloat64()*12, 5, 100)),
					PrecipMM:           domain.RoundTenth(precipitation(rng, c.rainChance)),
					WindKPH:            domain.RoundTenth(math.Abs(c.meanWind + rng.NormFloat64()*10)),
					Timestamp:          ts,
					LocationName:       c.name,
				})
			}
		}
	}
	return records
}

// precipitation draws an exponential rainfall amount on rainy observations.
func precipitation(rng *rand.Rand, chance float64) float64 {
	if rng.Float64() >= chance {
		return 0
	}
	return rng.ExpFloat64() * 8
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(s domain.Summary) {
	fmt.Println()
	fmt.Printf("Records:     %d\n", s.RecordCount)
	fmt.Printf("Ideal days:  %d\n", s.IdealDayCount)
	fmt.Printf("Trend dates: %d\n", len(s.TemperatureTrend))
	fmt.Println("Risk events:")
	for _, r := range s.RiskEvents {
		fmt.Printf("  %-22s %d\n", r.Label, r.Count)
	}
	fmt.Println("Locations:")
	for _, l := range s.Locations {
		fmt.Printf("  %-10s %5.1f °C %5.1f %% %5.1f mm %5.1f km/h\n",
			l.Location, l.TemperatureCelsius, l.Humidity, l.PrecipMM, l.WindKPH)
	}
}
