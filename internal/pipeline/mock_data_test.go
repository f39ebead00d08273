package pipeline_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/storm-data-agriculture/internal/domain"
	"github.com/couchcryptid/storm-data-agriculture/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mockDatasetFile = "climate_records_240516.json"

func TestClimateSummarizer_WithMockDataset(t *testing.T) {
	summarizer := pipeline.NewSummarizer(
		clockwork.NewFakeClockAt(time.Date(2024, time.May, 19, 6, 0, 0, 0, time.UTC)),
		slog.Default(),
		newTestMetrics(),
		pipeline.SourceKafka,
	)

	out, err := summarizer.Transform(context.Background(), domain.RawEvent{
		Key:   []byte("climate-240516"),
		Value: readMockDataset(t),
	})
	require.NoError(t, err)

	var summary domain.Summary
	require.NoError(t, json.Unmarshal(out.Value, &summary))

	assert.Equal(t, 12, summary.RecordCount)
	require.NotNil(t, summary.Averages)
	assert.Equal(t, 12, summary.Averages.Records)

	t.Run("ideal farming days", func(t *testing.T) {
		assert.Equal(t, 5, summary.IdealDayCount)
		require.Len(t, summary.IdealDays, 5)
		for _, r := range summary.IdealDays {
			assert.True(t, domain.IsIdealFarmingDay(r), "%+v", r)
		}
		// Boundary row (18 °C, 75 %, 10 mm, 25 km/h) is inclusive.
		last := summary.IdealDays[len(summary.IdealDays)-1]
		assert.Equal(t, "Tirana", last.LocationName)
		assert.Equal(t, 18.0, last.TemperatureCelsius)
	})

	t.Run("risk events", func(t *testing.T) {
		assert.Equal(t, 1, summary.RiskEvents.Count(domain.RiskHeatStress))
		assert.Equal(t, 6, summary.RiskEvents.Count(domain.RiskDrought))
		assert.Equal(t, 1, summary.RiskEvents.Count(domain.RiskExcessRain))
		assert.Equal(t, 2, summary.RiskEvents.Count(domain.RiskHighWind))
	})

	t.Run("daily trends", func(t *testing.T) {
		for _, trend := range [][]domain.TrendPoint{summary.TemperatureTrend, summary.PrecipitationTrend} {
			require.Len(t, trend, 3)
			assert.Equal(t, "2024-05-16", trend[0].Date.String())
			assert.Equal(t, "2024-05-18", trend[2].Date.String())
			for i := 1; i < len(trend); i++ {
				assert.Equal(t, -1, trend[i-1].Date.Compare(trend[i].Date))
			}
		}
	})

	t.Run("locations in first-appearance order", func(t *testing.T) {
		require.Len(t, summary.Locations, 3)
		names := []string{summary.Locations[0].Location, summary.Locations[1].Location, summary.Locations[2].Location}
		assert.Equal(t, []string{"Kabul", "Tirana", "Algiers"}, names)
		for _, row := range summary.Locations {
			assert.Equal(t, domain.RoundTenth(row.TemperatureCelsius), row.TemperatureCelsius)
			assert.Equal(t, domain.RoundTenth(row.WindKPH), row.WindKPH)
		}
	})
}

func readMockDataset(t *testing.T) []byte {
	t.Helper()
	path := filepath.Join("..", "..", "data", "mock", mockDatasetFile)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}
