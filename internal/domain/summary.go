package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Summary is the agriculture result bundle consumed by the rendering layer.
type Summary struct {
	RecordCount int `json:"record_count"`
	// Averages is nil when the dataset is empty ("no data").
	Averages           *Averages           `json:"averages"`
	IdealDayCount      int                 `json:"ideal_day_count"`
	IdealDays          []ClimateRecord     `json:"ideal_days"`
	TemperatureTrend   []TrendPoint        `json:"temperature_trend"`
	PrecipitationTrend []TrendPoint        `json:"precipitation_trend"`
	RiskEvents         RiskCounts          `json:"risk_events"`
	Locations          []LocationAggregate `json:"locations"`
	GeneratedAt        time.Time           `json:"generated_at"`
}

// Empty reports whether the summary was computed over zero records.
func (s Summary) Empty() bool {
	return s.RecordCount == 0
}

// Summarize validates raws and computes the full summary. A validation failure
// returns the error and no summary.
func Summarize(raws []RawClimateRecord) (Summary, error) {
	records, err := Validate(raws)
	if err != nil {
		return Summary{}, err
	}
	return SummarizeRecords(records), nil
}

// SummarizeRecords computes the summary over already validated records.
// GeneratedAt is left zero for the caller to stamp.
func SummarizeRecords(records []ClimateRecord) Summary {
	ideal := ClassifyIdealDays(records)

	// Both fields are numeric, so DailyTrend cannot fail here.
	tempTrend, _ := DailyTrend(records, FieldTemperature)
	precipTrend, _ := DailyTrend(records, FieldPrecip)

	s := Summary{
		RecordCount:        len(records),
		IdealDayCount:      len(ideal),
		IdealDays:          ideal,
		TemperatureTrend:   tempTrend,
		PrecipitationTrend: precipTrend,
		RiskEvents:         RiskEventCounts(records),
		Locations:          LocationSummary(records),
	}
	if avg := ComputeAverages(records); !avg.NoData() {
		s.Averages = &avg
	}
	return s
}

// ErrInvalidDataset is matched by every DecodeDataset failure.
var ErrInvalidDataset = errors.New("decode climate dataset")

// DecodeDataset parses a JSON array of climate rows.
func DecodeDataset(data []byte) ([]RawClimateRecord, error) {
	var raws []RawClimateRecord
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}
	return raws, nil
}

// SerializeSummary marshals a summary into an output event keyed by key.
func SerializeSummary(key []byte, s Summary) (OutputEvent, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize summary: %w", err)
	}
	return OutputEvent{
		Key:   key,
		Value: data,
		Headers: map[string]string{
			"record_count": strconv.Itoa(s.RecordCount),
			"generated_at": s.GeneratedAt.UTC().Format(time.RFC3339),
		},
	}, nil
}
