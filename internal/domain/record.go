package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Field names a required dataset column.
type Field string

const (
	FieldTemperature Field = "temperature_celsius"
	FieldHumidity    Field = "humidity"
	FieldPrecip      Field = "precip_mm"
	FieldWind        Field = "wind_kph"
	FieldTimestamp   Field = "timestamp"
	FieldLocation    Field = "location_name"
)

// RequiredFields lists every column a dataset must carry, in the order
// [Validate] checks them.
var RequiredFields = []Field{
	FieldTemperature,
	FieldHumidity,
	FieldPrecip,
	FieldWind,
	FieldTimestamp,
	FieldLocation,
}

// Numeric reports whether the field holds a float measurement.
func (f Field) Numeric() bool {
	switch f {
	case FieldTemperature, FieldHumidity, FieldPrecip, FieldWind:
		return true
	default:
		return false
	}
}

// timestampLayouts are tried in order when decoding a row timestamp.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Timestamp is a row timestamp that accepts the dataset's "2006-01-02 15:04"
// layout as well as RFC 3339. Layouts without a zone are read as UTC.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parse timestamp: %w", err)
	}
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("parse timestamp: unrecognized layout %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(time.RFC3339))
}

// RawClimateRecord is one dataset row as decoded from the wire. Pointer fields
// stay nil when the column is absent so missing data can be told apart from zero.
type RawClimateRecord struct {
	TemperatureCelsius *float64   `json:"temperature_celsius"`
	Humidity           *float64   `json:"humidity"`
	PrecipMM           *float64   `json:"precip_mm"`
	WindKPH            *float64   `json:"wind_kph"`
	Timestamp          *Timestamp `json:"timestamp"`
	LocationName       *string    `json:"location_name"`
}

// has reports whether the row carries a value for the field.
func (r RawClimateRecord) has(f Field) bool {
	switch f {
	case FieldTemperature:
		return r.TemperatureCelsius != nil
	case FieldHumidity:
		return r.Humidity != nil
	case FieldPrecip:
		return r.PrecipMM != nil
	case FieldWind:
		return r.WindKPH != nil
	case FieldTimestamp:
		return r.Timestamp != nil && !r.Timestamp.IsZero()
	case FieldLocation:
		return r.LocationName != nil
	default:
		return false
	}
}

// ClimateRecord is a validated dataset row.
type ClimateRecord struct {
	TemperatureCelsius float64   `json:"temperature_celsius"`
	Humidity           float64   `json:"humidity"`
	PrecipMM           float64   `json:"precip_mm"`
	WindKPH            float64   `json:"wind_kph"`
	Timestamp          time.Time `json:"timestamp"`
	LocationName       string    `json:"location_name"`
}

// Value returns the numeric measurement for f. The boolean is false for
// non-numeric or unknown fields.
func (r ClimateRecord) Value(f Field) (float64, bool) {
	switch f {
	case FieldTemperature:
		return r.TemperatureCelsius, true
	case FieldHumidity:
		return r.Humidity, true
	case FieldPrecip:
		return r.PrecipMM, true
	case FieldWind:
		return r.WindKPH, true
	default:
		return 0, false
	}
}

// Raw converts a validated record back to its wire form.
func (r ClimateRecord) Raw() RawClimateRecord {
	temp, hum, precip, wind := r.TemperatureCelsius, r.Humidity, r.PrecipMM, r.WindKPH
	loc := r.LocationName
	return RawClimateRecord{
		TemperatureCelsius: &temp,
		Humidity:           &hum,
		PrecipMM:           &precip,
		WindKPH:            &wind,
		Timestamp:          &Timestamp{Time: r.Timestamp},
		LocationName:       &loc,
	}
}
