package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Run("complete dataset", func(t *testing.T) {
		raws := []RawClimateRecord{sampleRecords()[0].Raw(), sampleRecords()[1].Raw()}
		records, err := Validate(raws)
		require.NoError(t, err)
		assert.Equal(t, sampleRecords()[:2], records)
	})

	t.Run("empty dataset is valid", func(t *testing.T) {
		records, err := Validate(nil)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	tests := []struct {
		name   string
		strip  func(*RawClimateRecord)
		field  Field
		record int
	}{
		{"missing temperature", func(r *RawClimateRecord) { r.TemperatureCelsius = nil }, FieldTemperature, 1},
		{"missing humidity", func(r *RawClimateRecord) { r.Humidity = nil }, FieldHumidity, 1},
		{"missing precipitation", func(r *RawClimateRecord) { r.PrecipMM = nil }, FieldPrecip, 1},
		{"missing wind", func(r *RawClimateRecord) { r.WindKPH = nil }, FieldWind, 1},
		{"missing timestamp", func(r *RawClimateRecord) { r.Timestamp = nil }, FieldTimestamp, 1},
		{"zero timestamp", func(r *RawClimateRecord) { r.Timestamp = &Timestamp{} }, FieldTimestamp, 1},
		{"missing location", func(r *RawClimateRecord) { r.LocationName = nil }, FieldLocation, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raws := []RawClimateRecord{sampleRecords()[0].Raw(), sampleRecords()[1].Raw(), sampleRecords()[2].Raw()}
			tt.strip(&raws[1])

			records, err := Validate(raws)
			require.Error(t, err)
			assert.Nil(t, records)
			assert.True(t, errors.Is(err, ErrMissingField))

			var missing *MissingFieldError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, tt.field, missing.Field)
			assert.Equal(t, tt.record, missing.Record)
			assert.Contains(t, err.Error(), string(tt.field))
		})
	}

	t.Run("reports the first missing column, not the first incomplete row", func(t *testing.T) {
		raws := []RawClimateRecord{sampleRecords()[0].Raw(), sampleRecords()[1].Raw()}
		raws[0].LocationName = nil
		raws[1].Humidity = nil

		_, err := Validate(raws)
		var missing *MissingFieldError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, FieldHumidity, missing.Field)
		assert.Equal(t, 1, missing.Record)
	})

	t.Run("absent JSON column", func(t *testing.T) {
		data := []byte(`[{"temperature_celsius":21.4,"humidity":55,"precip_mm":0,"timestamp":"2024-05-16 13:15","location_name":"Kabul"}]`)
		raws, err := DecodeDataset(data)
		require.NoError(t, err)

		_, err = Validate(raws)
		var missing *MissingFieldError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, FieldWind, missing.Field)
	})

	t.Run("explicit zero is present", func(t *testing.T) {
		data := []byte(`[{"temperature_celsius":0,"humidity":0,"precip_mm":0,"wind_kph":0,"timestamp":"2024-05-16 13:15","location_name":""}]`)
		raws, err := DecodeDataset(data)
		require.NoError(t, err)

		records, err := Validate(raws)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, time.Date(2024, 5, 16, 13, 15, 0, 0, time.UTC), records[0].Timestamp)
	})
}

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{"dataset layout", `"2024-05-16 13:15"`, time.Date(2024, 5, 16, 13, 15, 0, 0, time.UTC)},
		{"with seconds", `"2024-05-16 13:15:30"`, time.Date(2024, 5, 16, 13, 15, 30, 0, time.UTC)},
		{"date only", `"2024-05-16"`, time.Date(2024, 5, 16, 0, 0, 0, 0, time.UTC)},
		{"RFC 3339", `"2024-05-16T13:15:00Z"`, time.Date(2024, 5, 16, 13, 15, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.input), &ts))
			assert.True(t, tt.expected.Equal(ts.Time), "got %s", ts.Time)
		})
	}

	t.Run("RFC 3339 keeps its offset", func(t *testing.T) {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(`"2024-05-16T23:30:00+04:30"`), &ts))
		assert.Equal(t, "2024-05-16", DateOf(ts.Time).String())
	})

	t.Run("unrecognized layout", func(t *testing.T) {
		var ts Timestamp
		err := json.Unmarshal([]byte(`"16/05/2024"`), &ts)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse timestamp")
	})

	t.Run("not a string", func(t *testing.T) {
		var ts Timestamp
		require.Error(t, json.Unmarshal([]byte(`1715865300`), &ts))
	})
}
