package domain

import (
	"errors"
	"fmt"
)

// ErrMissingField is matched by every *MissingFieldError via errors.Is.
var ErrMissingField = errors.New("missing required field")

// MissingFieldError reports the first required column absent from a dataset.
type MissingFieldError struct {
	Field  Field
	Record int // index of the first row lacking the field
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing column: %s (record %d)", e.Field, e.Record)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// Validate checks that every row carries all required columns and returns the
// validated records. Columns are checked in [RequiredFields] order across the
// whole dataset, so the error names the first missing column rather than the
// first incomplete row. Nothing is returned on failure.
func Validate(raws []RawClimateRecord) ([]ClimateRecord, error) {
	for _, f := range RequiredFields {
		for i := range raws {
			if !raws[i].has(f) {
				return nil, &MissingFieldError{Field: f, Record: i}
			}
		}
	}

	records := make([]ClimateRecord, len(raws))
	for i, r := range raws {
		records[i] = ClimateRecord{
			TemperatureCelsius: *r.TemperatureCelsius,
			Humidity:           *r.Humidity,
			PrecipMM:           *r.PrecipMM,
			WindKPH:            *r.WindKPH,
			Timestamp:          r.Timestamp.Time,
			LocationName:       *r.LocationName,
		}
	}
	return records, nil
}
