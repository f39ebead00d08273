package domain

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"
)

// Ideal farming day thresholds. All bounds are inclusive.
const (
	IdealTempMinC       = 18.0
	IdealTempMaxC       = 32.0
	IdealHumidityMinPct = 40.0
	IdealHumidityMaxPct = 75.0
	IdealPrecipMaxMM    = 10.0
	IdealWindMaxKPH     = 25.0
)

// Risk event labels, in reporting order.
const (
	RiskHeatStress = "Heat Stress (>35°C)"
	RiskDrought    = "Drought (Rain <1mm)"
	RiskExcessRain = "Excess Rain (>20mm)"
	RiskHighWind   = "High Wind (>40km/h)"
)

// ErrUnknownField is returned when a trend is requested for a non-numeric field.
var ErrUnknownField = errors.New("unknown numeric field")

// riskRules maps each risk label to its single-variable threshold.
var riskRules = []struct {
	label   string
	matches func(ClimateRecord) bool
}{
	{RiskHeatStress, func(r ClimateRecord) bool { return r.TemperatureCelsius > 35 }},
	{RiskDrought, func(r ClimateRecord) bool { return r.PrecipMM < 1 }},
	{RiskExcessRain, func(r ClimateRecord) bool { return r.PrecipMM > 20 }},
	{RiskHighWind, func(r ClimateRecord) bool { return r.WindKPH > 40 }},
}

// Averages holds the dataset-wide mean of each numeric column.
type Averages struct {
	TemperatureCelsius float64 `json:"temperature_celsius"`
	Humidity           float64 `json:"humidity"`
	PrecipMM           float64 `json:"precip_mm"`
	WindKPH            float64 `json:"wind_kph"`
	Records            int     `json:"records"`
}

// NoData reports whether the averages were computed over zero records, in which
// case the means are undefined and reported as zero.
func (a Averages) NoData() bool {
	return a.Records == 0
}

// meanAcc accumulates the four numeric columns for one group.
type meanAcc struct {
	temp, humidity, precip, wind float64
	n                            int
}

func (m *meanAcc) add(r ClimateRecord) {
	m.temp += r.TemperatureCelsius
	m.humidity += r.Humidity
	m.precip += r.PrecipMM
	m.wind += r.WindKPH
	m.n++
}

func (m *meanAcc) averages() Averages {
	if m.n == 0 {
		return Averages{}
	}
	n := float64(m.n)
	return Averages{
		TemperatureCelsius: m.temp / n,
		Humidity:           m.humidity / n,
		PrecipMM:           m.precip / n,
		WindKPH:            m.wind / n,
		Records:            m.n,
	}
}

// ComputeAverages returns the arithmetic mean of each numeric column.
// For an empty dataset the result reports NoData.
func ComputeAverages(records []ClimateRecord) Averages {
	var acc meanAcc
	for _, r := range records {
		acc.add(r)
	}
	return acc.averages()
}

// IsIdealFarmingDay reports whether the record meets every agronomic threshold.
func IsIdealFarmingDay(r ClimateRecord) bool {
	return r.TemperatureCelsius >= IdealTempMinC && r.TemperatureCelsius <= IdealTempMaxC &&
		r.Humidity >= IdealHumidityMinPct && r.Humidity <= IdealHumidityMaxPct &&
		r.PrecipMM <= IdealPrecipMaxMM &&
		r.WindKPH <= IdealWindMaxKPH
}

// ClassifyIdealDays returns the ideal farming days in input order.
// The result is never nil.
func ClassifyIdealDays(records []ClimateRecord) []ClimateRecord {
	ideal := make([]ClimateRecord, 0, len(records))
	for _, r := range records {
		if IsIdealFarmingDay(r) {
			ideal = append(ideal, r)
		}
	}
	return ideal
}

// Date is a calendar date without time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Compare returns -1, 0 or +1 as d is before, equal to or after o.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	t, err := time.Parse(time.DateOnly, string(text))
	if err != nil {
		return fmt.Errorf("parse date: %w", err)
	}
	*d = DateOf(t)
	return nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// TrendPoint is the mean of one column over a single calendar date.
type TrendPoint struct {
	Date  Date    `json:"date"`
	Value float64 `json:"value"`
}

// DailyTrend groups records by calendar date and returns the mean of field per
// date, ascending by date with one point per distinct date.
func DailyTrend(records []ClimateRecord, field Field) ([]TrendPoint, error) {
	if !field.Numeric() {
		return nil, fmt.Errorf("daily trend %q: %w", field, ErrUnknownField)
	}

	type acc struct {
		sum float64
		n   int
	}
	groups := make(map[Date]*acc)
	for _, r := range records {
		v, _ := r.Value(field)
		day := DateOf(r.Timestamp)
		g, ok := groups[day]
		if !ok {
			g = &acc{}
			groups[day] = g
		}
		g.sum += v
		g.n++
	}

	points := make([]TrendPoint, 0, len(groups))
	for day, g := range groups {
		points = append(points, TrendPoint{Date: day, Value: g.sum / float64(g.n)})
	}
	slices.SortFunc(points, func(a, b TrendPoint) int { return a.Date.Compare(b.Date) })
	return points, nil
}

// RiskCount is the number of records that triggered one risk category.
type RiskCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// RiskCounts lists every risk category in reporting order.
type RiskCounts []RiskCount

// Count returns the tally for label, or zero for an unknown label.
func (rc RiskCounts) Count(label string) int {
	for _, c := range rc {
		if c.Label == label {
			return c.Count
		}
	}
	return 0
}

// Total sums every category. Overlapping categories are counted once each.
func (rc RiskCounts) Total() int {
	total := 0
	for _, c := range rc {
		total += c.Count
	}
	return total
}

// RiskEventCounts tallies each risk category independently. A single record may
// count toward several categories.
func RiskEventCounts(records []ClimateRecord) RiskCounts {
	counts := make(RiskCounts, len(riskRules))
	for i, rule := range riskRules {
		counts[i].Label = rule.label
	}
	for _, r := range records {
		for i, rule := range riskRules {
			if rule.matches(r) {
				counts[i].Count++
			}
		}
	}
	return counts
}

// LocationAggregate is the rounded per-location mean of each numeric column.
type LocationAggregate struct {
	Location           string  `json:"location"`
	TemperatureCelsius float64 `json:"avg_temperature_celsius"`
	Humidity           float64 `json:"avg_humidity"`
	PrecipMM           float64 `json:"avg_precip_mm"`
	WindKPH            float64 `json:"avg_wind_kph"`
}

// LocationSummary groups records by location name and returns one row per
// location in order of first appearance. Means are rounded with RoundTenth.
func LocationSummary(records []ClimateRecord) []LocationAggregate {
	order := make([]string, 0)
	groups := make(map[string]*meanAcc)
	for _, r := range records {
		g, ok := groups[r.LocationName]
		if !ok {
			g = &meanAcc{}
			groups[r.LocationName] = g
			order = append(order, r.LocationName)
		}
		g.add(r)
	}

	rows := make([]LocationAggregate, 0, len(order))
	for _, name := range order {
		avg := groups[name].averages()
		rows = append(rows, LocationAggregate{
			Location:           name,
			TemperatureCelsius: RoundTenth(avg.TemperatureCelsius),
			Humidity:           RoundTenth(avg.Humidity),
			PrecipMM:           RoundTenth(avg.PrecipMM),
			WindKPH:            RoundTenth(avg.WindKPH),
		})
	}
	return rows
}

// RoundTenth rounds v to one decimal place, halves away from zero.
func RoundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
