// Package domain models climate observations and the agriculture summary
// derived from them.
//
// # Data Source
//
// Datasets are tabular weather exports (one row per observation per location),
// published upstream as a JSON array of rows per Kafka message. Each row carries
// six required columns:
//
//	temperature_celsius  float, °C
//	humidity             float, %
//	precip_mm            float, mm (>= 0)
//	wind_kph             float, km/h (>= 0)
//	timestamp            "2024-05-16 13:15" (dataset layout) or RFC 3339
//	location_name        string, e.g. "Kabul"
//
// A dataset missing any column on any row is rejected as a whole; the summary is
// never computed from a partial dataset. See [Validate].
//
// # Ideal Farming Days
//
// A row is an ideal farming day when every agronomic threshold holds:
//
//	temperature  18 °C ≤ t ≤ 32 °C
//	humidity     40 %   ≤ h ≤ 75 %
//	rainfall     p ≤ 10 mm
//	wind         w ≤ 25 km/h
//
// # Risk Events
//
// Each row is tested independently against four single-variable thresholds. The
// categories are not mutually exclusive, so totals can exceed the row count:
//
//	Heat Stress (>35°C)   t > 35
//	Drought (Rain <1mm)   p < 1
//	Excess Rain (>20mm)   p > 20
//	High Wind (>40km/h)   w > 40
//
// # Grouping
//
// Daily trends group by the calendar date of the timestamp in its own zone; the
// time of day is discarded. Location aggregates group by location_name in order
// of first appearance and round each mean to one decimal place, halves away from
// zero (10.25 -> 10.3).
package domain
