package pipeline

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/maconso/energy-sync/internal/infrastructure/influxdb"
	"github.com/maconso/energy-sync/internal/meterapi"
)

// Measurement is the store measurement name for interval readings.
const Measurement = "energy_consumption"

// ConvertStats carries the conversion counters for one run.
type ConvertStats struct {
	TotalFetched     int
	SkippedExisting  int
	SkippedMalformed int
}

// Convert turns raw readings into store points, filtering out timestamps
// that the store already holds.
//
// Per reading:
//   - a missing or unparsable timestamp or value skips the reading as
//     malformed (logged individually; never aborts the conversion)
//   - a timestamp already present in the existing set skips the reading
//     as a duplicate (debug log)
//   - otherwise a point is built with tags usage_point_id, measure_type
//     and interval_length, field power, at second precision
//
// The output preserves input order.
//
// Parameters:
//   - usagePointID: Meter identifier applied as a tag to every point
//   - readings: Raw readings from the API, in API order
//   - existing: TimestampKey set already stored for the target day
//   - log: Logger for per-reading skips
//
// Returns:
//   - []*write.Point: New points, in input order
//   - ConvertStats: Counters for the run result
func Convert(usagePointID string, readings []meterapi.Reading, existing map[string]struct{}, log Logger) ([]*write.Point, ConvertStats) {
	var stats ConvertStats
	points := make([]*write.Point, 0, len(readings))

	for _, reading := range readings {
		stats.TotalFetched++

		ts, err := time.Parse(influxdb.TimestampLayout, reading.Date)
		if err != nil {
			stats.SkippedMalformed++
			log.Warn("skipping reading with invalid timestamp",
				"date", reading.Date,
				"error", err,
			)
			continue
		}

		value, err := strconv.ParseFloat(string(reading.Value), 64)
		if err != nil {
			stats.SkippedMalformed++
			log.Warn("skipping reading with invalid value",
				"timestamp", reading.Date,
				"value", string(reading.Value),
				"error", err,
			)
			continue
		}

		if _, ok := existing[reading.Date]; ok {
			stats.SkippedExisting++
			log.Debug("skipping existing record", "timestamp", reading.Date)
			continue
		}

		points = append(points, write.NewPoint(
			Measurement,
			map[string]string{
				"usage_point_id":  usagePointID,
				"measure_type":    reading.MeasureType,
				"interval_length": reading.IntervalLength,
			},
			map[string]interface{}{
				"power": value,
			},
			ts.Truncate(time.Second),
		))
	}

	return points, stats
}
