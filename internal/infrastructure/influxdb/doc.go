// Package influxdb provides InfluxDB connectivity for the energy sync pipeline.
//
// It wraps the official influxdb-client-go v2 library with the pipeline's
// patterns for per-run connections, synchronous batch writes, and the
// existing-timestamp query that drives deduplication.
//
// # Purpose
//
// This package is the pipeline's store boundary:
//   - Writing daily interval readings as energy_consumption points
//   - Querying which timestamps a target day already holds
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "home",
//	    Bucket: "energy_data",
//	}
//
//	client, err := influxdb.Connect(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	existing, err := client.QueryTimestamps(ctx, "12345678901234", day)
//
// # Error Handling
//
// Writes are blocking: a failed batch is returned directly to the caller
// and fails the run. Query failures wrap ErrQueryFailed so the caller can
// degrade to an empty set instead of aborting.
//
// # Precision
//
// The client writes with second precision; interval readings carry no
// sub-second information.
package influxdb
