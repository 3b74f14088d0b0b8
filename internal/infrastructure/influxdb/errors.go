package influxdb

import "errors"

// Sentinel errors for InfluxDB operations.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, influxdb.ErrQueryFailed) {
//	    // Degrade to an empty existing-timestamp set
//	}
var (
	// ErrNotConnected indicates the client is not connected to InfluxDB.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed indicates the initial connection attempt failed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrWriteFailed indicates a batch write failed.
	ErrWriteFailed = errors.New("influxdb: write failed")

	// ErrQueryFailed indicates the existing-timestamp query failed.
	ErrQueryFailed = errors.New("influxdb: query failed")
)
