package meterapi

import "errors"

// Sentinel errors for metering API operations.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, meterapi.ErrFetchFailed) {
//	    // Abort the run; the next trigger retries
//	}
var (
	// ErrFetchFailed indicates a day fetch failed (transport error,
	// non-2xx status, or malformed payload).
	ErrFetchFailed = errors.New("meterapi: fetch failed")
)
