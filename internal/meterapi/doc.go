// Package meterapi fetches interval readings from the remote metering API.
//
// One fetch covers one calendar day:
//
//	GET <endpoint>?prm=<meter>&start=<YYYY-MM-DD>&end=<YYYY-MM-DD>
//	Authorization: Bearer <token>
//
// and expects a JSON body of the form:
//
//	{"interval_reading": [{"date": "2024-01-01 00:30:00", "value": "540",
//	  "measure_type": "B", "interval_length": "PT30M"}, ...]}
//
// # Failure model
//
// A transport error, timeout, non-2xx response, or undecodable payload is a
// single fatal fetch failure wrapping ErrFetchFailed. The client never
// retries and never returns a partial result: a bad run is cheap to retry
// on the next scheduled trigger.
//
// # Rate limiting
//
// The configured rate-limit delay is applied as a pause before each
// request, keeping the daily request clear of upstream per-token limits.
package meterapi
