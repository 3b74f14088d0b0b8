// Package pipeline implements the fetch → dedupe → convert → write core.
//
// One Run synchronises one day of interval readings into the store:
//
//  1. Open a scoped store connection (fail the run if it cannot)
//  2. Query the timestamps the target day already holds; on failure,
//     degrade to an empty set rather than aborting
//  3. Fetch the day's readings from the metering API (fatal on failure)
//  4. Convert readings to points, skipping duplicates and malformed records
//  5. Write the new points as one batch, or succeed immediately when there
//     is nothing new
//
// # Idempotence
//
// For a fixed (usage_point_id, timestamp) pair, at most one point is ever
// intentionally written. The guarantee comes from the query-then-filter
// dedup step, not from the store: re-running against unchanged upstream
// data writes nothing.
//
// # Failure model
//
// Connection, fetch, and write failures fail the run and surface to the
// caller; the scheduler treats the next trigger as the retry. Index query
// failures and individual malformed readings are recovered locally and
// never fail a run.
package pipeline
