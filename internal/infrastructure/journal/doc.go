// Package journal keeps a local SQLite history of pipeline runs.
//
// Every run appends one row: target day, counters, outcome, and duration.
// The journal answers "when did this last sync, and what happened" without
// trawling log output.
//
// # Role
//
// Strictly observational. The deduplication that makes runs idempotent
// lives in the store query, not here; a lost or corrupt journal file never
// affects what gets written. Callers log journal errors and move on.
//
// # Usage
//
//	j, err := journal.Open(journal.Config{Path: "./data/energy-sync.db", BusyTimeout: 5})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer j.Close()
//
//	_ = j.Record(ctx, result)
package journal
