// Package scheduler drives the pipeline on a fixed daily schedule.
//
// The loop model is deliberately simple: compute the next trigger instant
// from a fixed daily wall-clock time, then poll at a short fixed interval
// until it is reached or the context is cancelled. No scheduling library,
// no queued triggers, no overlapping runs.
//
// # Isolation contract
//
// The loop's primary contract is that no single run can kill it. Run
// errors and panics are caught at the loop boundary, logged in full, and
// discarded; there is no retry within a trigger — the next scheduled
// trigger is the retry mechanism.
//
// # Shutdown
//
// Cancellation is cooperative: the context is checked between ticks, never
// mid-run. A run already in flight finishes before the loop exits.
package scheduler
