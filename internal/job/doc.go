// Package job runs one conversion per Job: it validates the request,
// reserves a destination, spawns the transcoder on a background goroutine,
// and reports exactly one Outcome.
//
// A Job moves from Running to Completed once. Completion stores the
// outcome, runs the converter's OnComplete callback on the worker goroutine,
// then closes Done. Callers either block in Wait, select on Done, or react
// in the callback; the callback must not wait on its own job.
//
// Jobs cannot be cancelled individually and have no timeout. The context
// given to Start bounds the process, so a process-wide interrupt still
// stops every running transcoder.
package job
