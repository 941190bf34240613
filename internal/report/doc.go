// Package report defines the error taxonomy of an ingest run and the
// structured error report handed back to callers.
//
// Errors fall into three groups:
//
//   - load-time: the manifest is invalid and nothing can be processed
//   - row evaluation: one primary-key group failed and was rejected
//   - driver: the run itself failed (cancellation, row source I/O)
//
// Every concrete failure wraps one of the sentinels below, so callers
// classify with errors.Is.
package report
