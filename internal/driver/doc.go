// Package driver streams rows through the builder, one primary-key group
// at a time.
//
// Rows must arrive sorted by primary key: consecutive rows with equal key
// values form a group and a key that reappears after another key is a
// driver error. Without a primary key every row is its own group. Each
// completed group yields one Result. A group that fails is recorded in the
// report and skipped, or stops the run under FailFast. Cancellation is
// checked between groups.
package driver
