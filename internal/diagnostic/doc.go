// Package diagnostic collects structured load-time findings about a
// manifest: errors that make it unusable and warnings worth fixing.
//
// Validation never stops at the first problem; everything found is
// reported together so a manifest author can fix a batch at once.
package diagnostic
