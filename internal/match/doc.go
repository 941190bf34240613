// Package match ranks known names against a misspelled one so that
// diagnostics can say "did you mean ...".
//
// Names are case-folded and stripped of separators before comparing, so
// "person_id", "PERSON_ID" and "PersonId" all normalize to "personid".
package match
