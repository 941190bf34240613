package report

import (
	"errors"
)

// Record is one line of the error report.
type Record struct {
	PrimaryKey string `json:"primaryKey" msgpack:"primaryKey"`
	FieldPath  string `json:"fieldPath" msgpack:"fieldPath"`
	ErrorKind  string `json:"errorKind" msgpack:"errorKind"`
	Message    string `json:"message" msgpack:"message"`
}

// NewRecord flattens err into a Record.
func NewRecord(err error) Record {
	rec := Record{ErrorKind: KindOf(err), Message: err.Error()}

	var re *RowError
	if errors.As(err, &re) {
		rec.PrimaryKey = re.PrimaryKey
		rec.FieldPath = re.FieldPath
		rec.Message = re.Err.Error()
	}

	return rec
}

// Report accumulates error records in the order they occurred.
type Report struct {
	records []Record
}

// Add records err. Nil errors are ignored.
func (r *Report) Add(err error) {
	if err == nil {
		return
	}

	r.records = append(r.records, NewRecord(err))
}

// Records returns a copy of the collected records.
func (r *Report) Records() []Record {
	return append([]Record(nil), r.records...)
}

// Len returns the number of records.
func (r *Report) Len() int { return len(r.records) }

// HasErrors returns true if anything was recorded.
func (r *Report) HasErrors() bool { return len(r.records) > 0 }

// CountByKind tallies records per error kind.
func (r *Report) CountByKind() map[string]int {
	out := make(map[string]int)
	for _, rec := range r.records {
		out[rec.ErrorKind]++
	}

	return out
}
