package report

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w: ZZ", ErrUnmappedEnumValue), KindUnmappedEnumValue},
		{fmt.Errorf("col X: %w", ErrUnknownColumn), KindUnknownColumn},
		{ErrConflictingFieldValue, KindConflictingField},
		{fmt.Errorf("wrapped: %w", ErrCancelled), KindDriver},
		{ErrUnsupportedVersion, KindLoadTimeValidation},
		{errors.New("something else"), KindRowEvaluation},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestAtKeepsInnermostPath(t *testing.T) {
	err := At("Sentence.status", fmt.Errorf("%w: raw %q", ErrUnmappedEnumValue, "99"))
	err = At("Sentence", err)

	var re *RowError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "Sentence.status", re.FieldPath)
	assert.ErrorIs(t, err, ErrUnmappedEnumValue)
}

func TestWithKey(t *testing.T) {
	err := WithKey("1", At("Sentence.status", ErrUnmappedEnumValue))
	assert.Equal(t, "[1] Sentence.status: unmapped enum value", err.Error())

	plain := WithKey("2", errors.New("boom"))
	assert.Equal(t, "[2] boom", plain.Error())

	assert.NoError(t, WithKey("3", nil))
	assert.NoError(t, At("x", nil))
}

func TestReport(t *testing.T) {
	var r Report

	r.Add(nil)
	assert.False(t, r.HasErrors())

	r.Add(WithKey("1", At("Sentence.status", fmt.Errorf("%w: %q", ErrUnmappedEnumValue, "99"))))
	r.Add(WithKey("2", At("Sentence.charges", ErrConflictingFieldValue)))
	r.Add(WithKey("3", At("Sentence.charges", ErrConflictingFieldValue)))

	require.Equal(t, 3, r.Len())

	recs := r.Records()
	assert.Equal(t, Record{
		PrimaryKey: "1",
		FieldPath:  "Sentence.status",
		ErrorKind:  KindUnmappedEnumValue,
		Message:    `unmapped enum value: "99"`,
	}, recs[0])

	assert.Equal(t, map[string]int{
		KindUnmappedEnumValue: 1,
		KindConflictingField:  2,
	}, r.CountByKind())
}
