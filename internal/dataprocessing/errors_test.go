package dataprocessing

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{nil, KindUnknown},
		{errors.New("boom"), KindUnknown},
		{ErrNoSelection, KindNoSelection},
		{fmt.Errorf("%w: 2010 > 2000", ErrInvalidRange), KindInvalidRange},
		{fmt.Errorf("run: %w", fmt.Errorf("%w: x", ErrEmptyResult)), KindEmptyResult},
		{fmt.Errorf("%w: Food", ErrAmbiguousBaseline), KindAmbiguousBaseline},
		{fmt.Errorf("%w: chart type", ErrInvalidParameter), KindInvalidParameter},
		{fmt.Errorf("cpi.csv: %w", ErrDuplicateRow), KindInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "no_selection", KindNoSelection.String())
	assert.Equal(t, "unknown", ErrorKind(99).String())
}
