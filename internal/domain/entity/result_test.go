package entity

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, ErrorKindNone},
		{"decode", fmt.Errorf("%w: bad base64", ErrDecode), ErrorKindDecode},
		{"detection", fmt.Errorf("%w: ThrottlingException", ErrDetection), ErrorKindDetection},
		{"publish", fmt.Errorf("%w: stream not found", ErrPublish), ErrorKindPublish},
		{"canceled", context.Canceled, ErrorKindCanceled},
		{"deadline", fmt.Errorf("wait: %w", context.DeadlineExceeded), ErrorKindCanceled},
		{"detection interrupted", fmt.Errorf("%w: unknown: %w", ErrDetection, context.Canceled), ErrorKindCanceled},
		{"publish timed out", fmt.Errorf("%w: %w", ErrPublish, context.DeadlineExceeded), ErrorKindCanceled},
		{"other", errors.New("boom"), ErrorKindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestBatchSummary(t *testing.T) {
	var s BatchSummary
	s.Add(RecordResult{Index: 0})
	s.Add(RecordResult{Index: 1, Err: ErrDecode, Kind: ErrorKindDecode})
	s.Add(RecordResult{Index: 2})
	s.Add(RecordResult{Index: 3, Err: ErrPublish, Kind: ErrorKindPublish})

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Succeeded)
	assert.Equal(t, 2, s.Failed)

	failures := s.Failures()
	if assert.Len(t, failures, 2) {
		assert.Equal(t, 1, failures[0].Index)
		assert.Equal(t, 3, failures[1].Index)
	}
}
