package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrEmptyDocument", ErrEmptyDocument},
		{"ErrIndexNotReady", ErrIndexNotReady},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedFormat", ErrUnsupportedFormat},
		{"ErrNoTextExtracted", ErrNoTextExtracted},
		{"ErrExternalService", ErrExternalService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

// TestErrors_Distinct tests that sentinel errors do not match each other
func TestErrors_Distinct(t *testing.T) {
	assert.False(t, errors.Is(ErrEmptyDocument, ErrIndexNotReady))
	assert.False(t, errors.Is(ErrNotFound, ErrEmptyDocument))
	assert.False(t, errors.Is(ErrUnsupportedFormat, ErrNoTextExtracted))
}

// TestErrors_Wrapping tests errors.Is through fmt.Errorf wrapping
func TestErrors_Wrapping(t *testing.T) {
	wrapped := fmt.Errorf("load chunks doc-1: %w", ErrNotFound)
	assert.True(t, errors.Is(wrapped, ErrNotFound))

	wrapped = fmt.Errorf("rerank: %w: connection refused", ErrExternalService)
	assert.True(t, errors.Is(wrapped, ErrExternalService))
}
