package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMessage(t *testing.T) {
	err := NewProviderError("api unavailable", errors.New("connection refused"))
	assert.Equal(t, "EXTRACTION_PROVIDER_ERROR: api unavailable: connection refused", err.Error())

	bare := NewConfigError("bad threshold")
	assert.Equal(t, "CONFIG_ERROR: bad threshold", bare.Error())
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("eof")
	err := NewDocumentReadError("truncated file", cause)
	assert.ErrorIs(t, err, cause)
}

func TestAppErrorIsMatchesByKind(t *testing.T) {
	err := NewFormSchemaError("no AcroForm", nil)

	assert.ErrorIs(t, err, &AppError{Kind: ErrKindFormSchema})
	assert.NotErrorIs(t, err, &AppError{Kind: ErrKindProvider})

	// matching survives wrapping
	wrapped := fmt.Errorf("fill stage: %w", err)
	assert.ErrorIs(t, wrapped, &AppError{Kind: ErrKindFormSchema})
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, ErrKindParse, KindOf(NewParseError("bad json", nil)))
	assert.Equal(t, ErrKindParse, KindOf(fmt.Errorf("wrap: %w", NewParseError("bad json", nil))))
	assert.Equal(t, ErrKindInternal, KindOf(errors.New("plain")))
}

func TestConstructorsSetKind(t *testing.T) {
	tests := []struct {
		err  *AppError
		kind ErrKind
	}{
		{NewDocumentReadError("m", nil), ErrKindDocumentRead},
		{NewProviderError("m", nil), ErrKindProvider},
		{NewParseError("m", nil), ErrKindParse},
		{NewFormSchemaError("m", nil), ErrKindFormSchema},
		{NewConfigError("m"), ErrKindConfig},
	}
	for _, tt := range tests {
		require.Equal(t, tt.kind, tt.err.Kind)
	}
}
