package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "rating out of range")

	var domainErr *Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, CodeValidation, domainErr.Code)
	assert.Equal(t, "rating out of range", err.Error())
}

func TestErrorMessageFallsBackToCode(t *testing.T) {
	err := &Error{Code: CodeAnchorUnavailable}
	assert.Equal(t, "anchor_unavailable", err.Error())
}

func TestWrapPreservesExistingCode(t *testing.T) {
	inner := New(CodeStateConflict, "credential is not pending")
	wrapped := Wrap(inner, CodeInternal, "verify failed")

	var domainErr *Error
	require.True(t, errors.As(wrapped, &domainErr))
	assert.Equal(t, CodeStateConflict, domainErr.Code, "wrapping must not mask the original code")
	assert.Equal(t, "verify failed", wrapped.Error())
}

func TestWrapPlainError(t *testing.T) {
	inner := fmt.Errorf("connection refused")
	wrapped := Wrap(inner, CodeAnchorUnavailable, "anchor submission failed")

	assert.True(t, HasCode(wrapped, CodeAnchorUnavailable))
	assert.ErrorIs(t, wrapped, inner)
}

func TestHasCode(t *testing.T) {
	err := New(CodeForbidden, "self-attestation is not allowed")

	assert.True(t, HasCode(err, CodeForbidden))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeForbidden))
	assert.False(t, HasCode(nil, CodeForbidden))
}

func TestErrorsIsMatchesByCode(t *testing.T) {
	a := New(CodeNotFound, "credential not found")
	b := New(CodeNotFound, "event not found")

	assert.ErrorIs(t, a, b, "two errors with the same code should match")
	assert.NotErrorIs(t, a, New(CodeConflict, "conflict"))
}

func TestUnwrapChain(t *testing.T) {
	root := errors.New("root cause")
	mid := Wrap(root, CodeStorage, "evidence upload failed")
	top := Wrap(mid, CodeInternal, "submission failed")

	assert.ErrorIs(t, top, root)
	assert.True(t, HasCode(top, CodeStorage), "outermost wrap keeps the first domain code")
}
