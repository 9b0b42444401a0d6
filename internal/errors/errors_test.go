package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := NotFoundf("plugin %q is not registered", "x")

	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrValidation))
	assert.True(t, Is(fmt.Errorf("wrapped: %w", err), ErrNotFound))
}

func TestError_Cause(t *testing.T) {
	cause := New("disk full")
	err := Wrap(cause, CodeInternal, "save override")

	assert.Equal(t, "save override: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus())
}

func TestCode_HTTPStatus(t *testing.T) {
	tests := map[Code]int{
		CodeNotFound:    http.StatusNotFound,
		CodeValidation:  http.StatusBadRequest,
		CodeConflict:    http.StatusConflict,
		CodeUnavailable: http.StatusServiceUnavailable,
		CodeInternal:    http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, code.HTTPStatus(), code)
	}
}

func TestError_WithDetails(t *testing.T) {
	base := Validation("validation failed")
	detailed := base.WithDetails(map[string]string{"url": "must be a valid URL"})

	assert.Nil(t, base.Details)
	assert.Equal(t, map[string]string{"url": "must be a valid URL"}, detailed.Details)
	assert.Equal(t, CodeValidation, detailed.Code)
}
