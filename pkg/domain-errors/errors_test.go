package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errCause = errors.New("cause")

func TestWrapKeepsCauseMatchable(t *testing.T) {
	err := Wrap(errCause, CodeValidation, "invalid request")

	assert.True(t, errors.Is(err, errCause))
	assert.True(t, HasCode(err, CodeValidation))
	assert.Equal(t, "invalid request", MessageOf(err))
	assert.Equal(t, "invalid request: cause", err.Error())
}

func TestHasCode_ThroughFmtWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeNotFound, "missing"))

	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeConflict))
	assert.Equal(t, CodeNotFound, CodeOf(err))
}

func TestCodeOf_PlainErrorIsInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errCause))
	assert.False(t, HasCode(errCause, CodeInternal))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:         http.StatusBadRequest,
		CodeInvalidInput:       http.StatusBadRequest,
		CodeInvariantViolation: http.StatusUnprocessableEntity,
		CodeUnauthorized:       http.StatusUnauthorized,
		CodeForbidden:          http.StatusForbidden,
		CodeNotFound:           http.StatusNotFound,
		CodeConflict:           http.StatusConflict,
		CodeTimeout:            http.StatusGatewayTimeout,
		CodeTooManyRequests:    http.StatusTooManyRequests,
		CodeInternal:           http.StatusInternalServerError,
		Code("unknown"):        http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), string(code))
	}
}
