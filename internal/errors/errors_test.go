package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"gocleanse/domain/core"
)

func TestCodeOfMapsDomainErrors(t *testing.T) {
	tests := []struct {
		err    error
		code   string
		status int
	}{
		{err: core.NewValidationError("confidence", "must be in (0, 1)"), code: CodeValidationError, status: http.StatusBadRequest},
		{err: fmt.Errorf("%w: 0.6665", core.ErrLookup), code: CodeLookupError, status: http.StatusBadRequest},
		{err: core.NewColumnNotFoundError("age"), code: CodeNotFound, status: http.StatusNotFound},
		{err: fmt.Errorf("%w: row 9", core.ErrRowOutOfRange), code: CodeRowOutOfRange, status: http.StatusUnprocessableEntity},
		{err: fmt.Errorf("%w: purple", core.ErrUnknownCategory), code: CodeUnknownCategory, status: http.StatusUnprocessableEntity},
		{err: fmt.Errorf("%w: parquet", core.ErrUnsupportedFormat), code: CodeUnsupportedFormat, status: http.StatusBadRequest},
		{err: fmt.Errorf("disk full"), code: CodeInternalError, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.code, CodeOf(tt.err))
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
	assert.Equal(t, "", CodeOf(nil))
}

func TestWrapKeepsCodeAndCause(t *testing.T) {
	base := core.NewValidationError("margin_error", "must be in (0, 1)")
	wrapped := Wrap(base, "sample size request rejected")

	assert.Equal(t, CodeValidationError, GetCode(wrapped))
	assert.ErrorIs(t, wrapped, core.ErrValidation)
	assert.Contains(t, wrapped.Error(), "sample size request rejected")

	rewrapped := Wrapf(wrapped, "handling %s", "request")
	assert.Equal(t, CodeValidationError, GetCode(rewrapped))
	assert.Nil(t, Wrap(nil, "x"))

	coded := WithCode(CodeStorageError, fmt.Errorf("write failed"))
	assert.Equal(t, CodeStorageError, GetCode(coded))
	assert.True(t, IsAppError(coded))
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
}
