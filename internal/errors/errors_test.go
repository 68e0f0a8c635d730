package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(ErrInternalServer, cause)

	assert.Equal(t, "INTERNAL_ERROR", err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrInternalServer)
	assert.Nil(t, ErrInternalServer.Internal, "sentinel must not be mutated")
}

func TestWithMessage(t *testing.T) {
	err := WithMessage(ErrInvalidInput, "row 3: amount must be positive")

	assert.Equal(t, "row 3: amount must be positive", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.False(t, errors.Is(err, ErrInvalidYear))
}

func TestErrorsAs(t *testing.T) {
	var wrapped error = fmt.Errorf("allocating: %w", ErrTargetAssessmentRequired)

	var appErr *AppError
	assert.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, "TARGET_ASSESSMENT_REQUIRED", appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
}
