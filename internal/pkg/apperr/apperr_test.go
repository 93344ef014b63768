package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundWithID_Message(t *testing.T) {
	err := NotFoundWithID("Trainee", 42)
	assert.Equal(t, "Trainee with id 42 not found", err.Error())
}

func TestNoResults_Message(t *testing.T) {
	err := NoResults("Trainee search", "Bond James")
	assert.Equal(t, "Trainee search return 0 results with Bond James", err.Error())
}

func TestBadRequest_Message(t *testing.T) {
	err := NewBadRequest("search with no args not permitted")
	assert.Equal(t, "search with no args not permitted", err.Error())
	assert.Nil(t, err.Details)

	err = NewBadRequest("validation failed").WithDetails(map[string]string{"lastname": "required"})
	assert.NotNil(t, err.Details)
}

func TestErrorsAs_ThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NotFoundWithID("Trainee", 1))

	var nf *NotFoundError
	assert.True(t, errors.As(wrapped, &nf))

	var br *BadRequestError
	assert.False(t, errors.As(wrapped, &br))
}
