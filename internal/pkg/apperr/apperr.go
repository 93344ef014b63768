// Package apperr defines the client-facing error kinds raised by handlers.
//
// Handlers return these values; httputil.WriteError maps them to status
// codes (NotFoundError → 404, BadRequestError → 400). Anything else is
// treated as an internal failure.
package apperr

import "fmt"

// NotFoundError signals that a requested entity is absent or that a search
// produced nothing.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// NotFoundWithID reports a missing entity by id: "Trainee with id 4 not found".
func NotFoundWithID(itemType string, id int) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf("%s with id %d not found", itemType, id)}
}

// NoResults reports an empty query result: "Trainee search return 0 results with <criteria>".
func NoResults(itemType, criteria string) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf("%s return 0 results with %s", itemType, criteria)}
}

// BadRequestError signals missing or malformed client input.
type BadRequestError struct {
	Message string
	Details any
}

func (e *BadRequestError) Error() string { return e.Message }

// NewBadRequest builds a BadRequestError from a plain message.
func NewBadRequest(message string) *BadRequestError {
	return &BadRequestError{Message: message}
}

// WithDetails attaches structured details (e.g. per-field validation errors).
func (e *BadRequestError) WithDetails(details any) *BadRequestError {
	e.Details = details
	return e
}
