package trainee

import "errors"

// Sentinel errors for the trainee service layer.
var (
	ErrNotFound = errors.New("trainee not found")
)
