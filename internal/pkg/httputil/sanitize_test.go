package httputil

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "internal server error"},
		{errors.New("dial tcp 10.0.0.5:5432: connect: connection refused"), "service temporarily unavailable"},
		{fmt.Errorf("find trainee 3: %w", context.DeadlineExceeded), "request timed out"},
		{errors.New("i/o timeout"), "request timed out"},
		{errors.New("pq: password authentication failed for user \"app\""), "a database error occurred"},
		{errors.New("put export object: AccessDenied: Access Denied"), "access denied"},
		{errors.New("something odd"), "internal server error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, publicMessage(tt.err), fmt.Sprint(tt.err))
	}
}
