package trainee

import (
	"context"

	"github.com/survey/backend/internal/domain"
)

// Repository defines the data access contract for trainees.
type Repository interface {
	// FindAll returns every trainee ordered by id.
	FindAll(ctx context.Context) ([]domain.Trainee, error)

	// FindByID returns the trainee with the given id, or ErrNotFound.
	FindByID(ctx context.Context, id int) (*domain.Trainee, error)

	// Search returns trainees matching every non-empty filter field, ordered by id.
	Search(ctx context.Context, filter SearchFilter) ([]domain.Trainee, error)

	// Create persists t, assigning its ID.
	Create(ctx context.Context, t *domain.Trainee) error

	// Update overwrites the stored trainee with t.ID. Returns ErrNotFound if
	// no such trainee exists.
	Update(ctx context.Context, t *domain.Trainee) error

	// Delete removes a trainee. Returns ErrNotFound if it doesn't exist.
	Delete(ctx context.Context, id int) error
}

// SearchFilter holds the optional search criteria. Empty fields are ignored;
// matching is case-insensitive equality.
type SearchFilter struct {
	Lastname  string
	Firstname string
}

// IsEmpty reports whether no criterion is set.
func (f SearchFilter) IsEmpty() bool {
	return f.Lastname == "" && f.Firstname == ""
}
