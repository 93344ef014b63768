// Package memory provides an in-process trainee repository. It backs the
// server when no database is configured.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/survey/backend/internal/domain"
	"github.com/survey/backend/internal/service/trainee"
)

// TraineeRepo implements trainee.Repository in memory. Safe for concurrent use.
type TraineeRepo struct {
	mu     sync.RWMutex
	nextID int
	rows   map[int]domain.Trainee
}

// NewTraineeRepo creates an empty repository. Ids start at 1.
func NewTraineeRepo() *TraineeRepo {
	return &TraineeRepo{rows: make(map[int]domain.Trainee)}
}

// FindAll returns copies of every trainee ordered by id.
func (r *TraineeRepo) FindAll(_ context.Context) ([]domain.Trainee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(domain.Trainee) bool { return true }), nil
}

// FindByID returns a copy of the stored trainee, or trainee.ErrNotFound.
func (r *TraineeRepo) FindByID(_ context.Context, id int) (*domain.Trainee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.rows[id]
	if !ok {
		return nil, trainee.ErrNotFound
	}
	return copyTrainee(t), nil
}

// Search matches each non-empty filter with strings.EqualFold.
func (r *TraineeRepo) Search(_ context.Context, f trainee.SearchFilter) ([]domain.Trainee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(t domain.Trainee) bool {
		if f.Lastname != "" && !strings.EqualFold(t.Lastname, f.Lastname) {
			return false
		}
		if f.Firstname != "" && !strings.EqualFold(t.Firstname, f.Firstname) {
			return false
		}
		return true
	}), nil
}

// Create stores a copy of t under the next id and sets t.ID.
func (r *TraineeRepo) Create(_ context.Context, t *domain.Trainee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t.ID = r.nextID
	r.rows[t.ID] = *copyTrainee(*t)
	return nil
}

// Update replaces the stored trainee t.ID, or returns trainee.ErrNotFound.
func (r *TraineeRepo) Update(_ context.Context, t *domain.Trainee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[t.ID]; !ok {
		return trainee.ErrNotFound
	}
	r.rows[t.ID] = *copyTrainee(*t)
	return nil
}

// Delete removes the trainee, or returns trainee.ErrNotFound.
func (r *TraineeRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return trainee.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

// collect must be called with r.mu held.
func (r *TraineeRepo) collect(keep func(domain.Trainee) bool) []domain.Trainee {
	out := make([]domain.Trainee, 0, len(r.rows))
	for _, t := range r.rows {
		if keep(t) {
			out = append(out, *copyTrainee(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// copyTrainee detaches the birthdate pointer from stored state.
func copyTrainee(t domain.Trainee) *domain.Trainee {
	if t.Birthdate != nil {
		bd := *t.Birthdate
		t.Birthdate = &bd
	}
	return &t
}
