package trainee

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/survey/backend/internal/domain"
	"github.com/survey/backend/internal/pkg/logger"
)

// Service implements trainee business logic. It is safe for concurrent use
// as long as the repository is.
type Service struct {
	repo Repository
}

// NewService creates a trainee service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// FindAll returns every trainee. The result is never nil.
func (s *Service) FindAll(ctx context.Context) ([]domain.Trainee, error) {
	out, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Trainee{}
	}
	return out, nil
}

// FindByID returns the trainee or nil when absent.
func (s *Service) FindByID(ctx context.Context, id int) (*domain.Trainee, error) {
	t, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Search looks trainees up by lastname and/or firstname. Nil or blank
// criteria are ignored. With no criterion at all it returns an error; the
// HTTP layer rejects that case before calling.
func (s *Service) Search(ctx context.Context, lastname, firstname *string) ([]domain.Trainee, error) {
	filter := SearchFilter{Lastname: normalize(lastname), Firstname: normalize(firstname)}
	if filter.IsEmpty() {
		return nil, fmt.Errorf("search requires at least one criterion")
	}
	out, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Trainee{}
	}
	return out, nil
}

// Add persists a new trainee built from dto. Any id carried by dto is
// ignored; the repository assigns one.
func (s *Service) Add(ctx context.Context, dto domain.TraineeDTO) (*domain.Trainee, error) {
	t := dto.ToTrainee()
	t.ID = 0
	if err := s.repo.Create(ctx, &t); err != nil {
		return nil, err
	}
	logger.Info("trainee created", "id", t.ID, "email", t.Email)
	return &t, nil
}

// Update overwrites the trainee identified by dto.ID. Returns nil when the
// id is unknown; storage is left untouched in that case.
func (s *Service) Update(ctx context.Context, dto domain.TraineeDTO) (*domain.Trainee, error) {
	if dto.ID == nil {
		return nil, fmt.Errorf("update requires an id")
	}
	t := dto.ToTrainee()
	err := s.repo.Update(ctx, &t)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	logger.Info("trainee updated", "id", t.ID)
	return &t, nil
}

// Delete removes a trainee. Returns false when the id is unknown.
func (s *Service) Delete(ctx context.Context, id int) (bool, error) {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	logger.Info("trainee deleted", "id", id)
	return true, nil
}

func normalize(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
