package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/survey/backend/internal/domain"
	"github.com/survey/backend/internal/service/trainee"
)

// TraineeRepo implements trainee.Repository against PostgreSQL.
type TraineeRepo struct{ db *sql.DB }

// NewTraineeRepo creates a Postgres-backed trainee repository.
func NewTraineeRepo(db *sql.DB) *TraineeRepo { return &TraineeRepo{db: db} }

const traineeColumns = `id, lastname, firstname, email, phone_number, birthdate`

// FindAll returns every trainee ordered by id.
func (r *TraineeRepo) FindAll(ctx context.Context) ([]domain.Trainee, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+traineeColumns+` FROM trainees ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list trainees: %w", err)
	}
	defer rows.Close()
	return scanTrainees(rows)
}

// FindByID returns the trainee with id, or trainee.ErrNotFound.
func (r *TraineeRepo) FindByID(ctx context.Context, id int) (*domain.Trainee, error) {
	var t domain.Trainee
	err := r.db.QueryRowContext(ctx,
		`SELECT `+traineeColumns+` FROM trainees WHERE id = $1`, id,
	).Scan(&t.ID, &t.Lastname, &t.Firstname, &t.Email, &t.PhoneNumber, &t.Birthdate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, trainee.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get trainee %d: %w", id, err)
	}
	return &t, nil
}

// Search matches each non-empty filter case-insensitively, ordered by id.
func (r *TraineeRepo) Search(ctx context.Context, f trainee.SearchFilter) ([]domain.Trainee, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+traineeColumns+`
		FROM trainees
		WHERE ($1 = '' OR LOWER(lastname) = LOWER($1))
		  AND ($2 = '' OR LOWER(firstname) = LOWER($2))
		ORDER BY id
	`, f.Lastname, f.Firstname)
	if err != nil {
		return nil, fmt.Errorf("search trainees: %w", err)
	}
	defer rows.Close()
	return scanTrainees(rows)
}

// Create inserts t and sets t.ID from the generated key.
func (r *TraineeRepo) Create(ctx context.Context, t *domain.Trainee) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO trainees (lastname, firstname, email, phone_number, birthdate)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, t.Lastname, t.Firstname, t.Email, t.PhoneNumber, t.Birthdate).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("insert trainee: %w", err)
	}
	return nil
}

// Update overwrites every column of row t.ID. Returns trainee.ErrNotFound
// when no row was affected.
func (r *TraineeRepo) Update(ctx context.Context, t *domain.Trainee) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE trainees
		SET lastname = $2, firstname = $3, email = $4, phone_number = $5, birthdate = $6
		WHERE id = $1
	`, t.ID, t.Lastname, t.Firstname, t.Email, t.PhoneNumber, t.Birthdate)
	if err != nil {
		return fmt.Errorf("update trainee %d: %w", t.ID, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return trainee.ErrNotFound
	}
	return nil
}

// Delete removes the row. Returns trainee.ErrNotFound when no row was affected.
func (r *TraineeRepo) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trainees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete trainee %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return trainee.ErrNotFound
	}
	return nil
}

func scanTrainees(rows *sql.Rows) ([]domain.Trainee, error) {
	out := []domain.Trainee{}
	for rows.Next() {
		var t domain.Trainee
		if err := rows.Scan(&t.ID, &t.Lastname, &t.Firstname, &t.Email, &t.PhoneNumber, &t.Birthdate); err != nil {
			return nil, fmt.Errorf("scan trainee: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trainees: %w", err)
	}
	return out, nil
}
