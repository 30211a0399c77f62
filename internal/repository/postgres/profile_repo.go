package postgres

import (
	"context"
	"database/sql"
	"errors"

	"conferencecentral/internal/domain"
)

type profileRepository struct {
	DB Querier
}

// NewProfileRepository returns a ProfileRepository backed by q, which may be
// a *sql.DB or an open transaction.
func NewProfileRepository(q Querier) domain.ProfileRepository {
	return &profileRepository{DB: q}
}

func (r *profileRepository) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `
		SELECT user_id, display_name, main_email, tee_shirt_size, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`
	p := &domain.Profile{}
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID, &p.DisplayName, &p.MainEmail, &p.TeeShirtSize, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// Save upserts the profile. main_email is written only on the first insert;
// conflicting saves leave it untouched.
func (r *profileRepository) Save(ctx context.Context, p *domain.Profile) error {
	query := `
		INSERT INTO profiles (user_id, display_name, main_email, tee_shirt_size, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			tee_shirt_size = EXCLUDED.tee_shirt_size,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.DB.ExecContext(ctx, query,
		p.UserID, p.DisplayName, p.MainEmail, p.TeeShirtSize, p.CreatedAt, p.UpdatedAt,
	)
	return err
}
