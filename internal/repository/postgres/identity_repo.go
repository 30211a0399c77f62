package postgres

import (
	"context"
	"database/sql"
	"errors"

	"conferencecentral/internal/domain"
)

type identityRepository struct {
	DB Querier
}

// NewIdentityRepository returns an IdentityRepository reading and writing
// identity records directly in Postgres. Both Get variants are strongly
// consistent here; the caching decorator only weakens Get.
func NewIdentityRepository(q Querier) domain.IdentityRepository {
	return &identityRepository{DB: q}
}

// Put inserts the identity record for email. The database assigns user_id
// on first insert; re-putting an existing email is a no-op so the assigned
// id is stable.
func (r *identityRepository) Put(ctx context.Context, email string) error {
	query := `
		INSERT INTO identities (email)
		VALUES ($1)
		ON CONFLICT (email) DO NOTHING
	`
	_, err := r.DB.ExecContext(ctx, query, email)
	return err
}

func (r *identityRepository) Get(ctx context.Context, email string) (*domain.Identity, error) {
	return r.GetConsistent(ctx, email)
}

func (r *identityRepository) GetConsistent(ctx context.Context, email string) (*domain.Identity, error) {
	query := `
		SELECT email, user_id, created_at
		FROM identities
		WHERE email = $1
	`
	id := &domain.Identity{}
	err := r.DB.QueryRowContext(ctx, query, email).Scan(&id.Email, &id.UserID, &id.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return id, nil
}
