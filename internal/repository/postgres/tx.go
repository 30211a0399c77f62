package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"conferencecentral/internal/domain"
)

const defaultTxTimeout = 5 * time.Second

// Querier is the subset of *sql.DB / *sql.Tx the repositories need, so the
// same repository code runs inside and outside a transaction.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type store struct {
	q Querier
}

func (s *store) Profiles() domain.ProfileRepository {
	return NewProfileRepository(s.q)
}

func (s *store) Conferences() domain.ConferenceRepository {
	return NewConferenceRepository(s.q)
}

// NewStore returns a non-transactional Store view over db, for reads that
// do not need the atomic boundary.
func NewStore(db *sql.DB) domain.Store {
	return &store{q: db}
}

type transactor struct {
	db      *sql.DB
	timeout time.Duration
}

// NewTransactor returns a Transactor that runs fn against repositories bound
// to a single database transaction.
func NewTransactor(db *sql.DB) domain.Transactor {
	return &transactor{db: db, timeout: defaultTxTimeout}
}

func (t *transactor) RunInTx(ctx context.Context, fn func(s domain.Store) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("transaction aborted: %w", err)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(&store{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
