package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"conferencecentral/internal/domain"
)

const conferenceColumns = `organizer_id, id, name, description, topics, city,
		start_date, end_date, month, max_attendees, seats_available, created_at, updated_at`

type conferenceRepository struct {
	DB Querier
}

// NewConferenceRepository returns a ConferenceRepository backed by q, which
// may be a *sql.DB or an open transaction.
func NewConferenceRepository(q Querier) domain.ConferenceRepository {
	return &conferenceRepository{DB: q}
}

func scanConference(row *sql.Row) (*domain.Conference, error) {
	c := &domain.Conference{}
	var descNull sql.NullString
	var startNull, endNull sql.NullTime
	err := row.Scan(
		&c.OrganizerID, &c.ID, &c.Name, &descNull, pq.Array(&c.Topics), &c.City,
		&startNull, &endNull, &c.Month, &c.MaxAttendees, &c.SeatsAvailable,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if descNull.Valid {
		c.Description = &descNull.String
	}
	if startNull.Valid {
		c.StartDate = &startNull.Time
	}
	if endNull.Valid {
		c.EndDate = &endNull.Time
	}
	return c, nil
}

func (r *conferenceRepository) Get(ctx context.Context, key domain.ConferenceKey) (*domain.Conference, error) {
	query := `
		SELECT ` + conferenceColumns + `
		FROM conferences
		WHERE organizer_id = $1 AND id = $2
	`
	return scanConference(r.DB.QueryRowContext(ctx, query, key.ProfileID, key.ConferenceID))
}

// GetForUpdate locks the row for the rest of the transaction so concurrent
// seat mutations against the same conference serialize.
func (r *conferenceRepository) GetForUpdate(ctx context.Context, key domain.ConferenceKey) (*domain.Conference, error) {
	query := `
		SELECT ` + conferenceColumns + `
		FROM conferences
		WHERE organizer_id = $1 AND id = $2
		FOR UPDATE
	`
	return scanConference(r.DB.QueryRowContext(ctx, query, key.ProfileID, key.ConferenceID))
}

func (r *conferenceRepository) Save(ctx context.Context, c *domain.Conference) error {
	query := `
		INSERT INTO conferences (organizer_id, id, name, description, topics, city,
			start_date, end_date, month, max_attendees, seats_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (organizer_id, id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			topics = EXCLUDED.topics,
			city = EXCLUDED.city,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			month = EXCLUDED.month,
			max_attendees = EXCLUDED.max_attendees,
			seats_available = EXCLUDED.seats_available,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.DB.ExecContext(ctx, query,
		c.OrganizerID, c.ID, c.Name, c.Description, pq.Array(c.Topics), c.City,
		c.StartDate, c.EndDate, c.Month, c.MaxAttendees, c.SeatsAvailable,
		c.CreatedAt, c.UpdatedAt,
	)
	return err
}

// AllocateID hands out the next conference id within the organizer's scope
// via an upsert on the per-organizer counter row. Ids are never reused; the
// sequence is not required to be gapless.
func (r *conferenceRepository) AllocateID(ctx context.Context, organizerID string) (int64, error) {
	query := `
		INSERT INTO conference_id_counters (organizer_id, last_id)
		VALUES ($1, 1)
		ON CONFLICT (organizer_id) DO UPDATE SET last_id = conference_id_counters.last_id + 1
		RETURNING last_id
	`
	var id int64
	if err := r.DB.QueryRowContext(ctx, query, organizerID).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *conferenceRepository) ListByOrganizer(ctx context.Context, organizerID string) ([]*domain.Conference, error) {
	query := `
		SELECT ` + conferenceColumns + `
		FROM conferences
		WHERE organizer_id = $1
		ORDER BY id
	`
	rows, err := r.DB.QueryContext(ctx, query, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conferences := make([]*domain.Conference, 0)
	for rows.Next() {
		c := &domain.Conference{}
		var descNull sql.NullString
		var startNull, endNull sql.NullTime
		if err := rows.Scan(
			&c.OrganizerID, &c.ID, &c.Name, &descNull, pq.Array(&c.Topics), &c.City,
			&startNull, &endNull, &c.Month, &c.MaxAttendees, &c.SeatsAvailable,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if descNull.Valid {
			c.Description = &descNull.String
		}
		if startNull.Valid {
			c.StartDate = &startNull.Time
		}
		if endNull.Valid {
			c.EndDate = &endNull.Time
		}
		conferences = append(conferences, c)
	}
	return conferences, rows.Err()
}
