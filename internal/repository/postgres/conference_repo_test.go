package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"conferencecentral/internal/domain"
)

var conferenceRows = []string{
	"organizer_id", "id", "name", "description", "topics", "city",
	"start_date", "end_date", "month", "max_attendees", "seats_available",
	"created_at", "updated_at",
}

func TestConferenceRepository_Get(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	start := time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		key     domain.ConferenceKey
		mock    func(mock sqlmock.Sqlmock)
		want    *domain.Conference
		wantErr error
	}{
		{
			name: "success",
			key:  domain.ConferenceKey{ProfileID: "user-1", ConferenceID: 3},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM conferences WHERE organizer_id = \$1 AND id = \$2`).
					WithArgs("user-1", int64(3)).
					WillReturnRows(sqlmock.NewRows(conferenceRows).AddRow(
						"user-1", int64(3), "GopherCon", nil, pq.Array([]string{"Go", "Cloud"}), "Denver",
						start, nil, 7, 100, 80, created, created,
					))
			},
			want: &domain.Conference{
				OrganizerID:    "user-1",
				ID:             3,
				Name:           "GopherCon",
				Topics:         []string{"Go", "Cloud"},
				City:           "Denver",
				StartDate:      &start,
				Month:          7,
				MaxAttendees:   100,
				SeatsAvailable: 80,
				CreatedAt:      created,
				UpdatedAt:      created,
			},
		},
		{
			name: "not found",
			key:  domain.ConferenceKey{ProfileID: "user-1", ConferenceID: 9},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM conferences`).
					WithArgs("user-1", int64(9)).
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewConferenceRepository(db)
			got, err := repo.Get(ctx, tt.key)
			if tt.wantErr != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestConferenceRepository_GetForUpdate_LocksRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT (.+) FROM conferences WHERE organizer_id = \$1 AND id = \$2 FOR UPDATE`).
		WithArgs("user-1", int64(1)).
		WillReturnRows(sqlmock.NewRows(conferenceRows).AddRow(
			"user-1", int64(1), "Conf", nil, pq.Array([]string{"Default", "Topic"}), "Default City",
			nil, nil, 0, 10, 10, created, created,
		))

	repo := NewConferenceRepository(db)
	got, err := repo.GetForUpdate(context.Background(), domain.ConferenceKey{ProfileID: "user-1", ConferenceID: 1})
	require.NoError(t, err)
	require.Equal(t, 10, got.SeatsAvailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConferenceRepository_Save(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	desc := "annual gathering"

	tests := []struct {
		name       string
		conference *domain.Conference
		mock       func(mock sqlmock.Sqlmock)
		wantErr    bool
	}{
		{
			name: "success",
			conference: &domain.Conference{
				OrganizerID:    "user-1",
				ID:             1,
				Name:           "GopherCon",
				Description:    &desc,
				Topics:         []string{"Go"},
				City:           "Denver",
				Month:          0,
				MaxAttendees:   100,
				SeatsAvailable: 100,
				CreatedAt:      created,
				UpdatedAt:      created,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO conferences (.+) ON CONFLICT \(organizer_id, id\) DO UPDATE SET`).
					WithArgs("user-1", int64(1), "GopherCon", &desc, pq.Array([]string{"Go"}), "Denver",
						nil, nil, 0, 100, 100, created, created).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "db error",
			conference: &domain.Conference{
				OrganizerID: "user-1",
				ID:          1,
				Name:        "Conf",
				Topics:      []string{"Default", "Topic"},
				City:        "Default City",
				CreatedAt:   created,
				UpdatedAt:   created,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO conferences`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewConferenceRepository(db)
			err = repo.Save(ctx, tt.conference)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestConferenceRepository_AllocateID(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		organizerID string
		mock        func(mock sqlmock.Sqlmock)
		want        int64
		wantErr     bool
	}{
		{
			name:        "first allocation",
			organizerID: "user-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO conference_id_counters (.+) RETURNING last_id`).
					WithArgs("user-1").
					WillReturnRows(sqlmock.NewRows([]string{"last_id"}).AddRow(int64(1)))
			},
			want: 1,
		},
		{
			name:        "subsequent allocation",
			organizerID: "user-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO conference_id_counters (.+) RETURNING last_id`).
					WithArgs("user-1").
					WillReturnRows(sqlmock.NewRows([]string{"last_id"}).AddRow(int64(7)))
			},
			want: 7,
		},
		{
			name:        "db error",
			organizerID: "user-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO conference_id_counters`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewConferenceRepository(db)
			got, err := repo.AllocateID(ctx, tt.organizerID)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestConferenceRepository_ListByOrganizer(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT (.+) FROM conferences WHERE organizer_id = \$1 ORDER BY id`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(conferenceRows).
			AddRow("user-1", int64(1), "First", nil, pq.Array([]string{"Default", "Topic"}), "Default City",
				nil, nil, 0, 5, 5, created, created).
			AddRow("user-1", int64(2), "Second", nil, pq.Array([]string{"Go"}), "Denver",
				nil, nil, 0, 10, 3, created, created))

	repo := NewConferenceRepository(db)
	got, err := repo.ListByOrganizer(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, int64(1), got[0].ID)
	require.Equal(t, "Second", got[1].Name)
	require.Equal(t, 3, got[1].SeatsAvailable)
	require.NoError(t, mock.ExpectationsWereMet())
}
