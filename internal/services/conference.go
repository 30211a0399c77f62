package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"conferencecentral/internal/domain"
)

var (
	conferencesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "conferencecentral_conferences_created_total",
		Help: "Number of conferences created",
	})
	seatsBookedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "conferencecentral_seats_booked_total",
		Help: "Number of seats booked",
	})
	seatsReleasedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "conferencecentral_seats_released_total",
		Help: "Number of seats released",
	})
)

type conferenceService struct {
	store        domain.Store
	transactor   domain.Transactor
	emailService domain.EmailService
	logger       *slog.Logger
}

// NewConferenceService creates a ConferenceService over the given store,
// transaction boundary, and confirmation email sender.
func NewConferenceService(store domain.Store, transactor domain.Transactor, emailService domain.EmailService, logger *slog.Logger) domain.ConferenceService {
	return &conferenceService{
		store:        store,
		transactor:   transactor,
		emailService: emailService,
		logger:       logger,
	}
}

// Create builds a conference under the organizer's profile. The profile
// lookup (and lazy creation), the scoped id allocation, and both entity
// writes happen in one transaction: a failure at any step leaves nothing
// visible, including the profile write.
func (s *conferenceService) Create(ctx context.Context, organizerID, email string, form *domain.ConferenceForm) (*domain.Conference, error) {
	var (
		conference *domain.Conference
		organizer  *domain.Profile
	)
	err := s.transactor.RunInTx(ctx, func(st domain.Store) error {
		now := time.Now()

		p, profileIsNew, err := getOrCreateProfile(ctx, st.Profiles(), organizerID, email, now)
		if err != nil {
			return err
		}

		id, err := st.Conferences().AllocateID(ctx, organizerID)
		if err != nil {
			return fmt.Errorf("allocate conference id: %w", err)
		}

		c, err := domain.NewConference(id, organizerID, form, now)
		if err != nil {
			return err
		}
		// The conference row references the profile row, so a fresh profile
		// must be inserted first.
		if profileIsNew {
			if err := st.Profiles().Save(ctx, p); err != nil {
				return fmt.Errorf("save profile: %w", err)
			}
		}
		if err := st.Conferences().Save(ctx, c); err != nil {
			return fmt.Errorf("save conference: %w", err)
		}
		conference, organizer = c, p
		return nil
	})
	if err != nil {
		return nil, err
	}

	conferencesCreatedTotal.Inc()
	s.sendConfirmation(ctx, organizer, conference)
	return conference, nil
}

// sendConfirmation sends the conference-created email best-effort; the
// conference is already committed, so failures are only logged.
func (s *conferenceService) sendConfirmation(ctx context.Context, organizer *domain.Profile, c *domain.Conference) {
	if s.emailService == nil {
		return
	}
	data := &domain.ConferenceCreatedEmailData{
		Email:          organizer.MainEmail,
		ConferenceName: c.Name,
		City:           c.City,
		MaxAttendees:   c.MaxAttendees,
	}
	if err := s.emailService.SendConferenceCreated(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "conference confirmation email failed",
			"conference", c.WebsafeKey(), "err", err)
	}
}

func (s *conferenceService) Get(ctx context.Context, key domain.ConferenceKey) (*domain.Conference, error) {
	c, err := s.store.Conferences().Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get conference: %w", err)
	}
	return c, nil
}

// OrganizerDisplayName resolves the owning profile's display name. When the
// profile is absent (or unreadable) it falls back to the raw organizer id
// rather than failing the read.
func (s *conferenceService) OrganizerDisplayName(ctx context.Context, c *domain.Conference) string {
	p, err := s.store.Profiles().Get(ctx, c.OrganizerID)
	if err != nil {
		return c.OrganizerID
	}
	return p.DisplayName
}

func (s *conferenceService) ListByOrganizer(ctx context.Context, organizerID string) ([]*domain.Conference, error) {
	conferences, err := s.store.Conferences().ListByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("list conferences: %w", err)
	}
	return conferences, nil
}

// Update re-applies the full field-merge against the stored aggregate. The
// capacity rule is parameterized by the seats already booked: maxAttendees
// may shrink only down to that count.
func (s *conferenceService) Update(ctx context.Context, key domain.ConferenceKey, form *domain.ConferenceForm) (*domain.Conference, error) {
	var updated *domain.Conference
	err := s.transactor.RunInTx(ctx, func(st domain.Store) error {
		c, err := st.Conferences().GetForUpdate(ctx, key)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get conference: %w", err)
		}
		if err := c.ApplyForm(form, time.Now()); err != nil {
			return err
		}
		if err := st.Conferences().Save(ctx, c); err != nil {
			return fmt.Errorf("save conference: %w", err)
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *conferenceService) BookSeats(ctx context.Context, key domain.ConferenceKey, seats int) (*domain.Conference, error) {
	c, err := s.mutateSeats(ctx, key, func(c *domain.Conference) error {
		return c.BookSeats(seats)
	})
	if err != nil {
		return nil, err
	}
	if seats > 0 {
		seatsBookedTotal.Add(float64(seats))
	}
	return c, nil
}

func (s *conferenceService) ReleaseSeats(ctx context.Context, key domain.ConferenceKey, seats int) (*domain.Conference, error) {
	c, err := s.mutateSeats(ctx, key, func(c *domain.Conference) error {
		return c.ReleaseSeats(seats)
	})
	if err != nil {
		return nil, err
	}
	if seats > 0 {
		seatsReleasedTotal.Add(float64(seats))
	}
	return c, nil
}

// mutateSeats runs a seat mutation as a single read-modify-write
// transaction. The row lock taken by GetForUpdate serializes concurrent
// callers, so the mutation always applies to the committed seat count.
func (s *conferenceService) mutateSeats(ctx context.Context, key domain.ConferenceKey, mutate func(*domain.Conference) error) (*domain.Conference, error) {
	var result *domain.Conference
	err := s.transactor.RunInTx(ctx, func(st domain.Store) error {
		c, err := st.Conferences().GetForUpdate(ctx, key)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get conference: %w", err)
		}
		if err := mutate(c); err != nil {
			return err
		}
		c.UpdatedAt = time.Now()
		if err := st.Conferences().Save(ctx, c); err != nil {
			return fmt.Errorf("save conference: %w", err)
		}
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
