package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"conferencecentral/internal/domain"
)

type profileService struct {
	store      domain.Store
	transactor domain.Transactor
}

// NewProfileService creates a ProfileService over the given store and
// transaction boundary.
func NewProfileService(store domain.Store, transactor domain.Transactor) domain.ProfileService {
	return &profileService{store: store, transactor: transactor}
}

// defaultDisplayName derives the display name from the email's local part.
// For example, lemoncake@example.com becomes "lemoncake".
func defaultDisplayName(email string) (string, error) {
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return "", fmt.Errorf("%w: email %q has no local part", domain.ErrValidation, email)
	}
	return email[:at], nil
}

func (s *profileService) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	return s.store.Profiles().Get(ctx, userID)
}

func (s *profileService) GetOrCreate(ctx context.Context, userID, email string) (*domain.Profile, error) {
	p, _, err := getOrCreateProfile(ctx, s.store.Profiles(), userID, email, time.Now())
	return p, err
}

// getOrCreateProfile loads the stored profile or, when absent, constructs a
// default one with a single lookup. The boolean reports whether the profile
// was freshly constructed and still needs persisting. Shared with conference
// creation, which runs it against transaction-scoped repositories.
func getOrCreateProfile(ctx context.Context, repo domain.ProfileRepository, userID, email string, now time.Time) (*domain.Profile, bool, error) {
	p, err := repo.Get(ctx, userID)
	if err == nil {
		return p, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("get profile: %w", err)
	}
	displayName, err := defaultDisplayName(email)
	if err != nil {
		return nil, false, err
	}
	return domain.NewProfile(userID, displayName, email, domain.SizeNotSpecified, now, now), true, nil
}

// Upsert applies the partial form over the stored profile (or a fresh
// default one) and persists the result. Only fields present in the form
// overwrite; main email is fixed at creation.
func (s *profileService) Upsert(ctx context.Context, userID, email string, form *domain.ProfileForm) (*domain.Profile, error) {
	if form == nil {
		form = &domain.ProfileForm{}
	}
	if form.TeeShirtSize != nil && !form.TeeShirtSize.Valid() {
		return nil, fmt.Errorf("%w: unknown tee shirt size %q", domain.ErrValidation, *form.TeeShirtSize)
	}

	var saved *domain.Profile
	err := s.transactor.RunInTx(ctx, func(st domain.Store) error {
		now := time.Now()
		p, _, err := getOrCreateProfile(ctx, st.Profiles(), userID, email, now)
		if err != nil {
			return err
		}
		p.Update(form.DisplayName, form.TeeShirtSize)
		p.UpdatedAt = now
		if err := st.Profiles().Save(ctx, p); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		saved = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}
