package services

import (
	"context"
	"fmt"

	"conferencecentral/internal/domain"
)

type identityService struct {
	identityRepo domain.IdentityRepository
}

// NewIdentityService returns an IdentityResolver backed by the given
// identity repository.
func NewIdentityService(identityRepo domain.IdentityRepository) domain.IdentityResolver {
	return &identityService{identityRepo: identityRepo}
}

// Resolve returns the durable principal id for p.
//
// When the platform already supplies one it is returned as-is without any
// store access. Otherwise we persist a synthetic identity record keyed by
// the email and immediately re-read it with a strongly consistent read to
// pick up the store-assigned id. The re-read must bypass any read-through
// cache: a cached read taken before the write could report the record as
// absent and we would surface a partial identity. Resolution of the same
// principal is idempotent because re-putting an existing email keeps the
// originally assigned id.
func (s *identityService) Resolve(ctx context.Context, p domain.Principal) (string, error) {
	if p.ID != "" {
		return p.ID, nil
	}
	if p.Email == "" {
		return "", fmt.Errorf("%w: principal has neither id nor email", domain.ErrIdentityResolution)
	}

	if err := s.identityRepo.Put(ctx, p.Email); err != nil {
		return "", fmt.Errorf("%w: persist identity record: %v", domain.ErrIdentityResolution, err)
	}
	id, err := s.identityRepo.GetConsistent(ctx, p.Email)
	if err != nil {
		return "", fmt.Errorf("%w: re-read identity record: %v", domain.ErrIdentityResolution, err)
	}
	return id.UserID, nil
}
