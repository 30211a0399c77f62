package domain

import "context"

// Store bundles the repositories that participate in a transaction scope.
type Store interface {
	Profiles() ProfileRepository
	Conferences() ConferenceRepository
}

// Transactor provides the atomic multi-entity write boundary. Either every
// read-check-write inside fn becomes visible, or none does. Concurrent
// writers against the same conference key serialize at the store layer
// (GetForUpdate), so a writer never applies its delta to a stale base.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(s Store) error) error
}
