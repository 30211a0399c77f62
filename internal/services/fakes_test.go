package services

import (
	"context"
	"fmt"
	"sync"

	"conferencecentral/internal/domain"
)

// fakeProfileRepo is an in-memory ProfileRepository for tests. It stores
// copies so test assertions see only persisted state, counts lookups, and
// appends to the store-wide write log.
type fakeProfileRepo struct {
	byID     map[string]domain.Profile
	getErr   error
	saveErr  error
	getCalls int
	writes   *[]string
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{byID: make(map[string]domain.Profile)}
}

func (f *fakeProfileRepo) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.byID[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := p
	return &copied, nil
}

func (f *fakeProfileRepo) Save(ctx context.Context, p *domain.Profile) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.byID[p.UserID] = *p
	if f.writes != nil {
		*f.writes = append(*f.writes, "profile")
	}
	return nil
}

// fakeConferenceRepo is an in-memory ConferenceRepository for tests.
type fakeConferenceRepo struct {
	byKey    map[domain.ConferenceKey]domain.Conference
	counters map[string]int64
	saveErr  error
	writes   *[]string
}

func newFakeConferenceRepo() *fakeConferenceRepo {
	return &fakeConferenceRepo{
		byKey:    make(map[domain.ConferenceKey]domain.Conference),
		counters: make(map[string]int64),
	}
}

func (f *fakeConferenceRepo) Get(ctx context.Context, key domain.ConferenceKey) (*domain.Conference, error) {
	c, ok := f.byKey[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := c
	copied.Topics = append([]string(nil), c.Topics...)
	return &copied, nil
}

func (f *fakeConferenceRepo) GetForUpdate(ctx context.Context, key domain.ConferenceKey) (*domain.Conference, error) {
	return f.Get(ctx, key)
}

func (f *fakeConferenceRepo) Save(ctx context.Context, c *domain.Conference) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	copied := *c
	copied.Topics = append([]string(nil), c.Topics...)
	f.byKey[c.Key()] = copied
	if f.writes != nil {
		*f.writes = append(*f.writes, "conference")
	}
	return nil
}

func (f *fakeConferenceRepo) AllocateID(ctx context.Context, organizerID string) (int64, error) {
	f.counters[organizerID]++
	return f.counters[organizerID], nil
}

func (f *fakeConferenceRepo) ListByOrganizer(ctx context.Context, organizerID string) ([]*domain.Conference, error) {
	out := make([]*domain.Conference, 0)
	for key, c := range f.byKey {
		if key.ProfileID == organizerID {
			copied := c
			out = append(out, &copied)
		}
	}
	return out, nil
}

// fakeStore bundles the fake repositories; fakeTransactor runs the callback
// against it directly (no rollback simulation; the tests that care about
// atomicity assert nothing was saved on failure paths). writes records the
// order entity rows hit the store.
type fakeStore struct {
	profiles    *fakeProfileRepo
	conferences *fakeConferenceRepo
	writes      []string
}

func newFakeStore() *fakeStore {
	s := &fakeStore{
		profiles:    newFakeProfileRepo(),
		conferences: newFakeConferenceRepo(),
	}
	s.profiles.writes = &s.writes
	s.conferences.writes = &s.writes
	return s
}

func (s *fakeStore) Profiles() domain.ProfileRepository       { return s.profiles }
func (s *fakeStore) Conferences() domain.ConferenceRepository { return s.conferences }

type fakeTransactor struct {
	store *fakeStore
	err   error
}

func (t *fakeTransactor) RunInTx(ctx context.Context, fn func(s domain.Store) error) error {
	if t.err != nil {
		return t.err
	}
	return fn(t.store)
}

// fakeIdentityRepo tracks which read path the resolver uses.
type fakeIdentityRepo struct {
	mu             sync.Mutex
	byEmail        map[string]domain.Identity
	nextID         int
	putErr         error
	consistentErr  error
	consistentGets int
	cachedGets     int
}

func newFakeIdentityRepo() *fakeIdentityRepo {
	return &fakeIdentityRepo{byEmail: make(map[string]domain.Identity), nextID: 1}
}

func (f *fakeIdentityRepo) Put(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	if _, ok := f.byEmail[email]; !ok {
		f.byEmail[email] = domain.Identity{Email: email, UserID: fmt.Sprintf("assigned-%d", f.nextID)}
		f.nextID++
	}
	return nil
}

func (f *fakeIdentityRepo) Get(ctx context.Context, email string) (*domain.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cachedGets++
	id, ok := f.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &id, nil
}

func (f *fakeIdentityRepo) GetConsistent(ctx context.Context, email string) (*domain.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.consistentGets++
	if f.consistentErr != nil {
		return nil, f.consistentErr
	}
	id, ok := f.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &id, nil
}

// fakeEmailService records conference-created notifications.
type fakeEmailService struct {
	sent []*domain.ConferenceCreatedEmailData
	err  error
}

func (f *fakeEmailService) SendConferenceCreated(ctx context.Context, data *domain.ConferenceCreatedEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}
