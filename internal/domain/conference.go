package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Field defaults applied when a conference form omits them.
const DefaultCity = "Default City"

var defaultTopics = []string{"Default", "Topic"}

// Conference is the conference aggregate. It is keyed by
// {OrganizerID, ID}: ID is unique only within the owning profile's scope.
// OrganizerID never changes after creation.
//
// Invariant: 0 <= SeatsAvailable <= MaxAttendees, and
// MaxAttendees - SeatsAvailable is the number of seats currently booked.
// swagger:model Conference
type Conference struct {
	ID             int64      `json:"id"`
	OrganizerID    string     `json:"organizer_id"`
	Name           string     `json:"name"`
	Description    *string    `json:"description,omitempty"`
	Topics         []string   `json:"topics"`
	City           string     `json:"city"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	Month          int        `json:"month"`
	MaxAttendees   int        `json:"max_attendees"`
	SeatsAvailable int        `json:"seats_available"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ConferenceForm is the client-supplied conference form. Name and
// MaxAttendees are required; the rest default per ApplyForm. Applying a form
// overwrites every field (full field-merge), unlike the profile's partial
// merge.
type ConferenceForm struct {
	Name         string     `json:"name"`
	Description  *string    `json:"description"`
	Topics       []string   `json:"topics"`
	City         *string    `json:"city"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	MaxAttendees int        `json:"max_attendees"`
}

// NewConference builds a conference owned by organizerID with the allocated
// id and the given form applied.
func NewConference(id int64, organizerID string, form *ConferenceForm, now time.Time) (*Conference, error) {
	c := &Conference{
		ID:          id,
		OrganizerID: organizerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := c.ApplyForm(form, now); err != nil {
		return nil, err
	}
	return c, nil
}

// ApplyForm overwrites the conference's fields from the form, applying
// defaults and re-deriving Month. Used on creation and on every update.
//
// The capacity rule: seats already booked (MaxAttendees - SeatsAvailable)
// must still fit, so the new MaxAttendees may shrink only down to that
// count. On success SeatsAvailable becomes MaxAttendees minus the booked
// count. The receiver is not mutated when an error is returned.
func (c *Conference) ApplyForm(form *ConferenceForm, now time.Time) error {
	if form == nil || strings.TrimSpace(form.Name) == "" {
		return fmt.Errorf("%w: conference name is required", ErrValidation)
	}
	allocated := c.MaxAttendees - c.SeatsAvailable
	if form.MaxAttendees < allocated {
		return fmt.Errorf("%w: %d seats are already allocated, but maxAttendees was set to %d",
			ErrCapacity, allocated, form.MaxAttendees)
	}

	c.Name = form.Name
	c.Description = copyStringPtr(form.Description)

	if len(form.Topics) == 0 {
		c.Topics = append([]string(nil), defaultTopics...)
	} else {
		c.Topics = append([]string(nil), form.Topics...)
	}

	if form.City == nil {
		c.City = DefaultCity
	} else {
		c.City = *form.City
	}

	// Dates are copied by value so the aggregate never shares a pointer
	// with the caller's form.
	c.StartDate = copyTimePtr(form.StartDate)
	c.EndDate = copyTimePtr(form.EndDate)
	c.Month = 0
	if c.StartDate != nil {
		c.Month = int(c.StartDate.Month())
	}

	c.MaxAttendees = form.MaxAttendees
	c.SeatsAvailable = form.MaxAttendees - allocated
	c.UpdatedAt = now
	return nil
}

// BookSeats removes seats from the available pool.
func (c *Conference) BookSeats(seats int) error {
	if seats < 0 {
		return fmt.Errorf("%w: seats must not be negative", ErrValidation)
	}
	if seats > c.SeatsAvailable {
		return fmt.Errorf("%w: there are no seats available", ErrCapacity)
	}
	c.SeatsAvailable -= seats
	return nil
}

// ReleaseSeats returns previously booked seats to the available pool.
func (c *Conference) ReleaseSeats(seats int) error {
	if seats < 0 {
		return fmt.Errorf("%w: seats must not be negative", ErrValidation)
	}
	if c.SeatsAvailable+seats > c.MaxAttendees {
		return fmt.Errorf("%w: the number of seats would exceed the capacity", ErrCapacity)
	}
	c.SeatsAvailable += seats
	return nil
}

// Key returns the composite key identifying this conference.
func (c *Conference) Key() ConferenceKey {
	return ConferenceKey{ProfileID: c.OrganizerID, ConferenceID: c.ID}
}

// WebsafeKey returns the externally shareable string form of the key.
func (c *Conference) WebsafeKey() string {
	return c.Key().Encode()
}

func copyStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// ConferenceRepository defines the interface for conference storage.
type ConferenceRepository interface {
	Get(ctx context.Context, key ConferenceKey) (*Conference, error)
	// GetForUpdate loads the conference with a row lock so that concurrent
	// read-modify-write cycles against the same key serialize. Only
	// meaningful inside a transaction.
	GetForUpdate(ctx context.Context, key ConferenceKey) (*Conference, error)
	// Save upserts the conference under its composite key.
	Save(ctx context.Context, c *Conference) error
	// AllocateID returns the next conference id unique within the
	// organizer's key scope. Never reuses an id; not required to be gapless.
	AllocateID(ctx context.Context, organizerID string) (int64, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]*Conference, error)
}

// ConferenceService defines the business logic for conference management
// and seat bookkeeping.
type ConferenceService interface {
	Create(ctx context.Context, organizerID, email string, form *ConferenceForm) (*Conference, error)
	Get(ctx context.Context, key ConferenceKey) (*Conference, error)
	// OrganizerDisplayName resolves the owning profile's display name,
	// falling back to the raw organizer id when the profile is absent.
	OrganizerDisplayName(ctx context.Context, c *Conference) string
	ListByOrganizer(ctx context.Context, organizerID string) ([]*Conference, error)
	Update(ctx context.Context, key ConferenceKey, form *ConferenceForm) (*Conference, error)
	BookSeats(ctx context.Context, key ConferenceKey, seats int) (*Conference, error)
	ReleaseSeats(ctx context.Context, key ConferenceKey, seats int) (*Conference, error)
}
