package domain

import (
	"context"
	"time"
)

// TeeShirtSize is the organizer's shirt-size preference.
type TeeShirtSize string

// Valid tee shirt sizes.
const (
	SizeNotSpecified TeeShirtSize = "NOT_SPECIFIED"
	SizeXS           TeeShirtSize = "XS"
	SizeS            TeeShirtSize = "S"
	SizeM            TeeShirtSize = "M"
	SizeL            TeeShirtSize = "L"
	SizeXL           TeeShirtSize = "XL"
	SizeXXL          TeeShirtSize = "XXL"
	SizeXXXL         TeeShirtSize = "XXXL"
)

// Valid reports whether s is one of the defined sizes.
func (s TeeShirtSize) Valid() bool {
	switch s {
	case SizeNotSpecified, SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL, SizeXXXL:
		return true
	}
	return false
}

// Profile represents an organizer profile, keyed by the durable principal id.
// MainEmail is set once at creation and never updated.
// swagger:model Profile
type Profile struct {
	UserID       string       `json:"user_id"`
	DisplayName  string       `json:"display_name"`
	MainEmail    string       `json:"main_email"`
	TeeShirtSize TeeShirtSize `json:"tee_shirt_size"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// NewProfile returns a new Profile with the given fields.
func NewProfile(userID, displayName, mainEmail string, size TeeShirtSize, createdAt, updatedAt time.Time) *Profile {
	return &Profile{
		UserID:       userID,
		DisplayName:  displayName,
		MainEmail:    mainEmail,
		TeeShirtSize: size,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// Update applies a partial update: only non-nil fields overwrite.
func (p *Profile) Update(displayName *string, size *TeeShirtSize) {
	if displayName != nil {
		p.DisplayName = *displayName
	}
	if size != nil {
		p.TeeShirtSize = *size
	}
}

// ProfileForm is the client-supplied profile form. Nil fields were omitted.
type ProfileForm struct {
	DisplayName  *string       `json:"display_name"`
	TeeShirtSize *TeeShirtSize `json:"tee_shirt_size"`
}

// ProfileRepository defines the interface for profile storage.
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	// Save upserts the profile. MainEmail is only written on first insert.
	Save(ctx context.Context, p *Profile) error
}

// ProfileService defines the business logic for organizer profiles.
type ProfileService interface {
	// Get returns the stored profile, or ErrNotFound.
	Get(ctx context.Context, userID string) (*Profile, error)
	// GetOrCreate returns the stored profile or, when absent, a default
	// profile derived from the email. It does not persist.
	GetOrCreate(ctx context.Context, userID, email string) (*Profile, error)
	// Upsert applies the partial form over the stored (or default) profile
	// and persists the result.
	Upsert(ctx context.Context, userID, email string, form *ProfileForm) (*Profile, error)
}
