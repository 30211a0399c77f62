package domain

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// ConferenceKey is the composite {owning profile, conference} key. The
// parent-child relation is a pure ownership reference: it is never cyclic
// and never reassigned.
type ConferenceKey struct {
	ProfileID    string
	ConferenceID int64
}

// Encode returns the websafe string form of the key: an opaque, URL-safe
// token callers can share without seeing the internal layout.
func (k ConferenceKey) Encode() string {
	raw := k.ProfileID + "/" + strconv.FormatInt(k.ConferenceID, 10)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeConferenceKey parses a websafe key back into the exact
// {profileId, conferenceId} pair it was encoded from.
func DecodeConferenceKey(s string) (ConferenceKey, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return ConferenceKey{}, fmt.Errorf("%w: malformed conference key", ErrValidation)
	}
	// The conference id contains no '/', so the last separator wins even if
	// the profile id ever contains one.
	sep := strings.LastIndexByte(string(raw), '/')
	if sep <= 0 {
		return ConferenceKey{}, fmt.Errorf("%w: malformed conference key", ErrValidation)
	}
	profileID := string(raw[:sep])
	id, err := strconv.ParseInt(string(raw[sep+1:]), 10, 64)
	if err != nil || id < 1 {
		return ConferenceKey{}, fmt.Errorf("%w: malformed conference key", ErrValidation)
	}
	return ConferenceKey{ProfileID: profileID, ConferenceID: id}, nil
}
