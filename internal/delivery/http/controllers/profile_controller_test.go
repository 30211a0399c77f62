package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/delivery/http/middleware"
	"conferencecentral/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeResolver implements domain.IdentityResolver for handler tests.
type fakeResolver struct {
	userID string
	err    error
}

func (f *fakeResolver) Resolve(_ context.Context, p domain.Principal) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.userID != "" {
		return f.userID, nil
	}
	return p.ID, nil
}

// fakeProfileService implements domain.ProfileService for handler tests.
type fakeProfileService struct {
	profile    *domain.Profile
	getErr     error
	upsertErr  error
	lastUserID string
	lastForm   *domain.ProfileForm
}

func (f *fakeProfileService) Get(_ context.Context, userID string) (*domain.Profile, error) {
	f.lastUserID = userID
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.profile, nil
}

func (f *fakeProfileService) GetOrCreate(_ context.Context, userID, email string) (*domain.Profile, error) {
	f.lastUserID = userID
	return f.profile, nil
}

func (f *fakeProfileService) Upsert(_ context.Context, userID, email string, form *domain.ProfileForm) (*domain.Profile, error) {
	f.lastUserID = userID
	f.lastForm = form
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	return f.profile, nil
}

func authedRequest(method, target string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := middleware.SetPrincipal(req.Context(), domain.Principal{ID: "user-1", Email: "lemoncake@example.com"})
	return req.WithContext(ctx)
}

func TestProfileController_SaveProfile(t *testing.T) {
	now := time.Now()
	stored := domain.NewProfile("user-1", "lemoncake", "lemoncake@example.com", domain.SizeL, now, now)

	tests := []struct {
		name       string
		body       string
		svc        *fakeProfileService
		wantStatus int
		wantSize   *domain.TeeShirtSize
	}{
		{
			name:       "partial update passes only present fields",
			body:       `{"tee_shirt_size":"L"}`,
			svc:        &fakeProfileService{profile: stored},
			wantStatus: http.StatusOK,
			wantSize:   func() *domain.TeeShirtSize { s := domain.SizeL; return &s }(),
		},
		{
			name:       "unknown size rejected before the service is called",
			body:       `{"tee_shirt_size":"HUGE"}`,
			svc:        &fakeProfileService{profile: stored},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown field rejected",
			body:       `{"shirt":"L"}`,
			svc:        &fakeProfileService{profile: stored},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewProfileController(testLogger, &fakeResolver{}, tt.svc)
			req := authedRequest(http.MethodPost, "/profile", []byte(tt.body))
			rec := httptest.NewRecorder()

			ctrl.SaveProfile(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				assert.Nil(t, tt.svc.lastForm, "service must not be called on invalid input")
				return
			}
			require.NotNil(t, tt.svc.lastForm)
			assert.Equal(t, "user-1", tt.svc.lastUserID)
			assert.Nil(t, tt.svc.lastForm.DisplayName)
			require.NotNil(t, tt.svc.lastForm.TeeShirtSize)
			assert.Equal(t, *tt.wantSize, *tt.svc.lastForm.TeeShirtSize)
		})
	}
}

func TestProfileController_SaveProfile_Unauthenticated(t *testing.T) {
	ctrl := NewProfileController(testLogger, &fakeResolver{}, &fakeProfileService{})
	req := httptest.NewRequest(http.MethodPost, "/profile", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()

	ctrl.SaveProfile(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfileController_SaveProfile_ResolverFailure(t *testing.T) {
	resolver := &fakeResolver{err: domain.ErrIdentityResolution}
	ctrl := NewProfileController(testLogger, resolver, &fakeProfileService{})
	req := authedRequest(http.MethodPost, "/profile", []byte(`{}`))
	rec := httptest.NewRecorder()

	ctrl.SaveProfile(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestProfileController_GetProfile(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name       string
		svc        *fakeProfileService
		wantStatus int
		wantCode   string
	}{
		{
			name:       "success",
			svc:        &fakeProfileService{profile: domain.NewProfile("user-1", "lemoncake", "lemoncake@example.com", domain.SizeNotSpecified, now, now)},
			wantStatus: http.StatusOK,
		},
		{
			name:       "not found",
			svc:        &fakeProfileService{getErr: domain.ErrNotFound},
			wantStatus: http.StatusNotFound,
			wantCode:   helpers.ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewProfileController(testLogger, &fakeResolver{}, tt.svc)
			req := authedRequest(http.MethodGet, "/profile", nil)
			rec := httptest.NewRecorder()

			ctrl.GetProfile(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "user-1", tt.svc.lastUserID)

			var resp helpers.APIResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			if tt.wantCode != "" {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantCode, resp.Error.Code)
				return
			}
			require.Nil(t, resp.Error)
			require.NotNil(t, resp.Data)
		})
	}
}
