package controllers

import (
	"log/slog"
	"net/http"

	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/delivery/http/middleware"
	"conferencecentral/internal/domain"
)

// SaveProfileRequest is the request body for POST /profile. Omitted fields
// leave the stored value untouched.
type SaveProfileRequest struct {
	DisplayName  *string `json:"display_name"`
	TeeShirtSize *string `json:"tee_shirt_size"`
}

// Validate implements Validator.
func (r SaveProfileRequest) Validate() []string {
	var errs []string
	if r.DisplayName != nil && *r.DisplayName == "" {
		errs = append(errs, "display_name must not be empty when present")
	}
	if r.TeeShirtSize != nil && !domain.TeeShirtSize(*r.TeeShirtSize).Valid() {
		errs = append(errs, "tee_shirt_size is not a known size")
	}
	return errs
}

// ProfileSuccessResponse is the success envelope for profile endpoints.
type ProfileSuccessResponse struct {
	Data  *domain.Profile   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type ProfileController struct {
	Logger   *slog.Logger
	Resolver domain.IdentityResolver
	Service  domain.ProfileService
}

func NewProfileController(logger *slog.Logger, resolver domain.IdentityResolver, svc domain.ProfileService) *ProfileController {
	return &ProfileController{
		Logger:   logger,
		Resolver: resolver,
		Service:  svc,
	}
}

// resolvePrincipal extracts the caller principal and resolves its durable
// id. Returns false after writing the error response.
func resolvePrincipal(w http.ResponseWriter, r *http.Request, logger *slog.Logger, resolver domain.IdentityResolver) (userID, email string, ok bool) {
	principal, found := middleware.PrincipalFromContext(r.Context())
	if !found {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return "", "", false
	}
	userID, err := resolver.Resolve(r.Context(), principal)
	if err != nil {
		writeDomainError(w, r, logger, err)
		return "", "", false
	}
	return userID, principal.Email, true
}

// SaveProfile godoc
// @Summary Create or update the caller's profile
// @Description Applies a partial update: only fields present in the body overwrite. A missing profile is created with defaults (display name derived from the email's local part, tee shirt size NOT_SPECIFIED).
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body SaveProfileRequest true "Profile fields to set"
// @Success 200 {object} controllers.ProfileSuccessResponse "data contains the saved profile"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /profile [post]
func (c *ProfileController) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var req SaveProfileRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, email, ok := resolvePrincipal(w, r, c.Logger, c.Resolver)
	if !ok {
		return
	}

	form := &domain.ProfileForm{DisplayName: req.DisplayName}
	if req.TeeShirtSize != nil {
		size := domain.TeeShirtSize(*req.TeeShirtSize)
		form.TeeShirtSize = &size
	}
	profile, err := c.Service.Upsert(r.Context(), userID, email, form)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, profile)
}

// GetProfile godoc
// @Summary Get the caller's profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ProfileSuccessResponse "data contains the profile"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /profile [get]
func (c *ProfileController) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := resolvePrincipal(w, r, c.Logger, c.Resolver)
	if !ok {
		return
	}
	profile, err := c.Service.Get(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, profile)
}
