package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/domain"
)

// ConferenceRequest is the request body for POST /conferences and
// PUT /conferences/{websafeKey}. Applying it overwrites every field;
// omitted optional fields fall back to their defaults.
type ConferenceRequest struct {
	Name         string     `json:"name"`
	Description  *string    `json:"description"`
	Topics       []string   `json:"topics"`
	City         *string    `json:"city"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	MaxAttendees int        `json:"max_attendees"`
}

// Validate implements Validator.
func (c ConferenceRequest) Validate() []string {
	var errs []string
	if c.Name == "" {
		errs = append(errs, "name is required")
	}
	if c.MaxAttendees < 0 {
		errs = append(errs, "max_attendees must not be negative")
	}
	if c.StartDate != nil && c.EndDate != nil && c.EndDate.Before(*c.StartDate) {
		errs = append(errs, "end_date must not be before start_date")
	}
	return errs
}

func (c ConferenceRequest) form() *domain.ConferenceForm {
	return &domain.ConferenceForm{
		Name:         c.Name,
		Description:  c.Description,
		Topics:       c.Topics,
		City:         c.City,
		StartDate:    c.StartDate,
		EndDate:      c.EndDate,
		MaxAttendees: c.MaxAttendees,
	}
}

// SeatsRequest is the request body for seat booking and release.
type SeatsRequest struct {
	Seats int `json:"seats"`
}

// Validate implements Validator.
func (s SeatsRequest) Validate() []string {
	if s.Seats < 0 {
		return []string{"seats must not be negative"}
	}
	return nil
}

// ConferenceResponse is a conference together with its websafe key and the
// organizer's display name.
type ConferenceResponse struct {
	*domain.Conference
	WebsafeKey           string `json:"websafe_key"`
	OrganizerDisplayName string `json:"organizer_display_name"`
}

// ConferenceSuccessResponse is the success envelope for conference endpoints.
type ConferenceSuccessResponse struct {
	Data  *ConferenceResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

type ConferenceController struct {
	Logger   *slog.Logger
	Resolver domain.IdentityResolver
	Service  domain.ConferenceService
}

func NewConferenceController(logger *slog.Logger, resolver domain.IdentityResolver, svc domain.ConferenceService) *ConferenceController {
	return &ConferenceController{
		Logger:   logger,
		Resolver: resolver,
		Service:  svc,
	}
}

func (c *ConferenceController) respond(r *http.Request, conf *domain.Conference) *ConferenceResponse {
	return &ConferenceResponse{
		Conference:           conf,
		WebsafeKey:           conf.WebsafeKey(),
		OrganizerDisplayName: c.Service.OrganizerDisplayName(r.Context(), conf),
	}
}

// keyFromPath decodes the websafe key path segment, writing a 400 on failure.
func keyFromPath(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (domain.ConferenceKey, bool) {
	key, err := domain.DecodeConferenceKey(r.PathValue("websafeKey"))
	if err != nil {
		writeDomainError(w, r, logger, err)
		return domain.ConferenceKey{}, false
	}
	return key, true
}

// CreateConference godoc
// @Summary Create a conference
// @Description Creates a conference owned by the caller's profile, creating the profile first if it does not exist yet. The conference id is allocated within the profile's key scope. Immediately after creation seats_available equals max_attendees.
// @Tags conferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param conference body ConferenceRequest true "Conference fields"
// @Success 201 {object} controllers.ConferenceSuccessResponse "data contains the created conference"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences [post]
func (c *ConferenceController) CreateConference(w http.ResponseWriter, r *http.Request) {
	var req ConferenceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, email, ok := resolvePrincipal(w, r, c.Logger, c.Resolver)
	if !ok {
		return
	}
	conf, err := c.Service.Create(r.Context(), userID, email, req.form())
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, c.respond(r, conf))
}

// GetConference godoc
// @Summary Get a conference by websafe key
// @Tags conferences
// @Produce json
// @Security BearerAuth
// @Param websafeKey path string true "Websafe conference key"
// @Success 200 {object} controllers.ConferenceSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /conferences/{websafeKey} [get]
func (c *ConferenceController) GetConference(w http.ResponseWriter, r *http.Request) {
	key, ok := keyFromPath(w, r, c.Logger)
	if !ok {
		return
	}
	conf, err := c.Service.Get(r.Context(), key)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, c.respond(r, conf))
}

// ListConferences godoc
// @Summary List conferences organized by the caller
// @Tags conferences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the conference list"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /conferences [get]
func (c *ConferenceController) ListConferences(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := resolvePrincipal(w, r, c.Logger, c.Resolver)
	if !ok {
		return
	}
	conferences, err := c.Service.ListByOrganizer(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	out := make([]*ConferenceResponse, 0, len(conferences))
	for _, conf := range conferences {
		out = append(out, c.respond(r, conf))
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, out)
}

// UpdateConference godoc
// @Summary Update a conference
// @Description Full field-merge: every field is overwritten from the body. max_attendees may shrink only down to the number of seats already booked.
// @Tags conferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param websafeKey path string true "Websafe conference key"
// @Param conference body ConferenceRequest true "Conference fields"
// @Success 200 {object} controllers.ConferenceSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /conferences/{websafeKey} [put]
func (c *ConferenceController) UpdateConference(w http.ResponseWriter, r *http.Request) {
	var req ConferenceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	key, ok := keyFromPath(w, r, c.Logger)
	if !ok {
		return
	}
	conf, err := c.Service.Update(r.Context(), key, req.form())
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, c.respond(r, conf))
}

// BookSeats godoc
// @Summary Book seats on a conference
// @Tags conferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param websafeKey path string true "Websafe conference key"
// @Param seats body SeatsRequest true "Number of seats to book"
// @Success 200 {object} controllers.ConferenceSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (no seats available)"
// @Router /conferences/{websafeKey}/seats/book [post]
func (c *ConferenceController) BookSeats(w http.ResponseWriter, r *http.Request) {
	c.mutateSeats(w, r, c.Service.BookSeats)
}

// ReleaseSeats godoc
// @Summary Release previously booked seats
// @Tags conferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param websafeKey path string true "Websafe conference key"
// @Param seats body SeatsRequest true "Number of seats to release"
// @Success 200 {object} controllers.ConferenceSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (would exceed capacity)"
// @Router /conferences/{websafeKey}/seats/release [post]
func (c *ConferenceController) ReleaseSeats(w http.ResponseWriter, r *http.Request) {
	c.mutateSeats(w, r, c.Service.ReleaseSeats)
}

func (c *ConferenceController) mutateSeats(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, key domain.ConferenceKey, seats int) (*domain.Conference, error)) {
	var req SeatsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	key, ok := keyFromPath(w, r, c.Logger)
	if !ok {
		return
	}
	conf, err := op(r.Context(), key, req.Seats)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, c.respond(r, conf))
}
