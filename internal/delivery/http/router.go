package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"conferencecentral/internal/delivery/http/controllers"
	"conferencecentral/internal/delivery/http/middleware"
	"conferencecentral/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(
	profileController *controllers.ProfileController,
	conferenceController *controllers.ConferenceController,
	verifier domain.TokenVerifier,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier)

	// Profile
	mux.HandleFunc("POST /profile", auth(profileController.SaveProfile))
	mux.HandleFunc("GET /profile", auth(profileController.GetProfile))

	// Conferences
	mux.HandleFunc("POST /conferences", auth(conferenceController.CreateConference))
	mux.HandleFunc("GET /conferences", auth(conferenceController.ListConferences))
	mux.HandleFunc("GET /conferences/{websafeKey}", auth(conferenceController.GetConference))
	mux.HandleFunc("PUT /conferences/{websafeKey}", auth(conferenceController.UpdateConference))
	mux.HandleFunc("POST /conferences/{websafeKey}/seats/book", auth(conferenceController.BookSeats))
	mux.HandleFunc("POST /conferences/{websafeKey}/seats/release", auth(conferenceController.ReleaseSeats))

	// Operational endpoints
	mux.Handle("/swagger/", httpSwagger.WrapHandler)
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}
