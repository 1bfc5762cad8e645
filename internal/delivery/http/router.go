package http

import (
	"context"
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"communityevents/internal/delivery/http/controllers"
	"communityevents/internal/delivery/http/helpers"
	"communityevents/internal/delivery/http/middleware"
	"communityevents/internal/domain"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Auth       *controllers.AuthController
	Category   *controllers.CategoryController
	Event      *controllers.EventController
	Attendance *controllers.AttendanceController
	Comment    *controllers.CommentController
	Rating     *controllers.RatingController
	Favorite   *controllers.FavoriteController
	User       *controllers.UserController
}

// HealthCheck reports whether the service's dependencies are reachable.
type HealthCheck func(ctx context.Context) error

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, verifier domain.TokenVerifier, accounts middleware.AccountLookup, health HealthCheck, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, accounts, logger)
	optional := middleware.OptionalAuth(verifier, accounts, logger)

	// Auth
	mux.HandleFunc("POST /api/auth/register", c.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", c.Auth.Login)

	// Categories
	mux.HandleFunc("GET /api/categories", c.Category.ListCategories)
	mux.HandleFunc("GET /api/categories/{id}", c.Category.GetCategory)

	// Events
	mux.HandleFunc("GET /api/events", optional(c.Event.ListEvents))
	mux.HandleFunc("GET /api/events/search", optional(c.Event.SearchEvents))
	mux.HandleFunc("GET /api/events/my-events", auth(c.Event.ListMyEvents))
	mux.HandleFunc("GET /api/events/attending", auth(c.Event.ListAttendingEvents))
	mux.HandleFunc("POST /api/events", auth(c.Event.CreateEvent))
	mux.HandleFunc("GET /api/events/{id}", optional(c.Event.GetEvent))
	mux.HandleFunc("PUT /api/events/{id}", auth(c.Event.UpdateEvent))
	mux.HandleFunc("DELETE /api/events/{id}", auth(c.Event.DeleteEvent))
	mux.HandleFunc("POST /api/events/{id}/publish", auth(c.Event.PublishEvent))
	mux.HandleFunc("POST /api/events/{id}/cancel", auth(c.Event.CancelEvent))
	mux.HandleFunc("POST /api/events/{id}/archive", auth(c.Event.ArchiveEvent))
	mux.HandleFunc("POST /api/events/{id}/cover", auth(c.Event.UploadCover))

	// Attendance
	mux.HandleFunc("POST /api/events/{id}/attendance", auth(c.Attendance.Register))
	mux.HandleFunc("PUT /api/events/{id}/attendance", auth(c.Attendance.UpdateStatus))
	mux.HandleFunc("DELETE /api/events/{id}/attendance", auth(c.Attendance.CancelAttendance))
	mux.HandleFunc("GET /api/events/{id}/my-ticket", auth(c.Attendance.GetTicket))
	mux.HandleFunc("POST /api/events/{id}/checkin", auth(c.Attendance.CheckIn))
	mux.HandleFunc("GET /api/events/{id}/attendance-list", auth(c.Attendance.AttendanceList))

	// Comments
	mux.HandleFunc("GET /api/events/{id}/comments", optional(c.Comment.ListComments))
	mux.HandleFunc("POST /api/events/{id}/comments", auth(c.Comment.CreateComment))
	mux.HandleFunc("PUT /api/events/{id}/comments/{commentId}", auth(c.Comment.UpdateComment))
	mux.HandleFunc("DELETE /api/events/{id}/comments/{commentId}", auth(c.Comment.DeleteComment))

	// Ratings
	mux.HandleFunc("GET /api/events/{id}/ratings", c.Rating.ListRatings)
	mux.HandleFunc("POST /api/events/{id}/ratings", auth(c.Rating.RateEvent))
	mux.HandleFunc("DELETE /api/events/{id}/ratings", auth(c.Rating.DeleteRating))
	mux.HandleFunc("GET /api/events/{id}/ratings/average", c.Rating.AverageRating)

	// Favorites
	mux.HandleFunc("POST /api/events/{id}/favorite", auth(c.Favorite.AddFavorite))
	mux.HandleFunc("DELETE /api/events/{id}/favorite", auth(c.Favorite.RemoveFavorite))
	mux.HandleFunc("GET /api/events/{id}/favorite/check", auth(c.Favorite.CheckFavorite))
	mux.HandleFunc("GET /api/users/favorites", auth(c.Favorite.ListFavorites))

	// Users
	mux.HandleFunc("GET /api/users/me", auth(c.User.GetMe))
	mux.HandleFunc("PUT /api/users/me", auth(c.User.UpdateMe))
	mux.HandleFunc("DELETE /api/users/me", auth(c.User.DeleteMe))
	mux.HandleFunc("PUT /api/users/me/password", auth(c.User.ChangePassword))

	mux.HandleFunc("GET /healthz", healthz(health, logger))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// Handler wraps the router with the request id, access log and CORS middleware.
func Handler(mux http.Handler, logger *slog.Logger, allowedOrigins []string) http.Handler {
	return middleware.RequestID(middleware.LoggingMiddleware(logger, middleware.CORS(allowedOrigins, mux)))
}

func healthz(check HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := check(r.Context()); err != nil {
			logger.WarnContext(r.Context(), "health check failed", "err", err)
			helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeUnavailable, "database unreachable")
			return
		}
		helpers.WriteJSONSuccess(w, http.StatusOK, helpers.StatusResponse{Status: "ok"})
	}
}
