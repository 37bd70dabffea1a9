package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	domainerrors "github.com/secretshows/secretshows-server/internal/errors"
	"github.com/secretshows/secretshows-server/internal/id"
	"github.com/secretshows/secretshows-server/internal/logger"
	"github.com/secretshows/secretshows-server/internal/session"
)

// ProfileCookieName is the cookie carrying the browser profile ID.
const ProfileCookieName = "secretshows_profile"

// profileCookieMaxAge keeps the profile for a year of inactivity.
const profileCookieMaxAge = 365 * 24 * 60 * 60

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const contextKeyProfileID contextKey = "profile_id"

// profileMiddleware attaches the browser profile to API requests, issuing a new
// profile cookie when the request has none or an invalid one.
func (s *Server) profileMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}

		profileID := ""
		if c, err := r.Cookie(ProfileCookieName); err == nil && id.IsProfile(c.Value) {
			profileID = c.Value
		}
		if profileID == "" {
			profileID = id.NewProfile()
			http.SetCookie(w, &http.Cookie{
				Name:     ProfileCookieName,
				Value:    profileID,
				Path:     "/",
				MaxAge:   profileCookieMaxAge,
				HttpOnly: true,
				Secure:   s.config.Session.CookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), contextKeyProfileID, profileID)
		ctx = logger.IntoContext(ctx, s.logger.WithProfile(profileID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// observe logs each request and records it in the metrics.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		s.metrics.RecordRequest(r.Method, route, status, duration)
		s.logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", duration,
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// getProfileID extracts the browser profile ID from request context.
// Returns empty string outside the API routes.
func getProfileID(ctx context.Context) string {
	if profileID, ok := ctx.Value(contextKeyProfileID).(string); ok {
		return profileID
	}
	return ""
}

// sessionStore returns the session store of the requesting browser profile.
func (s *Server) sessionStore(ctx context.Context) (*session.Store, error) {
	profileID := getProfileID(ctx)
	if profileID == "" {
		return nil, domainerrors.Internal("request has no browser profile")
	}
	return s.services.Sessions.Get(ctx, profileID)
}

// requireUser returns the session store of the requesting profile when a user is signed in.
func (s *Server) requireUser(ctx context.Context) (*session.Store, error) {
	st, err := s.sessionStore(ctx)
	if err != nil {
		return nil, err
	}
	if !st.IsAuthenticated() {
		return nil, domainerrors.Unauthorized("Please log in to continue")
	}
	return st, nil
}

// requestLogger returns the profile scoped logger for the request.
func (s *Server) requestLogger(ctx context.Context) *logger.Logger {
	return logger.FromContext(ctx, s.logger)
}
