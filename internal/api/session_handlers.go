package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/secretshows/secretshows-server/internal/domain"
	domainerrors "github.com/secretshows/secretshows-server/internal/errors"
	"github.com/secretshows/secretshows-server/internal/session"
)

func (s *Server) registerSessionRoutes() {
	register(s.api, huma.Operation{
		OperationID: "getSession",
		Method:      http.MethodGet,
		Path:        "/api/v1/session",
		Summary:     "Get session",
		Description: "Returns the signed in user, bookings and saved events of this browser profile",
		Tags:        []string{"Session"},
	}, s.handleGetSession)

	register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/session/login",
		Summary:     "Log in",
		Description: "Signs in with any email and password",
		Tags:        []string{"Session"},
		Middlewares: huma.Middlewares{s.authRateLimit},
	}, s.handleLogin)

	register(s.api, huma.Operation{
		OperationID: "signup",
		Method:      http.MethodPost,
		Path:        "/api/v1/session/signup",
		Summary:     "Sign up",
		Description: "Creates a simulated account and signs it in",
		Tags:        []string{"Session"},
		Middlewares: huma.Middlewares{s.authRateLimit},
	}, s.handleSignup)

	register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/v1/session/logout",
		Summary:     "Log out",
		Description: "Signs out; bookings and saved events stay with the browser profile",
		Tags:        []string{"Session"},
	}, s.handleLogout)

	register(s.api, huma.Operation{
		OperationID: "getProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/session/profile",
		Summary:     "Get profile",
		Description: "Returns the profile page: user, booked events and saved events",
		Tags:        []string{"Session"},
	}, s.handleGetProfile)

	register(s.api, huma.Operation{
		OperationID: "updateProfile",
		Method:      http.MethodPatch,
		Path:        "/api/v1/session/profile",
		Summary:     "Update profile",
		Description: "Changes the signed in user's details",
		Tags:        []string{"Session"},
	}, s.handleUpdateProfile)
}

// === DTOs ===

// SessionResponse is the session state of a browser profile.
type SessionResponse struct {
	User            *domain.User     `json:"user" doc:"Signed in user, null when signed out"`
	IsAuthenticated bool             `json:"is_authenticated" doc:"Whether a user is signed in"`
	Bookings        []domain.Booking `json:"bookings" doc:"Bookings in the order they were made"`
	SavedEvents     []string         `json:"saved_events" doc:"Saved event IDs in the order they were saved"`
}

// SessionOutput wraps the session state for Huma.
type SessionOutput struct {
	Body SessionResponse
}

// LoginRequest is the request body for logging in.
type LoginRequest struct {
	Email    string `json:"email,omitempty" doc:"Any email address"`
	Password string `json:"password,omitempty" doc:"Any password"`
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body LoginRequest
}

// SignupRequest is the request body for signing up.
type SignupRequest struct {
	Name     string `json:"name,omitempty" doc:"Display name"`
	Email    string `json:"email,omitempty" doc:"Email address"`
	Password string `json:"password,omitempty" doc:"At least 6 characters"`
}

// SignupInput wraps the signup request for Huma.
type SignupInput struct {
	Body SignupRequest
}

// BookedEvent joins a booking to its catalog event.
type BookedEvent struct {
	Booking domain.Booking `json:"booking" doc:"The booking"`
	Event   domain.Event   `json:"event" doc:"The booked event"`
}

// ProfileResponse is the profile page.
type ProfileResponse struct {
	User        domain.User    `json:"user" doc:"Signed in user"`
	Bookings    []BookedEvent  `json:"bookings" doc:"Bookings in the order they were made"`
	SavedEvents []domain.Event `json:"saved_events" doc:"Saved events in catalog order"`
}

// ProfileOutput wraps the profile page for Huma.
type ProfileOutput struct {
	Body ProfileResponse
}

// UpdateProfileRequest is the request body for updating the profile.
type UpdateProfileRequest struct {
	Name   *string `json:"name,omitempty" maxLength:"100" doc:"Display name"`
	Email  *string `json:"email,omitempty" maxLength:"254" doc:"Email address"`
	Avatar *string `json:"avatar,omitempty" maxLength:"2048" doc:"Avatar image URL"`
	City   *string `json:"city,omitempty" maxLength:"100" doc:"Home city"`
}

// UpdateProfileInput wraps the profile update for Huma.
type UpdateProfileInput struct {
	Body UpdateProfileRequest
}

// UserOutput wraps a user for Huma.
type UserOutput struct {
	Body domain.User
}

// === Handlers ===

func sessionResponse(st *session.Store) SessionResponse {
	snap := st.Snapshot()
	return SessionResponse{
		User:            snap.User,
		IsAuthenticated: snap.User != nil,
		Bookings:        snap.Bookings,
		SavedEvents:     snap.Saved,
	}
}

func (s *Server) handleGetSession(ctx context.Context, _ *struct{}) (*SessionOutput, error) {
	st, err := s.sessionStore(ctx)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: sessionResponse(st)}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*SessionOutput, error) {
	st, err := s.sessionStore(ctx)
	if err != nil {
		return nil, err
	}

	_, err = st.Login(ctx, input.Body.Email, input.Body.Password)
	s.metrics.RecordAuth("login", err == nil)
	if err != nil {
		return nil, err
	}

	return &SessionOutput{Body: sessionResponse(st)}, nil
}

func (s *Server) handleSignup(ctx context.Context, input *SignupInput) (*SessionOutput, error) {
	st, err := s.sessionStore(ctx)
	if err != nil {
		return nil, err
	}

	_, err = st.Signup(ctx, input.Body.Name, input.Body.Email, input.Body.Password)
	s.metrics.RecordAuth("signup", err == nil)
	if err != nil {
		return nil, err
	}

	return &SessionOutput{Body: sessionResponse(st)}, nil
}

func (s *Server) handleLogout(ctx context.Context, _ *struct{}) (*SessionOutput, error) {
	st, err := s.sessionStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Logout(ctx); err != nil {
		return nil, err
	}

	s.requestLogger(ctx).Info("user logged out")
	return &SessionOutput{Body: sessionResponse(st)}, nil
}

func (s *Server) handleGetProfile(ctx context.Context, _ *struct{}) (*ProfileOutput, error) {
	st, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	c := s.services.Catalog.Current()
	snap := st.Snapshot()
	if snap.User == nil {
		return nil, domainerrors.Unauthorized("Please log in to continue")
	}

	// Bookings for events that have left the catalog are not shown.
	bookings := make([]BookedEvent, 0, len(snap.Bookings))
	for _, b := range snap.Bookings {
		if event, ok := c.Event(b.EventID); ok {
			bookings = append(bookings, BookedEvent{Booking: b, Event: event})
		}
	}

	return &ProfileOutput{
		Body: ProfileResponse{
			User:        *snap.User,
			Bookings:    bookings,
			SavedEvents: c.EventsByID(snap.Saved),
		},
	}, nil
}

func (s *Server) handleUpdateProfile(ctx context.Context, input *UpdateProfileInput) (*UserOutput, error) {
	st, err := s.sessionStore(ctx)
	if err != nil {
		return nil, err
	}

	user, err := st.UpdateProfile(ctx, domain.ProfileUpdate{
		Name:   input.Body.Name,
		Email:  input.Body.Email,
		Avatar: input.Body.Avatar,
		City:   input.Body.City,
	})
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: *user}, nil
}
