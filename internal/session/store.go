// Package session holds the per-profile Session Store: the simulated user,
// their bookings and their saved events, persisted on every change.
package session

import (
	"context"
	"errors"
	"html"
	"slices"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/secretshows/secretshows-server/internal/clock"
	"github.com/secretshows/secretshows-server/internal/domain"
	domainerrors "github.com/secretshows/secretshows-server/internal/errors"
	"github.com/secretshows/secretshows-server/internal/id"
	"github.com/secretshows/secretshows-server/internal/logger"
	"github.com/secretshows/secretshows-server/internal/validation"
)

// DefaultAuthDelay is how long login and signup pause before answering.
const DefaultAuthDelay = time.Second

var (
	validate = validation.New()
	policy   = bluemonday.StrictPolicy()
)

type loginRequest struct {
	Email    string `json:"email" validate:"required" msg:"Email and password are required"`
	Password string `json:"password" validate:"required" msg:"Email and password are required"`
}

type signupRequest struct {
	Name     string `json:"name" validate:"required" msg:"All fields are required"`
	Email    string `json:"email" validate:"required" msg:"All fields are required"`
	Password string `json:"password" validate:"required,min=6" msg:"All fields are required" msg_min:"Password must be at least 6 characters"`
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source for join dates and booking timestamps.
func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithAuthDelay sets the pause before login and signup answer. Zero disables it.
func WithAuthDelay(d time.Duration) Option {
	return func(s *Store) { s.authDelay = d }
}

// WithLogger sets the store logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Store is the session state of one browser profile.
//
// Every mutation is written to the repository before the in-memory state changes,
// so a failed write leaves the store exactly as it was.
type Store struct {
	repo      Repository
	clock     clock.Clock
	authDelay time.Duration
	logger    *logger.Logger

	mu       sync.RWMutex
	user     *domain.User
	bookings []domain.Booking
	saved    []string
}

// Open builds a store rehydrated from repo. Slices that cannot be decoded start
// empty and are logged; any other load failure is returned.
func Open(ctx context.Context, repo Repository, opts ...Option) (*Store, error) {
	s := &Store{
		repo:      repo,
		clock:     clock.NewSystem(),
		authDelay: DefaultAuthDelay,
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}

	snap, err := repo.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrCorruptState) {
			return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to load session")
		}
		s.logger.WithError(err).Warn("discarding unreadable session state")
	}

	snap = snap.Clone()
	s.user = snap.User
	s.bookings = snap.Bookings
	s.saved = snap.Saved
	return s, nil
}

// Login signs in with any non-empty email and password.
// The user ID is derived from the email, so logging in again yields the same ID.
func (s *Store) Login(ctx context.Context, email, password string) (*domain.User, error) {
	if err := clock.Sleep(ctx, s.authDelay); err != nil {
		return nil, err
	}
	if err := validate.Validate(loginRequest{Email: email, Password: password}); err != nil {
		return nil, err
	}

	user := domain.User{
		ID:         id.ForEmail(email),
		Email:      email,
		Name:       domain.NameFromEmail(email),
		Avatar:     domain.DefaultAvatar,
		JoinedDate: s.clock.Now(),
		City:       domain.DefaultCity,
	}
	if err := s.setUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return &user, nil
}

// Signup registers a new simulated account and signs it in.
func (s *Store) Signup(ctx context.Context, name, email, password string) (*domain.User, error) {
	if err := clock.Sleep(ctx, s.authDelay); err != nil {
		return nil, err
	}
	if err := validate.Validate(signupRequest{Name: name, Email: email, Password: password}); err != nil {
		return nil, err
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to create user")
	}

	user := domain.User{
		ID:         userID,
		Email:      email,
		Name:       name,
		Avatar:     domain.DefaultAvatar,
		JoinedDate: s.clock.Now(),
		City:       domain.DefaultCity,
	}
	if err := s.setUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", "user_id", user.ID)
	return &user, nil
}

func (s *Store) setUser(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.SaveUser(ctx, user); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to save user")
	}
	s.user = &user
	return nil
}

// Logout forgets the user. Bookings and saved events are kept.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.DeleteUser(ctx); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to clear user")
	}
	s.user = nil
	return nil
}

// UpdateProfile merges the non-nil fields of update into the current user.
// Markup is stripped from every field.
func (s *Store) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return nil, domainerrors.Unauthorized("not logged in")
	}

	user := sanitizeUpdate(update).Apply(*s.user)
	if err := s.repo.SaveUser(ctx, user); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to save user")
	}
	s.user = &user
	return &user, nil
}

func sanitizeUpdate(u domain.ProfileUpdate) domain.ProfileUpdate {
	return domain.ProfileUpdate{
		Name:   sanitizeField(u.Name),
		Email:  sanitizeField(u.Email),
		Avatar: sanitizeField(u.Avatar),
		City:   sanitizeField(u.City),
	}
}

func sanitizeField(v *string) *string {
	if v == nil {
		return nil
	}
	clean := html.UnescapeString(policy.Sanitize(*v))
	return &clean
}

// BookEvent appends a confirmed booking. Neither the event nor the ticket count is
// checked against the catalog; fewer than one ticket books one.
func (s *Store) BookEvent(ctx context.Context, eventID string, tickets int) (*domain.Booking, error) {
	bookingID, err := id.Generate(id.PrefixBooking)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to create booking")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	booking := domain.NewBooking(bookingID, eventID, tickets, s.clock.Now())
	next := append(slices.Clone(s.bookings), booking)
	if err := s.repo.SaveBookings(ctx, next); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to save booking")
	}
	s.bookings = next

	s.logger.Info("event booked", "booking_id", booking.ID, "event_id", eventID, "tickets", booking.Tickets)
	return &booking, nil
}

// CancelBooking removes the booking with bookingID. An unknown ID changes nothing
// but the bookings are still persisted.
func (s *Store) CancelBooking(ctx context.Context, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.DeleteFunc(slices.Clone(s.bookings), func(b domain.Booking) bool {
		return b.ID == bookingID
	})
	if err := s.repo.SaveBookings(ctx, next); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to save bookings")
	}
	s.bookings = next
	return nil
}

// ToggleSaveEvent adds eventID to the saved set, or removes it if already there.
// It reports whether the event is saved afterwards.
func (s *Store) ToggleSaveEvent(ctx context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.Clone(s.saved)
	saved := !slices.Contains(next, eventID)
	if saved {
		next = append(next, eventID)
	} else {
		next = slices.DeleteFunc(next, func(id string) bool { return id == eventID })
	}

	if err := s.repo.SaveSaved(ctx, next); err != nil {
		return false, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to save favourites")
	}
	s.saved = next
	return saved, nil
}

// IsEventSaved reports whether eventID is in the saved set.
func (s *Store) IsEventSaved(eventID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.saved, eventID)
}

// IsEventBooked reports whether any booking references eventID.
func (s *Store) IsEventBooked(eventID string) bool {
	_, ok := s.GetBookingForEvent(eventID)
	return ok
}

// GetBookingForEvent returns the first booking for eventID in insertion order.
func (s *Store) GetBookingForEvent(eventID string) (domain.Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.bookings, func(b domain.Booking) bool { return b.EventID == eventID })
	if i < 0 {
		return domain.Booking{}, false
	}
	return s.bookings[i], true
}

// User returns a copy of the current user, or nil when signed out.
func (s *Store) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAuthenticated reports whether a user is present.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Bookings returns the bookings in the order they were made.
func (s *Store) Bookings() []domain.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.bookings)
}

// SavedEvents returns the saved event IDs in the order they were saved.
func (s *Store) SavedEvents() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.saved)
}

// Snapshot returns a copy of the whole state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{User: s.user, Bookings: s.bookings, Saved: s.saved}.Clone()
}
