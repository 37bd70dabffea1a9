package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/secretshows/secretshows-server/internal/clock"
	"github.com/secretshows/secretshows-server/internal/domain"
	domainerrors "github.com/secretshows/secretshows-server/internal/errors"
)

func (s *Server) registerBookingRoutes() {
	register(s.api, huma.Operation{
		OperationID:   "createBooking",
		Method:        http.MethodPost,
		Path:          "/api/v1/session/bookings",
		Summary:       "Book event",
		Description:   "Books tickets for an event after a simulated payment",
		Tags:          []string{"Bookings"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBooking)

	register(s.api, huma.Operation{
		OperationID:   "cancelBooking",
		Method:        http.MethodDelete,
		Path:          "/api/v1/session/bookings/{id}",
		Summary:       "Cancel booking",
		Description:   "Removes a booking. Unknown booking IDs are ignored",
		Tags:          []string{"Bookings"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleCancelBooking)

	register(s.api, huma.Operation{
		OperationID: "toggleSavedEvent",
		Method:      http.MethodPost,
		Path:        "/api/v1/session/saved/{eventId}",
		Summary:     "Toggle saved event",
		Description: "Saves the event, or unsaves it when already saved",
		Tags:        []string{"Bookings"},
	}, s.handleToggleSavedEvent)
}

// === DTOs ===

// CreateBookingRequest is the request body for booking an event.
type CreateBookingRequest struct {
	EventID string `json:"event_id" minLength:"1" doc:"Event to book"`
	Tickets int    `json:"tickets,omitempty" minimum:"0" maximum:"10" doc:"Number of tickets (default 1)"`
}

// CreateBookingInput wraps the booking request for Huma.
type CreateBookingInput struct {
	Body CreateBookingRequest
}

// BookingResponse is a confirmed booking with its event.
type BookingResponse struct {
	Booking domain.Booking `json:"booking" doc:"The new booking"`
	Event   domain.Event   `json:"event" doc:"The booked event"`
}

// BookingOutput wraps a booking for Huma.
type BookingOutput struct {
	Body BookingResponse
}

// CancelBookingInput identifies a booking.
type CancelBookingInput struct {
	ID string `path:"id" doc:"Booking ID"`
}

// ToggleSavedEventInput identifies an event.
type ToggleSavedEventInput struct {
	EventID string `path:"eventId" doc:"Event ID"`
}

// SavedEventResponse reports the saved state after a toggle.
type SavedEventResponse struct {
	EventID string `json:"event_id" doc:"Event ID"`
	Saved   bool   `json:"saved" doc:"Whether the event is now saved"`
}

// SavedEventOutput wraps the toggle result for Huma.
type SavedEventOutput struct {
	Body SavedEventResponse
}

// === Handlers ===

func (s *Server) handleCreateBooking(ctx context.Context, input *CreateBookingInput) (*BookingOutput, error) {
	st, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	event, ok := s.services.Catalog.Current().Event(input.Body.EventID)
	if !ok {
		return nil, domainerrors.NotFoundf("Event %s not found", input.Body.EventID)
	}

	// Simulated payment processing.
	if err := clock.Sleep(ctx, s.config.Session.BookingDelay); err != nil {
		return nil, err
	}

	booking, err := st.BookEvent(ctx, event.ID, input.Body.Tickets)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordBooking(booking.Tickets)

	return &BookingOutput{
		Body: BookingResponse{
			Booking: *booking,
			Event:   event,
		},
	}, nil
}

func (s *Server) handleCancelBooking(ctx context.Context, input *CancelBookingInput) (*struct{}, error) {
	st, err := s.sessionStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.CancelBooking(ctx, input.ID); err != nil {
		return nil, err
	}

	s.metrics.RecordCancellation()
	return nil, nil
}

func (s *Server) handleToggleSavedEvent(ctx context.Context, input *ToggleSavedEventInput) (*SavedEventOutput, error) {
	st, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	saved, err := st.ToggleSaveEvent(ctx, input.EventID)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordSaveToggle(saved)

	return &SavedEventOutput{
		Body: SavedEventResponse{
			EventID: input.EventID,
			Saved:   saved,
		},
	}, nil
}
