package domain

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

// BookingStatusConfirmed is the only status a booking is ever created with.
const BookingStatusConfirmed BookingStatus = "confirmed"

// DefaultTickets is used when a booking request asks for fewer than one ticket.
const DefaultTickets = 1

// Booking is a reservation of tickets for one event.
// EventID is not checked against the catalog when the booking is made.
type Booking struct {
	ID       string        `json:"id"`
	EventID  string        `json:"event_id"`
	Tickets  int           `json:"tickets"`
	BookedAt time.Time     `json:"booked_at"`
	Status   BookingStatus `json:"status"`
}

// NewBooking creates a confirmed booking. Ticket counts below one become DefaultTickets.
func NewBooking(id, eventID string, tickets int, at time.Time) Booking {
	if tickets < 1 {
		tickets = DefaultTickets
	}
	return Booking{
		ID:       id,
		EventID:  eventID,
		Tickets:  tickets,
		BookedAt: at,
		Status:   BookingStatusConfirmed,
	}
}
