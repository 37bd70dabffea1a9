package domain

import "time"

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusSoldOut   EventStatus = "sold_out"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

// Listed reports whether events in this status appear on the listing page.
func (s EventStatus) Listed() bool {
	return s == EventStatusUpcoming || s == EventStatusSoldOut
}

// Currency is an ISO 4217 code for the ticket price.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyGBP Currency = "GBP"
	CurrencyEUR Currency = "EUR"
)

// Symbol returns the display symbol for the currency. Unknown codes fall back to the euro sign.
func (c Currency) Symbol() string {
	switch c {
	case CurrencyUSD:
		return "$"
	case CurrencyGBP:
		return "£"
	default:
		return "€"
	}
}

// DateLayout is the format of Event.Date.
const DateLayout = "2006-01-02"

// AddressNotice is shown in place of a venue address.
const AddressNotice = "Exact address revealed 24-48 hours before the event"

// Venue describes where an event happens, without its address.
type Venue struct {
	Type         string `json:"type"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	Capacity     int    `json:"capacity"`
	Description  string `json:"description"`
}

// ArtistSummary is the slice of an artist embedded in an event.
type ArtistSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Genre string `json:"genre"`
	Image string `json:"image"`
}

// Event is a single secret show.
type Event struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	Date             string        `json:"date"`
	Time             string        `json:"time"`
	Image            string        `json:"image"`
	Price            float64       `json:"price"`
	Currency         Currency      `json:"currency"`
	Capacity         int           `json:"capacity"`
	TicketsRemaining int           `json:"tickets_remaining"`
	Status           EventStatus   `json:"status"`
	Venue            Venue         `json:"venue"`
	Artist           ArtistSummary `json:"artist"`
	Tags             []string      `json:"tags"`
	Lineup           []string      `json:"lineup"`
	IsFeatured       bool          `json:"is_featured"`
}

// Day parses Date as a calendar day in UTC.
func (e Event) Day() (time.Time, error) {
	return time.Parse(DateLayout, e.Date)
}

// IsSoldOut reports whether no tickets remain.
func (e Event) IsSoldOut() bool {
	return e.TicketsRemaining == 0
}
