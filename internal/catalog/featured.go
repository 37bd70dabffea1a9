package catalog

import (
	"math"

	"github.com/secretshows/secretshows-server/internal/domain"
)

// Page sizes used by the home and event pages.
const (
	FeaturedEventLimit  = 4
	FeaturedArtistLimit = 4
	HomeCityLimit       = 8
	RelatedEventLimit   = 3
)

// FeaturedEvents returns up to limit featured, upcoming events in collection order.
func (c *Catalog) FeaturedEvents(limit int) []domain.Event {
	return takeWhere(c.data.Events, limit, func(e domain.Event) bool {
		return e.IsFeatured && e.Status == domain.EventStatusUpcoming
	})
}

// FeaturedArtists returns the first limit artists.
func (c *Catalog) FeaturedArtists(limit int) []domain.Artist {
	return takeWhere(c.data.Artists, limit, func(domain.Artist) bool { return true })
}

// HomeCities returns the first limit cities.
func (c *Catalog) HomeCities(limit int) []domain.City {
	return takeWhere(c.data.Cities, limit, func(domain.City) bool { return true })
}

// RelatedEvents returns up to limit other events by the same artist or in the same genre.
// Status is not considered.
func (c *Catalog) RelatedEvents(event domain.Event, limit int) []domain.Event {
	return takeWhere(c.data.Events, limit, func(e domain.Event) bool {
		return e.ID != event.ID && (e.Artist.ID == event.Artist.ID || e.Artist.Genre == event.Artist.Genre)
	})
}

// ArtistEvents returns every event headlined by the artist.
func (c *Catalog) ArtistEvents(artistID string) []domain.Event {
	return takeWhere(c.data.Events, -1, func(e domain.Event) bool { return e.Artist.ID == artistID })
}

// UpcomingArtistEvents returns the artist's events that are still upcoming.
func (c *Catalog) UpcomingArtistEvents(artistID string) []domain.Event {
	return takeWhere(c.data.Events, -1, func(e domain.Event) bool {
		return e.Artist.ID == artistID && e.Status == domain.EventStatusUpcoming
	})
}

// EventsByID returns the catalog events whose IDs are in ids, in collection order.
// Unknown IDs are skipped.
func (c *Catalog) EventsByID(ids []string) []domain.Event {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	return takeWhere(c.data.Events, -1, func(e domain.Event) bool {
		_, ok := want[e.ID]
		return ok
	})
}

// takeWhere returns up to limit matching items. A negative limit means no limit.
func takeWhere[T any](items []T, limit int, keep func(T) bool) []T {
	out := make([]T, 0)
	for _, it := range items {
		if limit >= 0 && len(out) >= limit {
			break
		}
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// ServiceFeeRate is the booking fee charged on top of the ticket subtotal.
const ServiceFeeRate = 0.1

// Quote is the price breakdown shown before a booking is confirmed.
type Quote struct {
	EventID  string          `json:"event_id"`
	Tickets  int             `json:"tickets"`
	Currency domain.Currency `json:"currency"`
	Symbol   string          `json:"symbol"`
	Price    float64         `json:"price"`
	Subtotal float64         `json:"subtotal"`
	Fee      float64         `json:"fee"`
	Total    float64         `json:"total"`
}

// ClampTickets keeps a requested ticket count between one and the tickets remaining.
func ClampTickets(event domain.Event, tickets int) int {
	if tickets > event.TicketsRemaining {
		tickets = event.TicketsRemaining
	}
	return max(tickets, 1)
}

// QuoteFor prices tickets for event. The fee and total are rounded to whole currency units.
func QuoteFor(event domain.Event, tickets int) Quote {
	tickets = ClampTickets(event, tickets)
	subtotal := event.Price * float64(tickets)
	return Quote{
		EventID:  event.ID,
		Tickets:  tickets,
		Currency: event.Currency,
		Symbol:   event.Currency.Symbol(),
		Price:    event.Price,
		Subtotal: subtotal,
		Fee:      math.Round(subtotal * ServiceFeeRate),
		Total:    math.Round(subtotal * (1 + ServiceFeeRate)),
	}
}
