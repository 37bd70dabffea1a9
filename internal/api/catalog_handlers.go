package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/secretshows/secretshows-server/internal/catalog"
	"github.com/secretshows/secretshows-server/internal/domain"
	domainerrors "github.com/secretshows/secretshows-server/internal/errors"
)

func (s *Server) registerCatalogRoutes() {
	register(s.api, huma.Operation{
		OperationID: "getHome",
		Method:      http.MethodGet,
		Path:        "/api/v1/home",
		Summary:     "Home page",
		Description: "Returns featured events and artists, cities, platform stats and testimonials",
		Tags:        []string{"Catalog"},
	}, s.handleGetHome)

	register(s.api, huma.Operation{
		OperationID: "listEvents",
		Method:      http.MethodGet,
		Path:        "/api/v1/events",
		Summary:     "List events",
		Description: "Returns upcoming and sold out events matching the filters",
		Tags:        []string{"Catalog"},
	}, s.handleListEvents)

	register(s.api, huma.Operation{
		OperationID: "getEvent",
		Method:      http.MethodGet,
		Path:        "/api/v1/events/{id}",
		Summary:     "Get event",
		Description: "Returns an event with related events and the caller's saved and booked state",
		Tags:        []string{"Catalog"},
	}, s.handleGetEvent)

	register(s.api, huma.Operation{
		OperationID: "getEventQuote",
		Method:      http.MethodGet,
		Path:        "/api/v1/events/{id}/quote",
		Summary:     "Price tickets",
		Description: "Returns the subtotal, service fee and total for a ticket count",
		Tags:        []string{"Catalog"},
	}, s.handleGetEventQuote)

	register(s.api, huma.Operation{
		OperationID: "listArtists",
		Method:      http.MethodGet,
		Path:        "/api/v1/artists",
		Summary:     "List artists",
		Description: "Returns artists matching the filters",
		Tags:        []string{"Catalog"},
	}, s.handleListArtists)

	register(s.api, huma.Operation{
		OperationID: "getArtist",
		Method:      http.MethodGet,
		Path:        "/api/v1/artists/{id}",
		Summary:     "Get artist",
		Description: "Returns an artist with their upcoming events",
		Tags:        []string{"Catalog"},
	}, s.handleGetArtist)

	register(s.api, huma.Operation{
		OperationID: "listCities",
		Method:      http.MethodGet,
		Path:        "/api/v1/cities",
		Summary:     "List cities",
		Description: "Returns the cities shows are hosted in",
		Tags:        []string{"Catalog"},
	}, s.handleListCities)

	register(s.api, huma.Operation{
		OperationID: "listGenres",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres",
		Summary:     "List genres",
		Description: "Returns the genre filter options",
		Tags:        []string{"Catalog"},
	}, s.handleListGenres)
}

// === DTOs ===

// HomeResponse contains everything the home page shows.
type HomeResponse struct {
	FeaturedEvents  []domain.Event       `json:"featured_events" doc:"Featured upcoming events"`
	FeaturedArtists []domain.Artist      `json:"featured_artists" doc:"Artists to feature"`
	Cities          []domain.City        `json:"cities" doc:"Cities to browse"`
	Stats           domain.Stats         `json:"stats" doc:"Platform headline numbers"`
	Testimonials    []domain.Testimonial `json:"testimonials" doc:"Attendee quotes"`
}

// HomeOutput wraps the home response for Huma.
type HomeOutput struct {
	Body HomeResponse
}

// ListEventsInput contains the event listing filters.
type ListEventsInput struct {
	Search string `query:"search" doc:"Case-insensitive text in title, artist, venue or tags"`
	City   string `query:"city" doc:"City ID or name"`
	Genre  string `query:"genre" doc:"Genre of the headlining artist"`
	Date   string `query:"date" doc:"Date window starting today: today, weekend, this-week or this-month"`
	Sort   string `query:"sort" doc:"Sort order: date (default), price-low, price-high or availability"`
}

// ListEventsResponse contains an event listing.
type ListEventsResponse struct {
	Events []domain.Event `json:"events" doc:"Matching events"`
	Total  int            `json:"total" doc:"Number of matching events"`
}

// ListEventsOutput wraps the event listing for Huma.
type ListEventsOutput struct {
	Body ListEventsResponse
}

// GetEventInput identifies an event.
type GetEventInput struct {
	ID string `path:"id" doc:"Event ID"`
}

// EventDetailResponse contains an event page.
type EventDetailResponse struct {
	Event         domain.Event    `json:"event" doc:"The event"`
	Related       []domain.Event  `json:"related" doc:"Other events by the same artist or in the same genre"`
	IsSaved       bool            `json:"is_saved" doc:"Whether the caller saved this event"`
	IsBooked      bool            `json:"is_booked" doc:"Whether the caller booked this event"`
	Booking       *domain.Booking `json:"booking,omitempty" doc:"The caller's first booking for this event"`
	AddressNotice string          `json:"address_notice" doc:"Shown in place of the venue address"`
}

// EventDetailOutput wraps the event page for Huma.
type EventDetailOutput struct {
	Body EventDetailResponse
}

// GetEventQuoteInput identifies an event and a ticket count.
type GetEventQuoteInput struct {
	ID      string `path:"id" doc:"Event ID"`
	Tickets int    `query:"tickets" default:"1" minimum:"1" maximum:"10" doc:"Number of tickets"`
}

// QuoteOutput wraps a price quote for Huma.
type QuoteOutput struct {
	Body catalog.Quote
}

// ListArtistsInput contains the artist listing filters.
type ListArtistsInput struct {
	Search string `query:"search" doc:"Case-insensitive text in name, genre or bio"`
	Genre  string `query:"genre" doc:"Genre"`
	Sort   string `query:"sort" doc:"Sort order: popular (default), name or shows"`
}

// ListArtistsResponse contains an artist listing.
type ListArtistsResponse struct {
	Artists []domain.Artist `json:"artists" doc:"Matching artists"`
	Total   int             `json:"total" doc:"Number of matching artists"`
}

// ListArtistsOutput wraps the artist listing for Huma.
type ListArtistsOutput struct {
	Body ListArtistsResponse
}

// GetArtistInput identifies an artist.
type GetArtistInput struct {
	ID string `path:"id" doc:"Artist ID"`
}

// ArtistDetailResponse contains an artist page.
type ArtistDetailResponse struct {
	Artist         domain.Artist  `json:"artist" doc:"The artist"`
	UpcomingEvents []domain.Event `json:"upcoming_events" doc:"The artist's upcoming events"`
}

// ArtistDetailOutput wraps the artist page for Huma.
type ArtistDetailOutput struct {
	Body ArtistDetailResponse
}

// ListCitiesOutput wraps the city list for Huma.
type ListCitiesOutput struct {
	Body struct {
		Cities []domain.City `json:"cities" doc:"Cities"`
	}
}

// ListGenresOutput wraps the genre list for Huma.
type ListGenresOutput struct {
	Body struct {
		Genres []string `json:"genres" doc:"Genres"`
	}
}

// === Handlers ===

func (s *Server) handleGetHome(_ context.Context, _ *struct{}) (*HomeOutput, error) {
	c := s.services.Catalog.Current()

	return &HomeOutput{
		Body: HomeResponse{
			FeaturedEvents:  c.FeaturedEvents(catalog.FeaturedEventLimit),
			FeaturedArtists: c.FeaturedArtists(catalog.FeaturedArtistLimit),
			Cities:          c.HomeCities(catalog.HomeCityLimit),
			Stats:           c.Stats(),
			Testimonials:    c.Testimonials(),
		},
	}, nil
}

func (s *Server) handleListEvents(_ context.Context, input *ListEventsInput) (*ListEventsOutput, error) {
	sort, err := catalog.ParseEventSort(input.Sort)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}
	date, err := catalog.ParseDateBucket(input.Date)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	c := s.services.Catalog.Current()
	events := c.QueryEvents(catalog.EventQuery{
		Search: input.Search,
		City:   c.ResolveCity(input.City),
		Genre:  input.Genre,
		Date:   date,
		Sort:   sort,
		Now:    s.services.Clock.Now(),
	})

	return &ListEventsOutput{
		Body: ListEventsResponse{
			Events: events,
			Total:  len(events),
		},
	}, nil
}

func (s *Server) handleGetEvent(ctx context.Context, input *GetEventInput) (*EventDetailOutput, error) {
	c := s.services.Catalog.Current()
	event, ok := c.Event(input.ID)
	if !ok {
		return nil, domainerrors.NotFoundf("Event %s not found", input.ID)
	}

	st, err := s.sessionStore(ctx)
	if err != nil {
		return nil, err
	}

	resp := EventDetailResponse{
		Event:         event,
		Related:       c.RelatedEvents(event, catalog.RelatedEventLimit),
		IsSaved:       st.IsEventSaved(event.ID),
		IsBooked:      st.IsEventBooked(event.ID),
		AddressNotice: domain.AddressNotice,
	}
	if booking, ok := st.GetBookingForEvent(event.ID); ok {
		resp.Booking = &booking
	}

	return &EventDetailOutput{Body: resp}, nil
}

func (s *Server) handleGetEventQuote(_ context.Context, input *GetEventQuoteInput) (*QuoteOutput, error) {
	event, ok := s.services.Catalog.Current().Event(input.ID)
	if !ok {
		return nil, domainerrors.NotFoundf("Event %s not found", input.ID)
	}
	return &QuoteOutput{Body: catalog.QuoteFor(event, input.Tickets)}, nil
}

func (s *Server) handleListArtists(_ context.Context, input *ListArtistsInput) (*ListArtistsOutput, error) {
	sort, err := catalog.ParseArtistSort(input.Sort)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	artists := s.services.Catalog.Current().QueryArtists(catalog.ArtistQuery{
		Search: input.Search,
		Genre:  input.Genre,
		Sort:   sort,
	})

	return &ListArtistsOutput{
		Body: ListArtistsResponse{
			Artists: artists,
			Total:   len(artists),
		},
	}, nil
}

func (s *Server) handleGetArtist(_ context.Context, input *GetArtistInput) (*ArtistDetailOutput, error) {
	c := s.services.Catalog.Current()
	artist, ok := c.Artist(input.ID)
	if !ok {
		return nil, domainerrors.NotFoundf("Artist %s not found", input.ID)
	}

	return &ArtistDetailOutput{
		Body: ArtistDetailResponse{
			Artist:         artist,
			UpcomingEvents: c.UpcomingArtistEvents(artist.ID),
		},
	}, nil
}

func (s *Server) handleListCities(_ context.Context, _ *struct{}) (*ListCitiesOutput, error) {
	out := &ListCitiesOutput{}
	out.Body.Cities = s.services.Catalog.Current().Cities()
	return out, nil
}

func (s *Server) handleListGenres(_ context.Context, _ *struct{}) (*ListGenresOutput, error) {
	out := &ListGenresOutput{}
	out.Body.Genres = s.services.Catalog.Current().Genres()
	return out, nil
}
