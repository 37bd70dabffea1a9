// Package catalog holds the static Secret Shows dataset and the pure queries over it.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/secretshows/secretshows-server/internal/domain"
)

//go:embed seed.json
var seedJSON []byte

// dataset is the on-disk shape of a catalog file.
type dataset struct {
	Stats        domain.Stats         `json:"stats"`
	Genres       []string             `json:"genres"`
	Cities       []domain.City        `json:"cities"`
	Artists      []domain.Artist      `json:"artists"`
	Events       []domain.Event       `json:"events"`
	Testimonials []domain.Testimonial `json:"testimonials"`
	FAQs         []domain.FAQ         `json:"faqs"`
}

// Catalog is an immutable snapshot of events, artists and supporting content.
// Slices returned by its methods are copies; the elements' own slices (tags, tracks)
// are shared and must not be modified.
type Catalog struct {
	data    dataset
	events  map[string]int
	artists map[string]int
	cities  map[string]int
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(seedJSON)
}

// LoadFile reads a catalog from a JSON file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- catalog path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and checks a catalog document.
func Parse(data []byte) (*Catalog, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var ds dataset
	if err := dec.Decode(&ds); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(ds.Events, ds.Artists, WithCities(ds.Cities...), WithGenres(ds.Genres...),
		WithStats(ds.Stats), WithTestimonials(ds.Testimonials...), WithFAQs(ds.FAQs...))
}

// Option adds supporting content to a catalog built with New.
type Option func(*dataset)

// WithCities sets the city list.
func WithCities(cities ...domain.City) Option {
	return func(ds *dataset) { ds.Cities = cities }
}

// WithGenres sets the genre filter options.
func WithGenres(genres ...string) Option {
	return func(ds *dataset) { ds.Genres = genres }
}

// WithStats sets the platform stats.
func WithStats(stats domain.Stats) Option {
	return func(ds *dataset) { ds.Stats = stats }
}

// WithTestimonials sets the home page testimonials.
func WithTestimonials(t ...domain.Testimonial) Option {
	return func(ds *dataset) { ds.Testimonials = t }
}

// WithFAQs sets the about page questions.
func WithFAQs(faqs ...domain.FAQ) Option {
	return func(ds *dataset) { ds.FAQs = faqs }
}

// New builds a catalog from events and artists. IDs must be unique and every
// event must carry a parseable date and a known status.
func New(events []domain.Event, artists []domain.Artist, opts ...Option) (*Catalog, error) {
	ds := dataset{
		Events:  slices.Clone(events),
		Artists: slices.Clone(artists),
	}
	for _, opt := range opts {
		opt(&ds)
	}

	c := &Catalog{
		data:    ds,
		events:  make(map[string]int, len(ds.Events)),
		artists: make(map[string]int, len(ds.Artists)),
		cities:  make(map[string]int, len(ds.Cities)),
	}

	for i, e := range ds.Events {
		if err := checkEvent(e); err != nil {
			return nil, err
		}
		if _, dup := c.events[e.ID]; dup {
			return nil, fmt.Errorf("duplicate event id %q", e.ID)
		}
		c.events[e.ID] = i
	}
	for i, a := range ds.Artists {
		if a.ID == "" {
			return nil, fmt.Errorf("artist %d has no id", i)
		}
		if _, dup := c.artists[a.ID]; dup {
			return nil, fmt.Errorf("duplicate artist id %q", a.ID)
		}
		c.artists[a.ID] = i
	}
	for i, city := range ds.Cities {
		c.cities[city.ID] = i
	}

	return c, nil
}

func checkEvent(e domain.Event) error {
	if e.ID == "" {
		return fmt.Errorf("event %q has no id", e.Title)
	}
	if _, err := e.Day(); err != nil {
		return fmt.Errorf("event %s: invalid date %q", e.ID, e.Date)
	}
	switch e.Status {
	case domain.EventStatusUpcoming, domain.EventStatusSoldOut, domain.EventStatusCompleted, domain.EventStatusCancelled:
	default:
		return fmt.Errorf("event %s: unknown status %q", e.ID, e.Status)
	}
	switch e.Currency {
	case domain.CurrencyUSD, domain.CurrencyGBP, domain.CurrencyEUR:
	default:
		return fmt.Errorf("event %s: unknown currency %q", e.ID, e.Currency)
	}
	if e.TicketsRemaining < 0 || e.Price < 0 {
		return fmt.Errorf("event %s: negative price or tickets", e.ID)
	}
	return nil
}

// Events returns every event in collection order.
func (c *Catalog) Events() []domain.Event {
	return slices.Clone(c.data.Events)
}

// Artists returns every artist in collection order.
func (c *Catalog) Artists() []domain.Artist {
	return slices.Clone(c.data.Artists)
}

// Cities returns every city in collection order.
func (c *Catalog) Cities() []domain.City {
	return slices.Clone(c.data.Cities)
}

// Genres returns the genre filter options.
func (c *Catalog) Genres() []string {
	return slices.Clone(c.data.Genres)
}

// Stats returns the platform headline numbers.
func (c *Catalog) Stats() domain.Stats {
	return c.data.Stats
}

// Testimonials returns the home page testimonials.
func (c *Catalog) Testimonials() []domain.Testimonial {
	return slices.Clone(c.data.Testimonials)
}

// FAQs returns the about page questions.
func (c *Catalog) FAQs() []domain.FAQ {
	return slices.Clone(c.data.FAQs)
}

// Event looks up an event by ID.
func (c *Catalog) Event(id string) (domain.Event, bool) {
	i, ok := c.events[id]
	if !ok {
		return domain.Event{}, false
	}
	return c.data.Events[i], true
}

// Artist looks up an artist by ID.
func (c *Catalog) Artist(id string) (domain.Artist, bool) {
	i, ok := c.artists[id]
	if !ok {
		return domain.Artist{}, false
	}
	return c.data.Artists[i], true
}

// City looks up a city by ID.
func (c *Catalog) City(id string) (domain.City, bool) {
	i, ok := c.cities[id]
	if !ok {
		return domain.City{}, false
	}
	return c.data.Cities[i], true
}

// ResolveCity maps a city filter value to the name stored on venues.
// City IDs are translated to their name; anything else is returned unchanged.
func (c *Catalog) ResolveCity(value string) string {
	if city, ok := c.City(value); ok {
		return city.Name
	}
	return value
}
