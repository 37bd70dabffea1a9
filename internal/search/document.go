// Package search provides navbar typeahead search over the catalog using Bleve.
// Listing pages do not use it; they filter with the catalog package directly.
package search

import (
	"github.com/secretshows/secretshows-server/internal/domain"
)

// DocType represents the type of document in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeEvent  DocType = "event"
	DocTypeArtist DocType = "artist"
)

// Document is the unified document structure for the Bleve index.
// Events and artists are both indexed as Documents with type discrimination.
type Document struct {
	ID   string  `json:"id"`
	Type DocType `json:"type"`

	// Event title or artist name.
	Name string `json:"name"`

	// Event-only fields. Artist is denormalized so "luna" finds Luna Waves' shows.
	Artist       string   `json:"artist,omitempty"`
	City         string   `json:"city,omitempty"`
	Neighborhood string   `json:"neighborhood,omitempty"`
	Date         string   `json:"date,omitempty"`
	Status       string   `json:"status,omitempty"`
	Tags         []string `json:"tags,omitempty"`

	Genre string `json:"genre,omitempty"`
	Bio   string `json:"bio,omitempty"`
	Image string `json:"image,omitempty"`
}

// FromEvent builds the document for an event.
func FromEvent(e domain.Event) *Document {
	return &Document{
		ID:           e.ID,
		Type:         DocTypeEvent,
		Name:         e.Title,
		Artist:       e.Artist.Name,
		City:         e.Venue.City,
		Neighborhood: e.Venue.Neighborhood,
		Date:         e.Date,
		Status:       string(e.Status),
		Tags:         e.Tags,
		Genre:        e.Artist.Genre,
		Image:        e.Image,
	}
}

// FromArtist builds the document for an artist.
func FromArtist(a domain.Artist) *Document {
	return &Document{
		ID:    a.ID,
		Type:  DocTypeArtist,
		Name:  a.Name,
		Genre: a.Genre,
		Bio:   a.Bio,
		Image: a.Image,
	}
}

// ToMap converts the document to a map with lowercase field names.
// This ensures field names match the Bleve index mapping.
func (d *Document) ToMap() map[string]any {
	m := map[string]any{
		"id":   d.ID,
		"type": string(d.Type),
		"name": d.Name,
	}

	// Optional fields - only add if non-empty
	if d.Artist != "" {
		m["artist"] = d.Artist
	}
	if d.City != "" {
		m["city"] = d.City
	}
	if d.Neighborhood != "" {
		m["neighborhood"] = d.Neighborhood
	}
	if d.Date != "" {
		m["date"] = d.Date
	}
	if d.Status != "" {
		m["status"] = d.Status
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	if d.Genre != "" {
		m["genre"] = d.Genre
	}
	if d.Bio != "" {
		m["bio"] = d.Bio
	}
	if d.Image != "" {
		m["image"] = d.Image
	}

	return m
}
