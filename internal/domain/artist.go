package domain

// Track is one of an artist's popular songs.
type Track struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
	Plays    int64  `json:"plays"`
}

// Artist is a performer in the catalog.
type Artist struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Genre            string  `json:"genre"`
	Bio              string  `json:"bio"`
	LongBio          string  `json:"long_bio,omitempty"`
	Image            string  `json:"image"`
	CoverImage       string  `json:"cover_image,omitempty"`
	Followers        int64   `json:"followers"`
	MonthlyListeners int64   `json:"monthly_listeners"`
	PastShows        int     `json:"past_shows"`
	UpcomingShows    int     `json:"upcoming_shows"`
	Tracks           []Track `json:"tracks,omitempty"`
	SpotifyURL       string  `json:"spotify_url,omitempty"`
	InstagramURL     string  `json:"instagram_url,omitempty"`
	WebsiteURL       string  `json:"website_url,omitempty"`
	Verified         bool    `json:"verified"`
}

// Summary returns the embedded form of the artist used on events.
func (a Artist) Summary() ArtistSummary {
	return ArtistSummary{ID: a.ID, Name: a.Name, Genre: a.Genre, Image: a.Image}
}
