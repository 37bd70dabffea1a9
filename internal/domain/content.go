package domain

// City is a place where shows are hosted.
type City struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Country    string `json:"country"`
	EventCount int    `json:"event_count"`
	Image      string `json:"image"`
}

// Stats are the platform-wide headline numbers.
type Stats struct {
	TotalShows      int `json:"total_shows"`
	CitiesActive    int `json:"cities_active"`
	ArtistsFeatured int `json:"artists_featured"`
	HappyAttendees  int `json:"happy_attendees"`
}

// Testimonial is an attendee quote shown on the home page.
type Testimonial struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Avatar   string `json:"avatar"`
	Text     string `json:"text"`
	Event    string `json:"event"`
	Rating   int    `json:"rating"`
}

// FAQ is a question and answer from the about page.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
