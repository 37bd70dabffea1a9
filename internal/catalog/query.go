package catalog

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/secretshows/secretshows-server/internal/domain"
)

// EventSort orders the event listing.
type EventSort string

const (
	SortByDate         EventSort = "date"
	SortByPriceLow     EventSort = "price-low"
	SortByPriceHigh    EventSort = "price-high"
	SortByAvailability EventSort = "availability"
)

// ParseEventSort validates a sort key. The empty string selects SortByDate.
func ParseEventSort(s string) (EventSort, error) {
	switch v := EventSort(s); v {
	case "":
		return SortByDate, nil
	case SortByDate, SortByPriceLow, SortByPriceHigh, SortByAvailability:
		return v, nil
	default:
		return "", fmt.Errorf("unknown event sort %q", s)
	}
}

// DateBucket narrows events to a window starting today.
type DateBucket string

const (
	DateAny       DateBucket = ""
	DateToday     DateBucket = "today"
	DateWeekend   DateBucket = "weekend"
	DateThisWeek  DateBucket = "this-week"
	DateThisMonth DateBucket = "this-month"
)

// ParseDateBucket validates a date bucket.
func ParseDateBucket(s string) (DateBucket, error) {
	switch v := DateBucket(s); v {
	case DateAny, DateToday, DateWeekend, DateThisWeek, DateThisMonth:
		return v, nil
	default:
		return "", fmt.Errorf("unknown date filter %q", s)
	}
}

// EventQuery holds the event listing filters.
type EventQuery struct {
	Search string
	// City is compared exactly against the venue city.
	City  string
	Genre string
	Date  DateBucket
	Sort  EventSort
	// Now anchors Date. A zero Now disables the date filter.
	Now time.Time
}

// QueryEvents filters and sorts events for the listing page. Only upcoming and
// sold out events are considered. The input is never modified and ties keep
// their collection order.
func QueryEvents(events []domain.Event, q EventQuery) []domain.Event {
	needle := fold(q.Search)
	window, dated := q.Date.window(q.Now)

	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if !e.Status.Listed() {
			continue
		}
		if needle != "" && !eventMatches(e, needle) {
			continue
		}
		if q.City != "" && e.Venue.City != q.City {
			continue
		}
		if q.Genre != "" && !eventHasGenre(e, q.Genre) {
			continue
		}
		if dated && !window.contains(e.Date) {
			continue
		}
		out = append(out, e)
	}

	switch q.Sort {
	case SortByDate, "":
		slices.SortStableFunc(out, func(a, b domain.Event) int { return strings.Compare(a.Date, b.Date) })
	case SortByPriceLow:
		slices.SortStableFunc(out, func(a, b domain.Event) int { return cmp.Compare(a.Price, b.Price) })
	case SortByPriceHigh:
		slices.SortStableFunc(out, func(a, b domain.Event) int { return cmp.Compare(b.Price, a.Price) })
	case SortByAvailability:
		slices.SortStableFunc(out, func(a, b domain.Event) int { return cmp.Compare(b.TicketsRemaining, a.TicketsRemaining) })
	}
	return out
}

func eventMatches(e domain.Event, needle string) bool {
	if contains(e.Title, needle) || contains(e.Artist.Name, needle) ||
		contains(e.Venue.City, needle) || contains(e.Venue.Neighborhood, needle) {
		return true
	}
	return slices.ContainsFunc(e.Tags, func(tag string) bool { return contains(tag, needle) })
}

func eventHasGenre(e domain.Event, filter string) bool {
	want := fold(filter)
	if fold(e.Artist.Genre) == want {
		return true
	}
	return slices.ContainsFunc(e.Tags, func(tag string) bool { return fold(tag) == want })
}

// ArtistSort orders the artist listing.
type ArtistSort string

const (
	SortByPopular ArtistSort = "popular"
	SortByName    ArtistSort = "name"
	SortByShows   ArtistSort = "shows"
)

// ParseArtistSort validates a sort key. The empty string selects SortByPopular.
func ParseArtistSort(s string) (ArtistSort, error) {
	switch v := ArtistSort(s); v {
	case "":
		return SortByPopular, nil
	case SortByPopular, SortByName, SortByShows:
		return v, nil
	default:
		return "", fmt.Errorf("unknown artist sort %q", s)
	}
}

// ArtistQuery holds the artist listing filters.
type ArtistQuery struct {
	Search string
	Genre  string
	Sort   ArtistSort
}

// QueryArtists filters and sorts artists for the listing page.
func QueryArtists(artists []domain.Artist, q ArtistQuery) []domain.Artist {
	needle := fold(q.Search)

	out := make([]domain.Artist, 0, len(artists))
	for _, a := range artists {
		if needle != "" && !contains(a.Name, needle) && !contains(a.Genre, needle) && !contains(a.Bio, needle) {
			continue
		}
		if q.Genre != "" && fold(a.Genre) != fold(q.Genre) {
			continue
		}
		out = append(out, a)
	}

	switch q.Sort {
	case SortByPopular, "":
		slices.SortStableFunc(out, func(a, b domain.Artist) int { return cmp.Compare(b.Followers, a.Followers) })
	case SortByName:
		// A Collator is not safe for concurrent use.
		col := collate.New(language.English)
		slices.SortStableFunc(out, func(a, b domain.Artist) int { return col.CompareString(a.Name, b.Name) })
	case SortByShows:
		slices.SortStableFunc(out, func(a, b domain.Artist) int { return cmp.Compare(b.UpcomingShows, a.UpcomingShows) })
	}
	return out
}

// QueryEvents runs QueryEvents over the catalog's events.
func (c *Catalog) QueryEvents(q EventQuery) []domain.Event {
	return QueryEvents(c.data.Events, q)
}

// QueryArtists runs QueryArtists over the catalog's artists.
func (c *Catalog) QueryArtists(q ArtistQuery) []domain.Artist {
	return QueryArtists(c.data.Artists, q)
}

// fold lower-cases s for caseless comparison.
func fold(s string) string {
	if s == "" {
		return ""
	}
	return cases.Fold().String(s)
}

func contains(field, foldedNeedle string) bool {
	return strings.Contains(fold(field), foldedNeedle)
}

// dayWindow is an inclusive range of calendar days in DateLayout form.
type dayWindow struct {
	from, to string
	// weekendOnly keeps only Saturdays and Sundays inside the range.
	weekendOnly bool
}

func (w dayWindow) contains(date string) bool {
	if date < w.from || date > w.to {
		return false
	}
	if !w.weekendOnly {
		return true
	}
	day, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return false
	}
	wd := day.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// window returns the day range for the bucket. Every bucket starts today:
//
//	today       today only
//	weekend     Saturdays and Sundays from today up to the coming Sunday
//	this-week   today up to the coming Sunday
//	this-month  today up to the last day of the month
func (b DateBucket) window(now time.Time) (dayWindow, bool) {
	if b == DateAny || now.IsZero() {
		return dayWindow{}, false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	untilSunday := (7 - int(today.Weekday())) % 7
	sunday := today.AddDate(0, 0, untilSunday)

	w := dayWindow{from: today.Format(domain.DateLayout)}
	switch b {
	case DateToday:
		w.to = w.from
	case DateWeekend:
		w.to = sunday.Format(domain.DateLayout)
		w.weekendOnly = true
	case DateThisWeek:
		w.to = sunday.Format(domain.DateLayout)
	case DateThisMonth:
		w.to = time.Date(today.Year(), today.Month()+1, 0, 0, 0, 0, 0, time.UTC).Format(domain.DateLayout)
	default:
		return dayWindow{}, false
	}
	return w, true
}
