package catalog

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secretshows/secretshows-server/internal/domain"
)

func testEvent(id string, price float64, city, genre string, status domain.EventStatus) domain.Event {
	return domain.Event{
		ID:               id,
		Title:            "Show " + id,
		Date:             "2024-03-15",
		Price:            price,
		Currency:         domain.CurrencyUSD,
		TicketsRemaining: 10,
		Status:           status,
		Venue:            domain.Venue{City: city, Neighborhood: "Downtown"},
		Artist:           domain.ArtistSummary{ID: "artist-" + id, Name: "Artist " + id, Genre: genre},
	}
}

func eventIDs(events []domain.Event) []string {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return ids
}

func artistIDs(artists []domain.Artist) []string {
	ids := make([]string, len(artists))
	for i, a := range artists {
		ids[i] = a.ID
	}
	return ids
}

func TestQueryEvents_Scenario(t *testing.T) {
	a := testEvent("A", 20, "NYC", "Jazz", domain.EventStatusUpcoming)
	b := testEvent("B", 50, "LA", "Rock", domain.EventStatusSoldOut)
	events := []domain.Event{b, a}

	assert.Equal(t, []string{"A"}, eventIDs(QueryEvents(events, EventQuery{City: "NYC"})))
	assert.Equal(t, []string{"A", "B"}, eventIDs(QueryEvents(events, EventQuery{Sort: SortByPriceLow})))
}

func TestQueryEvents_ExcludesTerminalStatuses(t *testing.T) {
	events := []domain.Event{
		testEvent("up", 10, "NYC", "Jazz", domain.EventStatusUpcoming),
		testEvent("sold", 10, "NYC", "Jazz", domain.EventStatusSoldOut),
		testEvent("done", 10, "NYC", "Jazz", domain.EventStatusCompleted),
		testEvent("gone", 10, "NYC", "Jazz", domain.EventStatusCancelled),
	}

	got := QueryEvents(events, EventQuery{})

	assert.Equal(t, []string{"up", "sold"}, eventIDs(got))
}

func TestQueryEvents_SearchIsCaseInsensitive(t *testing.T) {
	jazz := testEvent("1", 10, "NYC", "Jazz", domain.EventStatusUpcoming)
	jazz.Title = "Midnight Jazz"
	tagged := testEvent("2", 10, "LA", "Soul", domain.EventStatusUpcoming)
	tagged.Tags = []string{"Late Night", "JAZZ"}
	hood := testEvent("3", 10, "London", "Rock", domain.EventStatusUpcoming)
	hood.Venue.Neighborhood = "Jazz Quarter"
	other := testEvent("4", 10, "Paris", "Folk", domain.EventStatusUpcoming)
	events := []domain.Event{jazz, tagged, hood, other}

	lower := QueryEvents(events, EventQuery{Search: "jazz"})
	upper := QueryEvents(events, EventQuery{Search: "JAZZ"})

	assert.Equal(t, []string{"1", "2", "3"}, eventIDs(lower))
	assert.Equal(t, eventIDs(lower), eventIDs(upper))
}

func TestQueryEvents_SearchFields(t *testing.T) {
	e := testEvent("1", 10, "New York", "Indie", domain.EventStatusUpcoming)
	e.Artist.Name = "Luna Waves"
	events := []domain.Event{e}

	for _, q := range []string{"luna", "york", "downtown", "show 1"} {
		assert.Len(t, QueryEvents(events, EventQuery{Search: q}), 1, q)
	}
	assert.Empty(t, QueryEvents(events, EventQuery{Search: "indie"}), "artist genre is not searched")
}

func TestQueryEvents_CityIsExact(t *testing.T) {
	events := []domain.Event{
		testEvent("1", 10, "New York", "Jazz", domain.EventStatusUpcoming),
		testEvent("2", 10, "new york", "Jazz", domain.EventStatusUpcoming),
	}

	assert.Equal(t, []string{"1"}, eventIDs(QueryEvents(events, EventQuery{City: "New York"})))
}

func TestQueryEvents_GenreMatchesArtistOrTag(t *testing.T) {
	byArtist := testEvent("1", 10, "NYC", "Jazz", domain.EventStatusUpcoming)
	byTag := testEvent("2", 10, "NYC", "Soul", domain.EventStatusUpcoming)
	byTag.Tags = []string{"jazz"}
	partial := testEvent("3", 10, "NYC", "Jazz Fusion", domain.EventStatusUpcoming)
	events := []domain.Event{byArtist, byTag, partial}

	got := QueryEvents(events, EventQuery{Genre: "JAZZ"})

	assert.Equal(t, []string{"1", "2"}, eventIDs(got))
}

func TestQueryEvents_Sorts(t *testing.T) {
	e1 := testEvent("1", 30, "NYC", "Jazz", domain.EventStatusUpcoming)
	e1.Date, e1.TicketsRemaining = "2024-05-01", 5
	e2 := testEvent("2", 10, "NYC", "Jazz", domain.EventStatusUpcoming)
	e2.Date, e2.TicketsRemaining = "2024-03-01", 50
	e3 := testEvent("3", 20, "NYC", "Jazz", domain.EventStatusSoldOut)
	e3.Date, e3.TicketsRemaining = "2024-04-01", 0
	events := []domain.Event{e1, e2, e3}

	tests := []struct {
		sort EventSort
		want []string
	}{
		{"", []string{"2", "3", "1"}},
		{SortByDate, []string{"2", "3", "1"}},
		{SortByPriceLow, []string{"2", "3", "1"}},
		{SortByPriceHigh, []string{"1", "3", "2"}},
		{SortByAvailability, []string{"2", "1", "3"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			assert.Equal(t, tt.want, eventIDs(QueryEvents(events, EventQuery{Sort: tt.sort})))
		})
	}
}

func TestQueryEvents_PriceAscendingReversedIsDescending(t *testing.T) {
	var events []domain.Event
	for i, p := range []float64{35, 12, 80, 45, 5, 60} {
		events = append(events, testEvent(string(rune('a'+i)), p, "NYC", "Jazz", domain.EventStatusUpcoming))
	}

	asc := eventIDs(QueryEvents(events, EventQuery{Sort: SortByPriceLow, Genre: "jazz"}))
	desc := eventIDs(QueryEvents(events, EventQuery{Sort: SortByPriceHigh, Genre: "jazz"}))
	slices.Reverse(asc)

	assert.Equal(t, desc, asc)
}

func TestQueryEvents_StableTies(t *testing.T) {
	events := []domain.Event{
		testEvent("first", 20, "NYC", "Jazz", domain.EventStatusUpcoming),
		testEvent("second", 20, "NYC", "Jazz", domain.EventStatusUpcoming),
		testEvent("third", 20, "NYC", "Jazz", domain.EventStatusUpcoming),
	}

	for _, s := range []EventSort{SortByDate, SortByPriceLow, SortByPriceHigh, SortByAvailability} {
		assert.Equal(t, []string{"first", "second", "third"}, eventIDs(QueryEvents(events, EventQuery{Sort: s})))
	}
}

func TestQueryEvents_DoesNotMutateInput(t *testing.T) {
	events := []domain.Event{
		testEvent("1", 30, "NYC", "Jazz", domain.EventStatusUpcoming),
		testEvent("2", 10, "NYC", "Jazz", domain.EventStatusUpcoming),
	}
	before := slices.Clone(events)

	_ = QueryEvents(events, EventQuery{Sort: SortByPriceLow})

	assert.Equal(t, before, events)
}

func TestQueryEvents_Deterministic(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	q := EventQuery{Search: "a", Sort: SortByAvailability}
	assert.Equal(t, c.QueryEvents(q), c.QueryEvents(q))
}

func TestQueryEvents_DateBuckets(t *testing.T) {
	// Wednesday.
	now := time.Date(2024, 3, 13, 18, 0, 0, 0, time.UTC)

	dates := map[string]string{
		"yesterday": "2024-03-12",
		"today":     "2024-03-13",
		"friday":    "2024-03-15",
		"saturday":  "2024-03-16",
		"sunday":    "2024-03-17",
		"nextweek":  "2024-03-20",
		"monthend":  "2024-03-31",
		"april":     "2024-04-01",
	}
	order := []string{"yesterday", "today", "friday", "saturday", "sunday", "nextweek", "monthend", "april"}
	var events []domain.Event
	for _, id := range order {
		e := testEvent(id, 10, "NYC", "Jazz", domain.EventStatusUpcoming)
		e.Date = dates[id]
		events = append(events, e)
	}

	tests := []struct {
		bucket DateBucket
		want   []string
	}{
		{DateAny, order},
		{DateToday, []string{"today"}},
		{DateWeekend, []string{"saturday", "sunday"}},
		{DateThisWeek, []string{"today", "friday", "saturday", "sunday"}},
		{DateThisMonth, []string{"today", "friday", "saturday", "sunday", "nextweek", "monthend"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.bucket), func(t *testing.T) {
			got := QueryEvents(events, EventQuery{Date: tt.bucket, Now: now})
			assert.Equal(t, tt.want, eventIDs(got))
		})
	}
}

func TestQueryEvents_WeekendOnSunday(t *testing.T) {
	sunday := time.Date(2024, 3, 17, 9, 0, 0, 0, time.UTC)
	sat := testEvent("sat", 10, "NYC", "Jazz", domain.EventStatusUpcoming)
	sat.Date = "2024-03-16"
	sun := testEvent("sun", 10, "NYC", "Jazz", domain.EventStatusUpcoming)
	sun.Date = "2024-03-17"

	got := QueryEvents([]domain.Event{sat, sun}, EventQuery{Date: DateWeekend, Now: sunday})

	assert.Equal(t, []string{"sun"}, eventIDs(got))
}

func TestQueryEvents_ZeroNowIgnoresDate(t *testing.T) {
	events := []domain.Event{testEvent("1", 10, "NYC", "Jazz", domain.EventStatusUpcoming)}
	assert.Len(t, QueryEvents(events, EventQuery{Date: DateToday}), 1)
}

func TestParseEventSort(t *testing.T) {
	s, err := ParseEventSort("")
	require.NoError(t, err)
	assert.Equal(t, SortByDate, s)

	s, err = ParseEventSort("price-high")
	require.NoError(t, err)
	assert.Equal(t, SortByPriceHigh, s)

	_, err = ParseEventSort("random")
	assert.Error(t, err)
}

func TestParseDateBucket(t *testing.T) {
	for _, v := range []string{"", "today", "weekend", "this-week", "this-month"} {
		_, err := ParseDateBucket(v)
		assert.NoError(t, err, v)
	}
	_, err := ParseDateBucket("next-year")
	assert.Error(t, err)
}

func testArtists() []domain.Artist {
	return []domain.Artist{
		{ID: "a1", Name: "zed", Genre: "Rock", Bio: "Loud guitars", Followers: 100, UpcomingShows: 1},
		{ID: "a2", Name: "Émile", Genre: "Jazz", Bio: "Piano trio", Followers: 300, UpcomingShows: 3},
		{ID: "a3", Name: "Amara", Genre: "Soul", Bio: "Sixties soul with a jazz edge", Followers: 200, UpcomingShows: 3},
		{ID: "a4", Name: "bravo", Genre: "jazz", Bio: "Brass", Followers: 50, UpcomingShows: 0},
	}
}

func TestQueryArtists_DefaultPopular(t *testing.T) {
	got := QueryArtists(testArtists(), ArtistQuery{})
	assert.Equal(t, []string{"a2", "a3", "a1", "a4"}, artistIDs(got))
}

func TestQueryArtists_Sorts(t *testing.T) {
	tests := []struct {
		sort ArtistSort
		want []string
	}{
		{SortByPopular, []string{"a2", "a3", "a1", "a4"}},
		{SortByName, []string{"a3", "a4", "a2", "a1"}},
		{SortByShows, []string{"a2", "a3", "a1", "a4"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			assert.Equal(t, tt.want, artistIDs(QueryArtists(testArtists(), ArtistQuery{Sort: tt.sort})))
		})
	}
}

func TestQueryArtists_SearchNameGenreBio(t *testing.T) {
	got := QueryArtists(testArtists(), ArtistQuery{Search: "JAZZ", Sort: SortByName})
	assert.Equal(t, []string{"a3", "a4", "a2"}, artistIDs(got))

	got = QueryArtists(testArtists(), ArtistQuery{Search: "guitars"})
	assert.Equal(t, []string{"a1"}, artistIDs(got))
}

func TestQueryArtists_GenreExactCaseInsensitive(t *testing.T) {
	got := QueryArtists(testArtists(), ArtistQuery{Genre: "JAZZ"})
	assert.Equal(t, []string{"a2", "a4"}, artistIDs(got))

	assert.Empty(t, QueryArtists(testArtists(), ArtistQuery{Genre: "Jaz"}))
}

func TestQueryEvents_GenreNonASCII(t *testing.T) {
	events := []domain.Event{
		testEvent("1", 10, "Tokyo", "民謡", domain.EventStatusUpcoming),
		testEvent("2", 10, "Paris", "Électro", domain.EventStatusUpcoming),
	}

	assert.Equal(t, []string{"1"}, eventIDs(QueryEvents(events, EventQuery{Genre: "民謡"})))
	assert.Equal(t, []string{"2"}, eventIDs(QueryEvents(events, EventQuery{Genre: "ÉLECTRO"})))
	assert.Empty(t, QueryEvents(events, EventQuery{Genre: "electro"}), "accents are significant")
}

func TestQueryEvents_GenrePunctuationIsSignificant(t *testing.T) {
	events := []domain.Event{
		testEvent("1", 10, "NYC", "Hip Hop", domain.EventStatusUpcoming),
		testEvent("2", 10, "NYC", "R&B", domain.EventStatusUpcoming),
	}

	assert.Empty(t, QueryEvents(events, EventQuery{Genre: "hip-hop"}))
	assert.Empty(t, QueryEvents(events, EventQuery{Genre: "r b"}))
	assert.Equal(t, []string{"1"}, eventIDs(QueryEvents(events, EventQuery{Genre: "HIP HOP"})))
	assert.Equal(t, []string{"2"}, eventIDs(QueryEvents(events, EventQuery{Genre: "r&b"})))
}

func TestQueryArtists_GenreExactMatch(t *testing.T) {
	artists := []domain.Artist{
		{ID: "k", Name: "Kiyoshi", Genre: "民謡"},
		{ID: "r", Name: "Rae", Genre: "R&B"},
		{ID: "h", Name: "Hal", Genre: "Hip Hop"},
	}

	assert.Equal(t, []string{"k"}, artistIDs(QueryArtists(artists, ArtistQuery{Genre: "民謡"})))
	assert.Empty(t, QueryArtists(artists, ArtistQuery{Genre: "r b"}))
	assert.Empty(t, QueryArtists(artists, ArtistQuery{Genre: "hip-hop"}))
	assert.Equal(t, []string{"h"}, artistIDs(QueryArtists(artists, ArtistQuery{Genre: "hip hop"})))
}

func TestParseArtistSort(t *testing.T) {
	s, err := ParseArtistSort("")
	require.NoError(t, err)
	assert.Equal(t, SortByPopular, s)

	_, err = ParseArtistSort("followers")
	assert.Error(t, err)
}
