package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secretshows/secretshows-server/internal/domain"
	"github.com/secretshows/secretshows-server/internal/logger"
)

func TestDefault_Loads(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.NotEmpty(t, c.Events())
	assert.NotEmpty(t, c.Artists())
	assert.NotEmpty(t, c.Cities())
	assert.NotEmpty(t, c.Genres())
	assert.NotEmpty(t, c.Testimonials())
	assert.NotEmpty(t, c.FAQs())
	assert.Positive(t, c.Stats().TotalShows)
}

func TestDefault_EventArtistsExist(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	for _, e := range c.Events() {
		a, ok := c.Artist(e.Artist.ID)
		require.True(t, ok, "event %s references unknown artist %s", e.ID, e.Artist.ID)
		assert.Equal(t, a.Summary(), e.Artist, e.ID)
	}
}

func TestCatalog_Lookups(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	e, ok := c.Event("evt-1")
	require.True(t, ok)
	assert.Equal(t, "evt-1", e.ID)

	_, ok = c.Event("evt-missing")
	assert.False(t, ok)

	city, ok := c.City("new-york")
	require.True(t, ok)
	assert.Equal(t, "New York", city.Name)

	assert.Equal(t, "New York", c.ResolveCity("new-york"))
	assert.Equal(t, "New York", c.ResolveCity("New York"))
	assert.Equal(t, "Atlantis", c.ResolveCity("Atlantis"))
}

func TestCatalog_AccessorsReturnCopies(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	events := c.Events()
	events[0].Title = "changed"

	first, _ := c.Event(events[0].ID)
	assert.NotEqual(t, "changed", first.Title)
}

func TestNew_Rejects(t *testing.T) {
	valid := testEvent("1", 10, "NYC", "Jazz", domain.EventStatusUpcoming)

	tests := []struct {
		name   string
		mutate func(e *domain.Event)
	}{
		{"missing id", func(e *domain.Event) { e.ID = "" }},
		{"bad date", func(e *domain.Event) { e.Date = "March 15" }},
		{"bad status", func(e *domain.Event) { e.Status = "postponed" }},
		{"bad currency", func(e *domain.Event) { e.Currency = "JPY" }},
		{"negative tickets", func(e *domain.Event) { e.TicketsRemaining = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			_, err := New([]domain.Event{e}, nil)
			assert.Error(t, err)
		})
	}

	_, err := New([]domain.Event{valid, valid}, nil)
	assert.ErrorContains(t, err, "duplicate event id")

	_, err = New(nil, []domain.Artist{{ID: "a"}, {ID: "a"}})
	assert.ErrorContains(t, err, "duplicate artist id")
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte(`{"events":[],"venues":[]}`))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(catalogJSON("Only Show")), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, c.Events(), 1)
	assert.Equal(t, "Only Show", c.Events()[0].Title)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func catalogJSON(title string) string {
	return `{"genres":["Jazz"],"events":[{"id":"evt-x","title":"` + title + `","date":"2024-03-15","time":"20:00",` +
		`"price":10,"currency":"USD","capacity":10,"tickets_remaining":5,"status":"upcoming",` +
		`"venue":{"city":"NYC"},"artist":{"id":"artist-x","name":"X","genre":"Jazz"}}]}`
}

func TestSource_ReloadNotifies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(catalogJSON("First")), 0o644))

	src, err := NewSource(logger.Discard(), path)
	require.NoError(t, err)

	var seen []string
	src.OnReload(func(c *Catalog) { seen = append(seen, c.Events()[0].Title) })

	require.NoError(t, os.WriteFile(path, []byte(catalogJSON("Second")), 0o644))
	require.NoError(t, src.Reload())

	assert.Equal(t, []string{"Second"}, seen)
	assert.Equal(t, "Second", src.Current().Events()[0].Title)
}

func TestSource_BadFileKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(catalogJSON("Good")), 0o644))

	src, err := NewSource(logger.Discard(), path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))
	assert.Error(t, src.Reload())
	assert.Equal(t, "Good", src.Current().Events()[0].Title)
}

func TestSource_WatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(catalogJSON("Before")), 0o644))

	src, err := NewSource(logger.Discard(), path)
	require.NoError(t, err)
	require.NoError(t, src.Watch(20*time.Millisecond))
	t.Cleanup(func() { _ = src.Close() })

	require.NoError(t, os.WriteFile(path, []byte(catalogJSON("After")), 0o644))

	assert.Eventually(t, func() bool {
		return src.Current().Events()[0].Title == "After"
	}, 2*time.Second, 20*time.Millisecond)
}

func TestSource_WatchReportsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(catalogJSON("Good")), 0o644))

	src, err := NewSource(logger.Discard(), path)
	require.NoError(t, err)
	failed := make(chan error, 4)
	src.OnReloadError(func(err error) { failed <- err })
	require.NoError(t, src.Watch(20*time.Millisecond))
	t.Cleanup(func() { _ = src.Close() })

	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	select {
	case err := <-failed:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("reload failure not reported")
	}
	assert.Equal(t, "Good", src.Current().Events()[0].Title)
}

func TestSource_EmbeddedIgnoresWatch(t *testing.T) {
	src, err := NewSource(logger.Discard(), "")
	require.NoError(t, err)

	assert.NoError(t, src.Watch(0))
	assert.NoError(t, src.Close())
	assert.NotEmpty(t, src.Current().Events())
}

func TestStatic(t *testing.T) {
	c, err := New(nil, nil)
	require.NoError(t, err)

	assert.Same(t, c, Static(c).Current())
}
