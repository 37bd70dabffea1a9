package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secretshows/secretshows-server/internal/catalog"
	"github.com/secretshows/secretshows-server/internal/domain"
	"github.com/secretshows/secretshows-server/internal/logger"
)

// setupTestIndex creates an index loaded with the embedded catalog.
func setupTestIndex(t *testing.T) *SearchIndex {
	t.Helper()

	index, err := NewSearchIndex(Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	c, err := catalog.Default()
	require.NoError(t, err)
	require.NoError(t, index.Rebuild(c))

	return index
}

func hitIDs(r *SearchResult) []string {
	ids := make([]string, len(r.Hits))
	for i, h := range r.Hits {
		ids[i] = h.ID
	}
	return ids
}

func TestNewSearchIndex_Empty(t *testing.T) {
	index, err := NewSearchIndex(Options{})
	require.NoError(t, err)
	defer index.Close()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestRebuild_IndexesEventsAndArtists(t *testing.T) {
	index := setupTestIndex(t)
	c, _ := catalog.Default()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(len(c.Events())+len(c.Artists())), count)
}

func TestSearch_ArtistNameFindsArtistAndShows(t *testing.T) {
	index := setupTestIndex(t)

	result, err := index.Search(context.Background(), SearchParams{Query: "Luna", Limit: MaxLimit})
	require.NoError(t, err)

	assert.Subset(t, hitIDs(result), []string{"artist-1", "evt-1", "evt-9"})
	for _, h := range result.Hits {
		if h.ID == "evt-1" {
			assert.Equal(t, DocTypeEvent, h.Type)
			assert.Equal(t, "Luna Waves", h.Artist)
			assert.Equal(t, "New York", h.City)
		}
	}
}

func TestSearch_TypeFilter(t *testing.T) {
	index := setupTestIndex(t)

	result, err := index.Search(context.Background(), SearchParams{
		Query: "jazz",
		Types: []DocType{DocTypeEvent},
		Limit: MaxLimit,
	})
	require.NoError(t, err)

	assert.Subset(t, hitIDs(result), []string{"evt-2", "evt-10"})
	for _, h := range result.Hits {
		assert.Equal(t, DocTypeEvent, h.Type, h.ID)
	}
}

func TestSearch_HidesInactiveEvents(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	result, err := index.Search(ctx, SearchParams{Query: "barn dance", Limit: MaxLimit})
	require.NoError(t, err)
	assert.NotContains(t, hitIDs(result), "evt-12")

	result, err = index.Search(ctx, SearchParams{Query: "barn dance", Limit: MaxLimit, IncludeInactive: true})
	require.NoError(t, err)
	assert.Contains(t, hitIDs(result), "evt-12")
}

func TestSearch_TypoTolerance(t *testing.T) {
	index := setupTestIndex(t)

	result, err := index.Search(context.Background(), SearchParams{Query: "velvett"})
	require.NoError(t, err)

	assert.Contains(t, hitIDs(result), "artist-6")
}

func TestSearch_Prefix(t *testing.T) {
	index := setupTestIndex(t)

	result, err := index.Search(context.Background(), SearchParams{Query: "marc", Types: []DocType{DocTypeArtist}})
	require.NoError(t, err)

	assert.Subset(t, hitIDs(result), []string{"artist-2", "artist-8"})
}

func TestSearch_BlankQuery(t *testing.T) {
	index := setupTestIndex(t)

	result, err := index.Search(context.Background(), SearchParams{Query: "   "})
	require.NoError(t, err)

	assert.Empty(t, result.Hits)
	assert.NotNil(t, result.Hits)
}

func TestSearch_LimitClamped(t *testing.T) {
	index := setupTestIndex(t)

	result, err := index.Search(context.Background(), SearchParams{Query: "e", Limit: 2})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(result.Hits), 2)
}

func TestRebuild_ReplacesContents(t *testing.T) {
	index := setupTestIndex(t)

	only, err := catalog.New([]domain.Event{{
		ID: "evt-x", Title: "Lighthouse Session", Date: "2024-05-01",
		Currency: domain.CurrencyUSD, Status: domain.EventStatusUpcoming,
	}}, nil)
	require.NoError(t, err)
	require.NoError(t, index.Rebuild(only))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	result, err := index.Search(context.Background(), SearchParams{Query: "lighthouse"})
	require.NoError(t, err)
	assert.Equal(t, []string{"evt-x"}, hitIDs(result))
}

func TestFollow_RebuildsOnReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	write := func(title string) {
		doc := `{"events":[{"id":"evt-x","title":"` + title + `","date":"2024-03-15","price":10,` +
			`"currency":"USD","status":"upcoming","venue":{"city":"NYC"},"artist":{"id":"a","name":"A","genre":"Jazz"}}]}`
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	}
	write("Harbour Lights")

	src, err := catalog.NewSource(logger.Discard(), path)
	require.NoError(t, err)

	index, err := NewSearchIndex(Options{})
	require.NoError(t, err)
	defer index.Close()
	require.NoError(t, index.Follow(src))

	ctx := context.Background()
	result, err := index.Search(ctx, SearchParams{Query: "harbour"})
	require.NoError(t, err)
	assert.Equal(t, []string{"evt-x"}, hitIDs(result))

	write("Forest Echoes")
	require.NoError(t, src.Reload())

	result, err = index.Search(ctx, SearchParams{Query: "harbour"})
	require.NoError(t, err)
	assert.Empty(t, result.Hits)

	result, err = index.Search(ctx, SearchParams{Query: "forest"})
	require.NoError(t, err)
	assert.Equal(t, []string{"evt-x"}, hitIDs(result))
}
