package search

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/secretshows/secretshows-server/internal/domain"
)

// Limits for typeahead results.
const (
	DefaultLimit = 8
	MaxLimit     = 25
)

// SearchParams configures a search query.
type SearchParams struct {
	Query string    // User's search query
	Types []DocType // Document types to include (empty = all)
	Limit int

	// IncludeInactive keeps completed and cancelled events in the results.
	IncludeInactive bool
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string      `json:"query"`
	Total  uint64      `json:"total"`
	TookMs int64       `json:"took_ms"`
	Hits   []SearchHit `json:"hits"`
}

// SearchHit represents a single search result.
type SearchHit struct {
	ID         string            `json:"id"`
	Type       DocType           `json:"type"`
	Score      float64           `json:"score"`
	Name       string            `json:"name"`
	Artist     string            `json:"artist,omitempty"`
	City       string            `json:"city,omitempty"`
	Date       string            `json:"date,omitempty"`
	Genre      string            `json:"genre,omitempty"`
	Image      string            `json:"image,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Search executes a typeahead query. A blank query returns no hits.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	params.Query = strings.TrimSpace(params.Query)
	switch {
	case params.Limit <= 0:
		params.Limit = DefaultLimit
	case params.Limit > MaxLimit:
		params.Limit = MaxLimit
	}

	result := &SearchResult{Query: params.Query, Hits: []SearchHit{}}
	if params.Query == "" {
		return result, nil
	}

	searchRequest := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, 0, false)
	searchRequest.SortBy([]string{"-_score", "_id"})
	searchRequest.Highlight = bleve.NewHighlight()
	searchRequest.Highlight.AddField("name")
	searchRequest.Highlight.AddField("artist")
	searchRequest.Fields = []string{"type", "name", "artist", "city", "date", "genre", "image"}

	s.mu.RLock()
	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result.Total = searchResult.Total
	result.TookMs = searchResult.Took.Milliseconds()

	for _, hit := range searchResult.Hits {
		searchHit := SearchHit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		// Extract stored fields
		if t, ok := hit.Fields["type"].(string); ok {
			searchHit.Type = DocType(t)
		}
		searchHit.Name = stringField(hit.Fields, "name")
		searchHit.Artist = stringField(hit.Fields, "artist")
		searchHit.City = stringField(hit.Fields, "city")
		searchHit.Date = stringField(hit.Fields, "date")
		searchHit.Genre = stringField(hit.Fields, "genre")
		searchHit.Image = stringField(hit.Fields, "image")

		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	return result, nil
}

func stringField(fields map[string]any, name string) string {
	v, _ := fields[name].(string)
	return v
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params SearchParams) query.Query {
	q := params.Query

	nameMatch := bleve.NewMatchQuery(q)
	nameMatch.SetField("name")
	nameMatch.SetBoost(3.0)

	artistMatch := bleve.NewMatchQuery(q)
	artistMatch.SetField("artist")
	artistMatch.SetBoost(2.0)

	textQueries := []query.Query{nameMatch, artistMatch}

	for _, f := range []struct {
		name  string
		boost float64
	}{
		{"city", 1.5}, {"neighborhood", 1.2}, {"genre", 1.0}, {"tags", 1.0}, {"bio", 0.5},
	} {
		m := bleve.NewMatchQuery(q)
		m.SetField(f.name)
		m.SetBoost(f.boost)
		textQueries = append(textQueries, m)
	}

	// Typo tolerance on single words
	if !strings.ContainsAny(q, " \t") {
		fuzzyQuery := bleve.NewFuzzyQuery(strings.ToLower(q))
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("name")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)
	}

	// Prefix on the last word for type-as-you-go
	words := strings.Fields(strings.ToLower(q))
	if last := words[len(words)-1]; utf8.RuneCountInString(last) >= 2 {
		for _, field := range []string{"name", "artist"} {
			prefixQuery := bleve.NewPrefixQuery(last)
			prefixQuery.SetField(field)
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}
	}

	must := []query.Query{bleve.NewDisjunctionQuery(textQueries...)}

	if len(params.Types) > 0 {
		typeQueries := make([]query.Query, len(params.Types))
		for i, t := range params.Types {
			tq := bleve.NewTermQuery(string(t))
			tq.SetField("type")
			typeQueries[i] = tq
		}
		must = append(must, bleve.NewDisjunctionQuery(typeQueries...))
	}

	var mustNot []query.Query
	if !params.IncludeInactive {
		for _, status := range []domain.EventStatus{domain.EventStatusCompleted, domain.EventStatusCancelled} {
			tq := bleve.NewTermQuery(string(status))
			tq.SetField("status")
			mustNot = append(mustNot, tq)
		}
	}

	return bleve.NewBooleanQuery(must, nil, mustNot)
}
