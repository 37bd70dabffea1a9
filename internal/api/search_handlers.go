package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/secretshows/secretshows-server/internal/errors"
	"github.com/secretshows/secretshows-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search",
		Description: "Typeahead search across events and artists",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// SearchInput contains search query parameters.
type SearchInput struct {
	Query           string   `query:"q" doc:"Search query"`
	Types           []string `query:"type" doc:"Restrict to event and/or artist"`
	Limit           int      `query:"limit" minimum:"0" maximum:"25" doc:"Max results (default 8)"`
	IncludeInactive bool     `query:"include_inactive" doc:"Include completed and cancelled events"`
}

// SearchOutput wraps search results for Huma.
type SearchOutput struct {
	Body search.SearchResult
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if s.services.Search == nil {
		return nil, domainerrors.Unavailable("Search is not available")
	}

	params := search.SearchParams{
		Query:           input.Query,
		Limit:           input.Limit,
		IncludeInactive: input.IncludeInactive,
	}
	for _, t := range input.Types {
		switch dt := search.DocType(t); dt {
		case search.DocTypeEvent, search.DocTypeArtist:
			params.Types = append(params.Types, dt)
		default:
			return nil, domainerrors.Validationf("unknown search type %q", t)
		}
	}

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordSearch(len(result.Hits))

	return &SearchOutput{Body: *result}, nil
}
