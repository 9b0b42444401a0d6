package search

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a search.
type Params struct {
	Query string
	Types []string // media types to include (empty = all)
	Limit int
}

// Hit is one matching document.
type Hit struct {
	ID        string  `json:"id"`
	MediaType string  `json:"type,omitempty"`
	Title     string  `json:"title"`
	ImageURL  string  `json:"imageUrl"`
	Score     float64 `json:"score"`
}

// Result is the outcome of a search.
type Result struct {
	Query string `json:"query"`
	Total uint64 `json:"total"`
	Hits  []Hit  `json:"hits"`
}

const defaultLimit = 50

// Search runs params against the index. An empty query lists every document by id.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := params.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	req := bleve.NewSearchRequestOptions(buildQuery(params), limit, 0, false)
	if params.Query == "" {
		req.SortBy([]string{"id"})
	} else {
		req.SortBy([]string{"-_score", "id"})
	}
	req.Fields = []string{"id", "type", "raw_title", "image_url"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	out := &Result{Query: params.Query, Total: res.Total, Hits: make([]Hit, 0, len(res.Hits))}
	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}
		if v, ok := h.Fields["type"].(string); ok {
			hit.MediaType = v
		}
		if v, ok := h.Fields["raw_title"].(string); ok {
			hit.Title = v
		}
		if v, ok := h.Fields["image_url"].(string); ok {
			hit.ImageURL = v
		}
		out.Hits = append(out.Hits, hit)
	}
	return out, nil
}

// buildQuery matches titles (exact, fuzzy and prefix) or the media id.
func buildQuery(params Params) query.Query {
	var queries []query.Query

	if params.Query != "" {
		q := Fold(params.Query)

		titleMatch := bleve.NewMatchQuery(q)
		titleMatch.SetField("title")
		titleMatch.SetBoost(3.0)

		altMatch := bleve.NewMatchQuery(q)
		altMatch.SetField("alt_titles")
		altMatch.SetBoost(1.5)

		fuzzy := bleve.NewFuzzyQuery(q)
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("title")
		fuzzy.SetBoost(0.8)

		idMatch := bleve.NewTermQuery(params.Query)
		idMatch.SetField("id")
		idMatch.SetBoost(5.0)

		text := []query.Query{titleMatch, altMatch, fuzzy, idMatch}

		// Prefix query for autocomplete (minimum 2 chars)
		if len([]rune(q)) >= 2 {
			prefix := bleve.NewPrefixQuery(q)
			prefix.SetField("title")
			prefix.SetBoost(0.5)
			text = append(text, prefix)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(text...))
	}

	if len(params.Types) > 0 {
		typeQueries := make([]query.Query, len(params.Types))
		for i, t := range params.Types {
			tq := bleve.NewTermQuery(t)
			tq.SetField("type")
			typeQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(typeQueries...))
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}
