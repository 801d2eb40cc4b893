package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Default and maximum number of hits per search.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// SearchParams configures a search query.
type SearchParams struct {
	OwnerID   int64  // Required; only this user's notes are returned
	Query     string // User's search query
	ProjectID int64  // Optional project restriction
	Limit     int
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string      `json:"query"`
	Total  uint64      `json:"total"`
	TookMs int64       `json:"took_ms"`
	Hits   []SearchHit `json:"hits"`
}

// SearchHit represents a single matching note.
type SearchHit struct {
	NoteID     int64             `json:"note_id"`
	ProjectID  int64             `json:"project_id"`
	Title      string            `json:"title"`
	Score      float64           `json:"score"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Search runs a full-text query over the owner's live notes.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if params.Limit <= 0 {
		params.Limit = DefaultLimit
	}
	params.Limit = min(params.Limit, MaxLimit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, 0, false)
	req.Fields = []string{"note_id", "project_id", "title"}
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField("title")
	req.Highlight.AddField("content")

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(res.Hits)),
	}

	for _, hit := range res.Hits {
		h := SearchHit{Score: hit.Score}
		if id, ok := hit.Fields["note_id"].(float64); ok {
			h.NoteID = int64(id)
		} else if id, err := strconv.ParseInt(hit.ID, 10, 64); err == nil {
			h.NoteID = id
		}
		if p, ok := hit.Fields["project_id"].(float64); ok {
			h.ProjectID = int64(p)
		}
		if t, ok := hit.Fields["title"].(string); ok {
			h.Title = t
		}
		if len(hit.Fragments) > 0 {
			h.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					h.Highlights[field] = fragments[0]
				}
			}
		}
		result.Hits = append(result.Hits, h)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
//
// Title matches are boosted over content matches. An empty query text
// matches every live note of the owner.
func buildSearchQuery(params SearchParams) query.Query {
	filters := []query.Query{
		exactNumber("owner_id", params.OwnerID),
		recycledQuery(false),
	}
	if params.ProjectID != 0 {
		filters = append(filters, exactNumber("project_id", params.ProjectID))
	}

	text := strings.TrimSpace(params.Query)
	if text == "" {
		return bleve.NewConjunctionQuery(append(filters, bleve.NewMatchAllQuery())...)
	}

	title := bleve.NewMatchQuery(text)
	title.SetField("title")
	title.SetBoost(3)

	titlePrefix := bleve.NewPrefixQuery(strings.ToLower(text))
	titlePrefix.SetField("title")
	titlePrefix.SetBoost(2)

	content := bleve.NewMatchQuery(text)
	content.SetField("content")

	textQuery := bleve.NewDisjunctionQuery(title, titlePrefix, content)

	return bleve.NewConjunctionQuery(append(filters, textQuery)...)
}

func exactNumber(field string, v int64) query.Query {
	f := float64(v)
	inclusive := true
	q := bleve.NewNumericRangeInclusiveQuery(&f, &f, &inclusive, &inclusive)
	q.SetField(field)
	return q
}

func recycledQuery(v bool) query.Query {
	q := bleve.NewBoolFieldQuery(v)
	q.SetField("recycled")
	return q
}
