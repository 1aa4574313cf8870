package search

import (
	"context"
	"log"
	"strings"

	"selah/api/internal/store"
)

// FallbackStore is the Postgres side of search, used whenever Meilisearch
// is missing or unhealthy.
type FallbackStore interface {
	SearchJournal(ctx context.Context, userID, q string, limit int) ([]store.JournalHit, error)
}

// Service is the facade that tries Meilisearch first and falls back to
// Postgres ILIKE matching.
type Service struct {
	meili    *Meili
	fallback FallbackStore
}

// NewService creates a search service. meili may be nil when Meilisearch is
// not configured.
func NewService(meili *Meili, fallback FallbackStore) *Service {
	return &Service{meili: meili, fallback: fallback}
}

// Search runs the query against whichever backend is available.
func (s *Service) Search(ctx context.Context, q Query) Response {
	if strings.TrimSpace(q.Text) == "" {
		return Response{Results: []Result{}, Query: q.Text}
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}

	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text}
		}
		log.Printf("search: meilisearch error, falling back to postgres: %v", err)
	}

	hits, err := s.fallback.SearchJournal(ctx, q.OwnerID, q.Text, q.Limit)
	if err != nil {
		log.Printf("search: postgres fallback error: %v", err)
		return Response{Results: []Result{}, Query: q.Text}
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		if q.FilterType != "" && ResultType(hit.Type) != q.FilterType {
			continue
		}
		results = append(results, Result{
			Type:    ResultType(hit.Type),
			ID:      hit.ID,
			Title:   hit.Title,
			Snippet: hit.Snippet,
			Date:    hit.Date,
		})
	}
	return Response{Results: results, Total: len(results), Query: q.Text}
}

// IndexEntry pushes a journal entry into Meilisearch, fire-and-forget.
func (s *Service) IndexEntry(entry EntryRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexEntry(entry); err != nil {
			log.Printf("search: index entry %s: %v", entry.ID, err)
		}
	}()
}

// DeleteEntry removes a journal entry from Meilisearch, fire-and-forget.
func (s *Service) DeleteEntry(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteEntry(id); err != nil {
			log.Printf("search: delete entry %s: %v", id, err)
		}
	}()
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}
