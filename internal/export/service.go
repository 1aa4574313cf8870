package export

import (
	"context"
	"fmt"
	"sort"
	"time"

	"selah/api/internal/store"
)

// JournalStore provides the entries the export reads.
type JournalStore interface {
	ListDevotionals(ctx context.Context, userID string, limit int) ([]store.Devotional, error)
	ListPrayers(ctx context.Context, userID, category string, limit int) ([]store.Prayer, error)
	ListGratitudes(ctx context.Context, userID string, limit int) ([]store.Gratitude, error)
}

// Service renders journal exports.
type Service struct {
	store JournalStore
}

func NewService(store JournalStore) *Service {
	return &Service{store: store}
}

const maxEntriesPerKind = 100

// ExportJournal renders the owner's recent journal as a PDF.
func (s *Service) ExportJournal(ctx context.Context, req Request) (*Result, error) {
	days := req.Days
	if days <= 0 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	var entries []Entry

	devotionals, err := s.store.ListDevotionals(ctx, req.OwnerEmail, maxEntriesPerKind)
	if err != nil {
		return nil, fmt.Errorf("load devotionals: %w", err)
	}
	for _, d := range devotionals {
		if d.Date.Before(since) {
			continue
		}
		entries = append(entries, Entry{
			Kind:  "Devocional",
			Title: d.Title,
			Body:  d.Content,
			Extra: fmt.Sprintf("%q — %s", d.Verse, d.VerseReference),
			Date:  d.Date,
		})
	}

	prayers, err := s.store.ListPrayers(ctx, req.OwnerEmail, "", maxEntriesPerKind)
	if err != nil {
		return nil, fmt.Errorf("load prayers: %w", err)
	}
	for _, p := range prayers {
		if p.Date.Before(since) {
			continue
		}
		entries = append(entries, Entry{
			Kind:  "Oração",
			Title: p.Title,
			Body:  p.Content,
			Extra: p.Category,
			Date:  p.Date,
		})
	}

	gratitudes, err := s.store.ListGratitudes(ctx, req.OwnerEmail, maxEntriesPerKind)
	if err != nil {
		return nil, fmt.Errorf("load gratitudes: %w", err)
	}
	for _, g := range gratitudes {
		if g.Date.Before(since) {
			continue
		}
		entries = append(entries, Entry{
			Kind: "Gratidão",
			Body: g.Content,
			Date: g.Date,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})

	html, err := RenderJournalHTML(TemplateData{
		Title:       "Diário Espiritual",
		OwnerName:   req.OwnerName,
		GeneratedAt: time.Now().UTC(),
		Entries:     entries,
	})
	if err != nil {
		return nil, fmt.Errorf("render journal: %w", err)
	}

	return exportPDF(html, "Diario-"+req.OwnerName)
}
