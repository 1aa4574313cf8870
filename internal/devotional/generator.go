// Package devotional generates the daily devotional: prompt construction,
// provider call, reply parsing and the fallback path.
package devotional

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"selah/api/internal/store"
	"selah/api/internal/util"
)

// Store is the devotional persistence the generator needs.
type Store interface {
	GetDevotionalForDay(ctx context.Context, userID string, day time.Time) (store.Devotional, error)
	InsertDevotional(ctx context.Context, d store.Devotional) (store.Devotional, error)
}

// Locker is the optional per-(owner, day) generation lock.
type Locker interface {
	Acquire(ctx context.Context, owner string, day time.Time) (bool, error)
	Release(ctx context.Context, owner string, day time.Time) error
}

type Generator struct {
	store    Store
	provider Provider
	locker   Locker // nil disables locking

	now   func() time.Time
	sleep func(time.Duration)
}

// NewGenerator wires the generator. locker may be nil; the store's unique
// constraint alone then guards the daily invariant.
func NewGenerator(st Store, provider Provider, locker Locker) *Generator {
	return &Generator{
		store:    st,
		provider: provider,
		locker:   locker,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Generate returns the owner's devotional for the current calendar day,
// creating it on first request. Repeated calls within a day return the
// existing record without a provider call. Provider or parse failure yields
// the fixed fallback content; only store failures surface as errors.
func (g *Generator) Generate(ctx context.Context, owner, themeHint string) (store.Devotional, error) {
	now := g.now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	existing, err := g.store.GetDevotionalForDay(ctx, owner, day)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return store.Devotional{}, fmt.Errorf("lookup devotional: %w", err)
	}

	if g.locker != nil {
		acquired, lockErr := g.locker.Acquire(ctx, owner, day)
		if lockErr != nil {
			// Redis being down must not block generation.
			log.Printf("devotional: generation lock unavailable: %v", lockErr)
		} else if !acquired {
			// Another request is mid-generation. Give it a few beats to
			// land its record, then generate anyway; the unique index
			// resolves whoever loses.
			if d, ok := g.awaitConcurrent(ctx, owner, day); ok {
				return d, nil
			}
		} else {
			defer func() {
				if releaseErr := g.locker.Release(context.WithoutCancel(ctx), owner, day); releaseErr != nil {
					log.Printf("devotional: release generation lock: %v", releaseErr)
				}
			}()
		}
	}

	parsed, genErr := g.generateContent(ctx, themeHint)
	if genErr != nil {
		log.Printf("devotional: generation failed, using fallback: %v", genErr)
		parsed = fallbackDevotional()
	}

	record := store.Devotional{
		ID:               util.NewID("dev"),
		UserID:           owner,
		Title:            parsed.Title,
		Content:          parsed.Content,
		Verse:            parsed.Verse,
		VerseReference:   parsed.VerseReference,
		MusicSuggestions: parsed.MusicSuggestions,
		Date:             now,
		Day:              day,
	}

	inserted, err := g.store.InsertDevotional(ctx, record)
	if err != nil {
		return store.Devotional{}, fmt.Errorf("insert devotional: %w", err)
	}
	return inserted, nil
}

// generateContent is the provider-call-and-parse step. Any error variant is
// mapped to the fallback by the caller, keeping the never-fails guarantee a
// visible branch.
func (g *Generator) generateContent(ctx context.Context, themeHint string) (Parsed, error) {
	reply, err := g.provider.Complete(ctx, BuildPrompt(themeHint))
	if err != nil {
		return Parsed{}, fmt.Errorf("provider: %w", err)
	}

	parsed := Parse(reply)
	if parsed.Empty() {
		return Parsed{}, errors.New("reply carried no recognizable sections")
	}
	return parsed, nil
}

// awaitConcurrent polls for the record a concurrent winner is writing.
func (g *Generator) awaitConcurrent(ctx context.Context, owner string, day time.Time) (store.Devotional, bool) {
	for i := 0; i < 6; i++ {
		g.sleep(500 * time.Millisecond)
		if d, err := g.store.GetDevotionalForDay(ctx, owner, day); err == nil {
			return d, true
		}
		if ctx.Err() != nil {
			break
		}
	}
	return store.Devotional{}, false
}
