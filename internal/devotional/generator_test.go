package devotional

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"selah/api/internal/store"
)

type fakeDevStore struct {
	records   map[string]store.Devotional // keyed by owner + day
	insertErr error
	inserts   int
}

func newFakeDevStore() *fakeDevStore {
	return &fakeDevStore{records: make(map[string]store.Devotional)}
}

func devKey(owner string, day time.Time) string {
	return owner + "|" + day.UTC().Format("2006-01-02")
}

func (f *fakeDevStore) GetDevotionalForDay(_ context.Context, userID string, day time.Time) (store.Devotional, error) {
	d, ok := f.records[devKey(userID, day)]
	if !ok {
		return store.Devotional{}, sql.ErrNoRows
	}
	return d, nil
}

func (f *fakeDevStore) InsertDevotional(_ context.Context, d store.Devotional) (store.Devotional, error) {
	f.inserts++
	if f.insertErr != nil {
		return store.Devotional{}, f.insertErr
	}
	key := devKey(d.UserID, d.Day)
	if existing, ok := f.records[key]; ok {
		// Unique (owner, day) constraint: conflict returns the winner.
		return existing, nil
	}
	d.CreatedAt = time.Now()
	f.records[key] = d
	return d, nil
}

type fakeProvider struct {
	reply   string
	err     error
	calls   int
	prompts []string
}

func (f *fakeProvider) Complete(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

const goodReply = `TÍTULO: Confiança
CONTEÚDO: Confie no Senhor de todo o coração.
VERSÍCULO: Confia no Senhor de todo o teu coração.
REFERÊNCIA: Provérbios 3:5
MÚSICA_1: Nome A - Artista A - Brasil
MÚSICA_2: Nome B - Artista B - Brasil
MÚSICA_3: Nome C - Artista C - EUA`

func newTestGenerator(st Store, provider Provider) *Generator {
	g := NewGenerator(st, provider, nil)
	g.now = func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) }
	g.sleep = func(time.Duration) {}
	return g
}

func TestGenerateIsIdempotentWithinDay(t *testing.T) {
	fs := newFakeDevStore()
	provider := &fakeProvider{reply: goodReply}
	g := newTestGenerator(fs, provider)

	first, err := g.Generate(context.Background(), "maria@example.com", "")
	if err != nil {
		t.Fatalf("first Generate() error = %v", err)
	}
	second, err := g.Generate(context.Background(), "maria@example.com", "")
	if err != nil {
		t.Fatalf("second Generate() error = %v", err)
	}

	if first.ID == "" || first.ID != second.ID {
		t.Fatalf("expected identical ids, got %q and %q", first.ID, second.ID)
	}
	if provider.calls != 1 {
		t.Fatalf("expected exactly 1 provider call, got %d", provider.calls)
	}
	if fs.inserts != 1 {
		t.Fatalf("expected exactly 1 insert, got %d", fs.inserts)
	}
}

func TestGenerateRollsOverToNewDay(t *testing.T) {
	fs := newFakeDevStore()
	provider := &fakeProvider{reply: goodReply}
	g := newTestGenerator(fs, provider)

	dayOne, err := g.Generate(context.Background(), "maria@example.com", "")
	if err != nil {
		t.Fatalf("Generate() day one error = %v", err)
	}

	g.now = func() time.Time { return time.Date(2025, 3, 15, 0, 0, 1, 0, time.UTC) }
	dayTwo, err := g.Generate(context.Background(), "maria@example.com", "")
	if err != nil {
		t.Fatalf("Generate() day two error = %v", err)
	}

	if dayOne.ID == dayTwo.ID {
		t.Fatalf("expected a new record after rollover, both ids %q", dayOne.ID)
	}
	if provider.calls != 2 {
		t.Fatalf("expected 2 provider calls across 2 days, got %d", provider.calls)
	}
}

func TestGenerateFallsBackOnProviderError(t *testing.T) {
	fs := newFakeDevStore()
	provider := &fakeProvider{err: errors.New("provider unreachable")}
	g := newTestGenerator(fs, provider)

	d, err := g.Generate(context.Background(), "maria@example.com", "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	fallback := fallbackDevotional()
	if d.Title != fallback.Title {
		t.Errorf("title = %q, want %q", d.Title, fallback.Title)
	}
	if d.Verse != fallback.Verse {
		t.Errorf("verse = %q, want %q", d.Verse, fallback.Verse)
	}
	if d.VerseReference != fallback.VerseReference {
		t.Errorf("verse reference = %q, want %q", d.VerseReference, fallback.VerseReference)
	}
	if len(d.MusicSuggestions) != 3 {
		t.Errorf("expected 3 fallback songs, got %d", len(d.MusicSuggestions))
	}
}

func TestGenerateFallsBackOnUnusableReply(t *testing.T) {
	fs := newFakeDevStore()
	provider := &fakeProvider{reply: "Desculpe, não posso ajudar com isso."}
	g := newTestGenerator(fs, provider)

	d, err := g.Generate(context.Background(), "maria@example.com", "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if d.Title != fallbackDevotional().Title {
		t.Fatalf("expected fallback title, got %q", d.Title)
	}
}

func TestGenerateEmbedsThemeHint(t *testing.T) {
	fs := newFakeDevStore()
	provider := &fakeProvider{reply: goodReply}
	g := newTestGenerator(fs, provider)

	if _, err := g.Generate(context.Background(), "maria@example.com", "gratidão"); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(provider.prompts) != 1 {
		t.Fatalf("expected 1 prompt, got %d", len(provider.prompts))
	}
	if !strings.Contains(provider.prompts[0], "Tema sugerido: gratidão") {
		t.Fatalf("prompt missing theme hint:\n%s", provider.prompts[0])
	}
}

func TestGenerateWithoutThemeAsksProviderToChoose(t *testing.T) {
	fs := newFakeDevStore()
	provider := &fakeProvider{reply: goodReply}
	g := newTestGenerator(fs, provider)

	if _, err := g.Generate(context.Background(), "maria@example.com", ""); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !strings.Contains(provider.prompts[0], "Escolha um tema espiritual relevante para hoje.") {
		t.Fatalf("prompt missing theme instruction:\n%s", provider.prompts[0])
	}
}

func TestGenerateSurfacesStoreFailure(t *testing.T) {
	fs := newFakeDevStore()
	fs.insertErr = errors.New("connection reset")
	provider := &fakeProvider{reply: goodReply}
	g := newTestGenerator(fs, provider)

	_, err := g.Generate(context.Background(), "maria@example.com", "")
	if err == nil {
		t.Fatal("expected store failure to surface")
	}
}

func TestGenerateStampsDateAndDay(t *testing.T) {
	fs := newFakeDevStore()
	provider := &fakeProvider{reply: goodReply}
	g := newTestGenerator(fs, provider)

	d, err := g.Generate(context.Background(), "maria@example.com", "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !d.Date.Equal(time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)) {
		t.Errorf("date = %v", d.Date)
	}
	if !d.Day.Equal(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("day = %v", d.Day)
	}
	if d.UserID != "maria@example.com" {
		t.Errorf("owner = %q", d.UserID)
	}
}

type fakeLocker struct {
	held     map[string]bool
	refuse   bool
	acquires int
	releases int
}

func (f *fakeLocker) Acquire(_ context.Context, owner string, day time.Time) (bool, error) {
	f.acquires++
	if f.refuse {
		return false, nil
	}
	if f.held == nil {
		f.held = make(map[string]bool)
	}
	f.held[devKey(owner, day)] = true
	return true, nil
}

func (f *fakeLocker) Release(_ context.Context, owner string, day time.Time) error {
	f.releases++
	delete(f.held, devKey(owner, day))
	return nil
}

func TestGenerateAcquiresAndReleasesLock(t *testing.T) {
	fs := newFakeDevStore()
	provider := &fakeProvider{reply: goodReply}
	locker := &fakeLocker{}
	g := NewGenerator(fs, provider, locker)
	g.now = func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) }
	g.sleep = func(time.Duration) {}

	if _, err := g.Generate(context.Background(), "maria@example.com", ""); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if locker.acquires != 1 || locker.releases != 1 {
		t.Fatalf("acquires=%d releases=%d, want 1/1", locker.acquires, locker.releases)
	}
}

func TestGenerateWaitsOutConcurrentWinner(t *testing.T) {
	fs := newFakeDevStore()
	provider := &fakeProvider{reply: goodReply}
	locker := &fakeLocker{refuse: true}
	g := NewGenerator(fs, provider, locker)
	g.now = func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) }

	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	winner := store.Devotional{ID: "dev_winner", UserID: "maria@example.com", Title: "Vencedor", Day: day}
	slept := 0
	g.sleep = func(time.Duration) {
		slept++
		if slept == 2 {
			// The concurrent request lands its record mid-wait.
			fs.records[devKey("maria@example.com", day)] = winner
		}
	}

	d, err := g.Generate(context.Background(), "maria@example.com", "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if d.ID != "dev_winner" {
		t.Fatalf("expected the concurrent winner's record, got %+v", d)
	}
	if provider.calls != 0 {
		t.Fatalf("expected no provider call, got %d", provider.calls)
	}
}
