package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"selah/api/internal/export"
	"selah/api/internal/search"
	"selah/api/internal/store"
)

func TestGenerateDevotionalEndpointReturnsRecord(t *testing.T) {
	svc := newTestService(sessionStore())
	svc.generator = &fakeGenerator{
		generateFn: func(_ context.Context, owner, themeHint string) (store.Devotional, error) {
			return store.Devotional{
				ID:             "dev_1",
				UserID:         owner,
				Title:          "A Paz de Deus",
				Content:        "Reflexão sobre a paz.",
				Verse:          "E a paz de Deus guardará os vossos corações.",
				VerseReference: "Filipenses 4:7",
				MusicSuggestions: []store.MusicSuggestion{
					{Name: "Oceans", Artist: "Hillsong United", Country: "Brasil"},
				},
				Date: time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC),
			}, nil
		},
	}
	server := NewHTTPServer(svc, "*")

	req := authedRequest(t, http.MethodPost, "/api/devotionals/generate", bytes.NewBufferString(`{"theme":"paz"}`))
	rr := httptest.NewRecorder()

	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if payload["title"] != "A Paz de Deus" {
		t.Fatalf("expected title, got %v", payload["title"])
	}
	if payload["verse_reference"] != "Filipenses 4:7" {
		t.Fatalf("expected verse_reference, got %v", payload["verse_reference"])
	}
	suggestions, _ := payload["music_suggestions"].([]any)
	if len(suggestions) != 1 {
		t.Fatalf("expected one music suggestion, got %v", payload["music_suggestions"])
	}
	song, _ := suggestions[0].(map[string]any)
	if song["name"] != "Oceans" || song["artist"] != "Hillsong United" || song["country"] != "Brasil" {
		t.Fatalf("unexpected suggestion payload: %v", song)
	}
}

func TestGenerateDevotionalAcceptsEmptyBody(t *testing.T) {
	var gotTheme string
	svc := newTestService(sessionStore())
	svc.generator = &fakeGenerator{
		generateFn: func(_ context.Context, _, themeHint string) (store.Devotional, error) {
			gotTheme = themeHint
			return store.Devotional{ID: "dev_1", Date: time.Now().UTC()}, nil
		},
	}
	server := NewHTTPServer(svc, "*")

	req := authedRequest(t, http.MethodPost, "/api/devotionals/generate", nil)
	rr := httptest.NewRecorder()

	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if gotTheme != "" {
		t.Fatalf("expected empty theme hint, got %q", gotTheme)
	}
}

func TestPrayerLifecycleOverHTTP(t *testing.T) {
	prayers := map[string]store.Prayer{}
	fs := sessionStore()
	fs.insertPrayerFn = func(_ context.Context, prayer store.Prayer) error {
		prayers[prayer.ID] = prayer
		return nil
	}
	fs.listPrayersFn = func(_ context.Context, userID, category string, _ int) ([]store.Prayer, error) {
		var items []store.Prayer
		for _, p := range prayers {
			if p.UserID != userID {
				continue
			}
			if category != "" && p.Category != category {
				continue
			}
			items = append(items, p)
		}
		return items, nil
	}
	fs.updatePrayerFn = func(_ context.Context, prayer store.Prayer) (bool, error) {
		existing, ok := prayers[prayer.ID]
		if !ok || existing.UserID != prayer.UserID {
			return false, nil
		}
		prayers[prayer.ID] = prayer
		return true, nil
	}
	fs.deletePrayerFn = func(_ context.Context, id, userID string) (bool, error) {
		existing, ok := prayers[id]
		if !ok || existing.UserID != userID {
			return false, nil
		}
		delete(prayers, id)
		return true, nil
	}
	server := NewHTTPServer(newTestService(fs), "*")

	// create
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, authedRequest(t, http.MethodPost, "/api/prayers", bytes.NewBufferString(
		`{"title":"Pela família","content":"Oração pela família","category":"pendente"}`)))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected status 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	var created map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("parse create response: %v", err)
	}
	prayerID, _ := created["id"].(string)
	if prayerID == "" {
		t.Fatalf("expected prayer id")
	}

	// list filtered by category
	rr = httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, authedRequest(t, http.MethodGet, "/api/prayers?category=pendente", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("list: expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var listed map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("parse list response: %v", err)
	}
	if items, _ := listed["prayers"].([]any); len(items) != 1 {
		t.Fatalf("expected one pending prayer, got %v", listed["prayers"])
	}

	// update moves category
	rr = httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, authedRequest(t, http.MethodPut, "/api/prayers/"+prayerID, bytes.NewBufferString(
		`{"title":"Pela família","content":"Oração pela família","category":"respondida"}`)))
	if rr.Code != http.StatusOK {
		t.Fatalf("update: expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if prayers[prayerID].Category != store.PrayerAnswered {
		t.Fatalf("expected category respondida, got %q", prayers[prayerID].Category)
	}

	// delete
	rr = httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, authedRequest(t, http.MethodDelete, "/api/prayers/"+prayerID, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("delete: expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if len(prayers) != 0 {
		t.Fatalf("expected prayer removed, still have %d", len(prayers))
	}

	// delete again is a 404
	rr = httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, authedRequest(t, http.MethodDelete, "/api/prayers/"+prayerID, nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected status 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestListPrayersRejectsUnknownCategory(t *testing.T) {
	server := NewHTTPServer(newTestService(sessionStore()), "*")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, authedRequest(t, http.MethodGet, "/api/prayers?category=urgente", nil))

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestGratitudeCreateRequiresContent(t *testing.T) {
	server := NewHTTPServer(newTestService(sessionStore()), "*")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, authedRequest(t, http.MethodPost, "/api/gratitudes", bytes.NewBufferString(`{"content":"   "}`)))

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestPublicReflectionsFeed(t *testing.T) {
	fs := sessionStore()
	fs.listPublicReflectionsFn = func(context.Context, int) ([]store.Reflection, error) {
		return []store.Reflection{
			{ID: "rfl_1", UserName: "Ana", Content: "Gratidão pelo dia", Type: store.ReflectionGratitude, IsPublic: true, Date: time.Now().UTC()},
		}, nil
	}
	server := NewHTTPServer(newTestService(fs), "*")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, authedRequest(t, http.MethodGet, "/api/reflections/public", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	items, _ := payload["reflections"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected one public reflection, got %v", payload["reflections"])
	}
	entry, _ := items[0].(map[string]any)
	if entry["user_name"] != "Ana" {
		t.Fatalf("expected author name in feed, got %v", entry)
	}
}

func TestSearchEndpointScopesToOwner(t *testing.T) {
	var gotQuery search.Query
	svc := newTestService(sessionStore())
	svc.search = &fakeSearch{
		searchFn: func(_ context.Context, q search.Query) search.Response {
			gotQuery = q
			return search.Response{Results: []search.Result{}, Query: q.Text}
		},
	}
	server := NewHTTPServer(svc, "*")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, authedRequest(t, http.MethodGet, "/api/search?q=paz&type=prayer&limit=5", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if gotQuery.OwnerID != "ana@example.com" {
		t.Fatalf("expected owner scope, got %q", gotQuery.OwnerID)
	}
	if gotQuery.Text != "paz" || gotQuery.FilterType != search.ResultPrayer || gotQuery.Limit != 5 {
		t.Fatalf("unexpected query: %+v", gotQuery)
	}
}

func TestExportEndpointStreamsPDF(t *testing.T) {
	svc := newTestService(sessionStore())
	svc.exporter = &fakeExporter{
		exportFn: func(_ context.Context, req export.Request) (*export.Result, error) {
			if req.OwnerEmail != "ana@example.com" {
				t.Fatalf("expected owner email, got %q", req.OwnerEmail)
			}
			if req.Days != 7 {
				t.Fatalf("expected 7 days, got %d", req.Days)
			}
			return &export.Result{Data: []byte("%PDF-1.4"), Filename: "Diario-Ana.pdf", MimeType: "application/pdf"}, nil
		},
	}
	server := NewHTTPServer(svc, "*")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, authedRequest(t, http.MethodGet, "/api/journal/export?days=7", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("expected application/pdf, got %q", got)
	}
	if got := rr.Header().Get("Content-Disposition"); got != `attachment; filename="Diario-Ana.pdf"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("expected PDF body, got %q", rr.Body.String())
	}
}

func TestExportUnavailableMapsTo503(t *testing.T) {
	svc := newTestService(sessionStore())
	svc.exporter = &fakeExporter{
		exportFn: func(context.Context, export.Request) (*export.Result, error) {
			return nil, export.ErrPDFDependencyMissing
		},
	}
	server := NewHTTPServer(svc, "*")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, authedRequest(t, http.MethodGet, "/api/journal/export", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d body=%s", rr.Code, rr.Body.String())
	}
}
