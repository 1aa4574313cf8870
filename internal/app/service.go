package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"selah/api/internal/account"
	"selah/api/internal/auth"
	"selah/api/internal/config"
	"selah/api/internal/export"
	"selah/api/internal/search"
	"selah/api/internal/store"
	"selah/api/internal/util"
)

// Session identifies the authenticated journal owner on a request.
type Session struct {
	Email string
	Name  string
	Theme string
}

type PrayerInput struct {
	Title    string     `json:"title"`
	Content  string     `json:"content"`
	Category string     `json:"category"`
	Date     *time.Time `json:"date"`
}

type GratitudeInput struct {
	Content string     `json:"content"`
	Date    *time.Time `json:"date"`
}

type ReflectionInput struct {
	Content  string `json:"content"`
	Type     string `json:"type"`
	IsPublic bool   `json:"is_public"`
}

var allowedPrayerCategories = map[string]struct{}{
	store.PrayerPending:  {},
	store.PrayerAnswered: {},
	store.PrayerOngoing:  {},
}

var allowedReflectionTypes = map[string]struct{}{
	store.ReflectionDevotional: {},
	store.ReflectionPrayer:     {},
	store.ReflectionGratitude:  {},
}

type dataStore interface {
	account.UserStore
	InsertPrayer(context.Context, store.Prayer) error
	ListPrayers(ctx context.Context, userID, category string, limit int) ([]store.Prayer, error)
	UpdatePrayer(context.Context, store.Prayer) (bool, error)
	DeletePrayer(ctx context.Context, id, userID string) (bool, error)
	InsertGratitude(context.Context, store.Gratitude) error
	ListGratitudes(ctx context.Context, userID string, limit int) ([]store.Gratitude, error)
	DeleteGratitude(ctx context.Context, id, userID string) (bool, error)
	InsertReflection(context.Context, store.Reflection) error
	ListPublicReflections(ctx context.Context, limit int) ([]store.Reflection, error)
	ListDevotionals(ctx context.Context, userID string, limit int) ([]store.Devotional, error)
	Ping(ctx context.Context) error
}

type devotionalGenerator interface {
	Generate(ctx context.Context, owner, themeHint string) (store.Devotional, error)
}

type searchService interface {
	Search(ctx context.Context, q search.Query) search.Response
	IndexEntry(entry search.EntryRecord)
	DeleteEntry(id string)
}

type journalExporter interface {
	ExportJournal(ctx context.Context, req export.Request) (*export.Result, error)
}

type Service struct {
	cfg       config.Config
	store     dataStore
	accounts  *account.Service
	generator devotionalGenerator
	search    searchService
	exporter  journalExporter
}

func New(cfg config.Config, dataStore *store.PostgresStore, generator devotionalGenerator, searchSvc *search.Service, exporter *export.Service) *Service {
	return &Service{
		cfg:       cfg,
		store:     dataStore,
		accounts:  account.NewService(dataStore),
		generator: generator,
		search:    searchSvc,
		exporter:  exporter,
	}
}

const (
	devotionalListLimit = 30
	journalListLimit    = 100
	publicFeedLimit     = 50
)

// ---- auth ----

func (s *Service) Register(ctx context.Context, email, password, name string) (map[string]any, error) {
	user, err := s.accounts.Register(ctx, account.RegisterRequest{
		Email:    email,
		Password: password,
		Name:     name,
	})
	if err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			return nil, domainError(http.StatusBadRequest, "EMAIL_TAKEN", "Email already registered", nil)
		}
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), nil)
	}
	return s.tokenEnvelope(user)
}

func (s *Service) Login(ctx context.Context, email, password string) (map[string]any, error) {
	user, err := s.accounts.Login(ctx, email, password)
	if err != nil {
		return nil, domainError(http.StatusUnauthorized, "UNAUTHORIZED", "Incorrect email or password", nil)
	}
	return s.tokenEnvelope(user)
}

func (s *Service) tokenEnvelope(user store.User) (map[string]any, error) {
	token, err := auth.IssueToken([]byte(s.cfg.JWTSecret), user.Email, s.cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"user": map[string]any{
			"email": user.Email,
			"name":  user.Name,
			"theme": user.Theme,
		},
	}, nil
}

func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.JWTSecret), token)
	if err != nil {
		return Session{}, err
	}
	user, err := s.store.GetUserByEmail(ctx, claims.Email)
	if err != nil {
		return Session{}, auth.ErrInvalidToken
	}
	return Session{
		Email: user.Email,
		Name:  user.Name,
		Theme: user.Theme,
	}, nil
}

func (s *Service) UpdateTheme(ctx context.Context, session Session, theme string) error {
	return s.accounts.UpdateTheme(ctx, session.Email, theme)
}

// ---- devotionals ----

func (s *Service) GenerateDevotional(ctx context.Context, session Session, themeHint string) (map[string]any, error) {
	devotional, err := s.generator.Generate(ctx, session.Email, strings.TrimSpace(themeHint))
	if err != nil {
		return nil, err
	}
	return devotionalPayload(devotional), nil
}

func (s *Service) ListDevotionals(ctx context.Context, session Session) ([]map[string]any, error) {
	devotionals, err := s.store.ListDevotionals(ctx, session.Email, devotionalListLimit)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(devotionals))
	for _, d := range devotionals {
		items = append(items, devotionalPayload(d))
	}
	return items, nil
}

func devotionalPayload(d store.Devotional) map[string]any {
	suggestions := d.MusicSuggestions
	if suggestions == nil {
		suggestions = []store.MusicSuggestion{}
	}
	return map[string]any{
		"id":                d.ID,
		"title":             d.Title,
		"content":           d.Content,
		"verse":             d.Verse,
		"verse_reference":   d.VerseReference,
		"music_suggestions": suggestions,
		"date":              d.Date.UTC().Format(time.RFC3339),
	}
}

// ---- prayers ----

func (s *Service) CreatePrayer(ctx context.Context, session Session, input PrayerInput) (map[string]any, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title and content are required", nil)
	}
	if _, ok := allowedPrayerCategories[input.Category]; !ok {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid prayer category", nil)
	}

	prayer := store.Prayer{
		ID:       util.NewID("pry"),
		UserID:   session.Email,
		Title:    title,
		Content:  content,
		Category: input.Category,
		Date:     orNow(input.Date),
	}
	if err := s.store.InsertPrayer(ctx, prayer); err != nil {
		return nil, err
	}

	s.indexEntry(search.EntryRecord{
		ID:      prayer.ID,
		Type:    string(search.ResultPrayer),
		OwnerID: prayer.UserID,
		Title:   prayer.Title,
		Body:    prayer.Content,
		Date:    prayer.Date.Unix(),
	})
	return prayerPayload(prayer), nil
}

func (s *Service) ListPrayers(ctx context.Context, session Session, category string) ([]map[string]any, error) {
	if category != "" {
		if _, ok := allowedPrayerCategories[category]; !ok {
			return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid prayer category", nil)
		}
	}
	prayers, err := s.store.ListPrayers(ctx, session.Email, category, journalListLimit)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(prayers))
	for _, p := range prayers {
		items = append(items, prayerPayload(p))
	}
	return items, nil
}

func (s *Service) UpdatePrayer(ctx context.Context, session Session, prayerID string, input PrayerInput) (map[string]any, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title and content are required", nil)
	}
	if _, ok := allowedPrayerCategories[input.Category]; !ok {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid prayer category", nil)
	}

	prayer := store.Prayer{
		ID:       prayerID,
		UserID:   session.Email,
		Title:    title,
		Content:  content,
		Category: input.Category,
		Date:     orNow(input.Date),
	}
	updated, err := s.store.UpdatePrayer(ctx, prayer)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "Prayer not found", nil)
	}

	s.indexEntry(search.EntryRecord{
		ID:      prayer.ID,
		Type:    string(search.ResultPrayer),
		OwnerID: prayer.UserID,
		Title:   prayer.Title,
		Body:    prayer.Content,
		Date:    prayer.Date.Unix(),
	})
	return map[string]any{"success": true}, nil
}

func (s *Service) DeletePrayer(ctx context.Context, session Session, prayerID string) (map[string]any, error) {
	deleted, err := s.store.DeletePrayer(ctx, prayerID, session.Email)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "Prayer not found", nil)
	}
	s.deleteEntry(prayerID)
	return map[string]any{"success": true}, nil
}

func prayerPayload(p store.Prayer) map[string]any {
	return map[string]any{
		"id":       p.ID,
		"title":    p.Title,
		"content":  p.Content,
		"category": p.Category,
		"date":     p.Date.UTC().Format(time.RFC3339),
	}
}

// ---- gratitudes ----

func (s *Service) CreateGratitude(ctx context.Context, session Session, input GratitudeInput) (map[string]any, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "content is required", nil)
	}

	gratitude := store.Gratitude{
		ID:      util.NewID("grt"),
		UserID:  session.Email,
		Content: content,
		Date:    orNow(input.Date),
	}
	if err := s.store.InsertGratitude(ctx, gratitude); err != nil {
		return nil, err
	}

	s.indexEntry(search.EntryRecord{
		ID:      gratitude.ID,
		Type:    string(search.ResultGratitude),
		OwnerID: gratitude.UserID,
		Body:    gratitude.Content,
		Date:    gratitude.Date.Unix(),
	})
	return gratitudePayload(gratitude), nil
}

func (s *Service) ListGratitudes(ctx context.Context, session Session) ([]map[string]any, error) {
	gratitudes, err := s.store.ListGratitudes(ctx, session.Email, journalListLimit)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(gratitudes))
	for _, g := range gratitudes {
		items = append(items, gratitudePayload(g))
	}
	return items, nil
}

func (s *Service) DeleteGratitude(ctx context.Context, session Session, gratitudeID string) (map[string]any, error) {
	deleted, err := s.store.DeleteGratitude(ctx, gratitudeID, session.Email)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "Gratitude not found", nil)
	}
	s.deleteEntry(gratitudeID)
	return map[string]any{"success": true}, nil
}

func gratitudePayload(g store.Gratitude) map[string]any {
	return map[string]any{
		"id":      g.ID,
		"content": g.Content,
		"date":    g.Date.UTC().Format(time.RFC3339),
	}
}

// ---- reflections ----

func (s *Service) CreateReflection(ctx context.Context, session Session, input ReflectionInput) (map[string]any, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "content is required", nil)
	}
	if _, ok := allowedReflectionTypes[input.Type]; !ok {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid reflection type", nil)
	}

	reflection := store.Reflection{
		ID:       util.NewID("rfl"),
		UserID:   session.Email,
		UserName: session.Name,
		Content:  content,
		Type:     input.Type,
		IsPublic: input.IsPublic,
		Date:     time.Now().UTC(),
	}
	if err := s.store.InsertReflection(ctx, reflection); err != nil {
		return nil, err
	}

	if reflection.IsPublic {
		s.indexEntry(search.EntryRecord{
			ID:       reflection.ID,
			Type:     string(search.ResultReflection),
			OwnerID:  reflection.UserID,
			Title:    reflection.UserName,
			Body:     reflection.Content,
			IsPublic: true,
			Date:     reflection.Date.Unix(),
		})
	}
	return reflectionPayload(reflection), nil
}

func (s *Service) ListPublicReflections(ctx context.Context) ([]map[string]any, error) {
	reflections, err := s.store.ListPublicReflections(ctx, publicFeedLimit)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(reflections))
	for _, r := range reflections {
		items = append(items, reflectionPayload(r))
	}
	return items, nil
}

func reflectionPayload(r store.Reflection) map[string]any {
	return map[string]any{
		"id":        r.ID,
		"user_name": r.UserName,
		"content":   r.Content,
		"type":      r.Type,
		"date":      r.Date.UTC().Format(time.RFC3339),
	}
}

// ---- search + export ----

func (s *Service) Search(ctx context.Context, session Session, text, filterType string, limit int) search.Response {
	return s.search.Search(ctx, search.Query{
		Text:       text,
		OwnerID:    session.Email,
		FilterType: search.ResultType(filterType),
		Limit:      limit,
	})
}

func (s *Service) ExportJournal(ctx context.Context, session Session, days int) (*export.Result, error) {
	result, err := s.exporter.ExportJournal(ctx, export.Request{
		OwnerEmail: session.Email,
		OwnerName:  session.Name,
		Days:       days,
	})
	if err != nil {
		if errors.Is(err, export.ErrPDFDependencyMissing) {
			return nil, domainError(http.StatusServiceUnavailable, "EXPORT_UNAVAILABLE", "PDF export is not available on this server", nil)
		}
		return nil, err
	}
	return result, nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) indexEntry(entry search.EntryRecord) {
	if s.search != nil {
		s.search.IndexEntry(entry)
	}
}

func (s *Service) deleteEntry(id string) {
	if s.search != nil {
		s.search.DeleteEntry(id)
	}
}

func orNow(t *time.Time) time.Time {
	if t != nil {
		return t.UTC()
	}
	return time.Now().UTC()
}
