package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ---- users ----

func (s *PostgresStore) CreateUser(ctx context.Context, user User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, password_hash, theme)
		VALUES ($1, $2, $3, $4, $5)
	`, user.ID, user.Email, user.Name, user.PasswordHash, user.Theme)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, password_hash, theme, created_at
		FROM users WHERE email = $1
	`, email).Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.Theme, &user.CreatedAt)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *PostgresStore) UpdateUserTheme(ctx context.Context, email, theme string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET theme = $2 WHERE email = $1`, email, theme)
	if err != nil {
		return fmt.Errorf("update theme: %w", err)
	}
	return nil
}

// ---- prayers ----

func (s *PostgresStore) InsertPrayer(ctx context.Context, prayer Prayer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO prayers (id, user_id, title, content, category, date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, prayer.ID, prayer.UserID, prayer.Title, prayer.Content, prayer.Category, prayer.Date)
	if err != nil {
		return fmt.Errorf("insert prayer: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListPrayers(ctx context.Context, userID, category string, limit int) ([]Prayer, error) {
	query := `
		SELECT id, user_id, title, content, category, date, created_at
		FROM prayers WHERE user_id = $1
	`
	args := []any{userID}
	if category != "" {
		query += ` AND category = $2`
		args = append(args, category)
	}
	query += fmt.Sprintf(` ORDER BY date DESC LIMIT %d`, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list prayers: %w", err)
	}
	defer rows.Close()

	var prayers []Prayer
	for rows.Next() {
		var p Prayer
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Content, &p.Category, &p.Date, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan prayer: %w", err)
		}
		prayers = append(prayers, p)
	}
	return prayers, rows.Err()
}

// UpdatePrayer reports false when no row matched id+owner.
func (s *PostgresStore) UpdatePrayer(ctx context.Context, prayer Prayer) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE prayers SET title = $3, content = $4, category = $5, date = $6
		WHERE id = $1 AND user_id = $2
	`, prayer.ID, prayer.UserID, prayer.Title, prayer.Content, prayer.Category, prayer.Date)
	if err != nil {
		return false, fmt.Errorf("update prayer: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update prayer rows: %w", err)
	}
	return affected > 0, nil
}

func (s *PostgresStore) DeletePrayer(ctx context.Context, id, userID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM prayers WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete prayer: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete prayer rows: %w", err)
	}
	return affected > 0, nil
}

// ---- gratitudes ----

func (s *PostgresStore) InsertGratitude(ctx context.Context, gratitude Gratitude) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO gratitudes (id, user_id, content, date)
		VALUES ($1, $2, $3, $4)
	`, gratitude.ID, gratitude.UserID, gratitude.Content, gratitude.Date)
	if err != nil {
		return fmt.Errorf("insert gratitude: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListGratitudes(ctx context.Context, userID string, limit int) ([]Gratitude, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, user_id, content, date, created_at
		FROM gratitudes WHERE user_id = $1
		ORDER BY date DESC LIMIT %d
	`, limit), userID)
	if err != nil {
		return nil, fmt.Errorf("list gratitudes: %w", err)
	}
	defer rows.Close()

	var gratitudes []Gratitude
	for rows.Next() {
		var g Gratitude
		if err := rows.Scan(&g.ID, &g.UserID, &g.Content, &g.Date, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan gratitude: %w", err)
		}
		gratitudes = append(gratitudes, g)
	}
	return gratitudes, rows.Err()
}

func (s *PostgresStore) DeleteGratitude(ctx context.Context, id, userID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM gratitudes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete gratitude: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete gratitude rows: %w", err)
	}
	return affected > 0, nil
}

// ---- reflections ----

func (s *PostgresStore) InsertReflection(ctx context.Context, reflection Reflection) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reflections (id, user_id, user_name, content, type, is_public, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, reflection.ID, reflection.UserID, reflection.UserName, reflection.Content, reflection.Type, reflection.IsPublic, reflection.Date)
	if err != nil {
		return fmt.Errorf("insert reflection: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListPublicReflections(ctx context.Context, limit int) ([]Reflection, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, user_id, user_name, content, type, is_public, date, created_at
		FROM reflections WHERE is_public = TRUE
		ORDER BY date DESC LIMIT %d
	`, limit))
	if err != nil {
		return nil, fmt.Errorf("list public reflections: %w", err)
	}
	defer rows.Close()

	var reflections []Reflection
	for rows.Next() {
		var r Reflection
		if err := rows.Scan(&r.ID, &r.UserID, &r.UserName, &r.Content, &r.Type, &r.IsPublic, &r.Date, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reflection: %w", err)
		}
		reflections = append(reflections, r)
	}
	return reflections, rows.Err()
}

// ---- devotionals ----

const devotionalColumns = `id, user_id, title, content, verse, verse_reference, music_suggestions, date, day, created_at`

// GetDevotionalForDay returns sql.ErrNoRows when the owner has no
// devotional for that calendar day.
func (s *PostgresStore) GetDevotionalForDay(ctx context.Context, userID string, day time.Time) (Devotional, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+devotionalColumns+`
		FROM devotionals WHERE user_id = $1 AND day = $2
	`, userID, day)
	return scanDevotional(row)
}

// InsertDevotional enforces the one-per-day invariant: on a (user_id, day)
// conflict the existing record is returned instead of an error, so a lost
// race still reads as idempotent success.
func (s *PostgresStore) InsertDevotional(ctx context.Context, d Devotional) (Devotional, error) {
	music, err := json.Marshal(d.MusicSuggestions)
	if err != nil {
		return Devotional{}, fmt.Errorf("marshal music suggestions: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO devotionals (id, user_id, title, content, verse, verse_reference, music_suggestions, date, day)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, day) DO NOTHING
		RETURNING `+devotionalColumns+`
	`, d.ID, d.UserID, d.Title, d.Content, d.Verse, d.VerseReference, music, d.Date, d.Day)

	inserted, err := scanDevotional(row)
	if err == nil {
		return inserted, nil
	}
	if err != sql.ErrNoRows {
		return Devotional{}, fmt.Errorf("insert devotional: %w", err)
	}
	// Conflict: another request won the day. Return what it wrote.
	existing, err := s.GetDevotionalForDay(ctx, d.UserID, d.Day)
	if err != nil {
		return Devotional{}, fmt.Errorf("read conflicting devotional: %w", err)
	}
	return existing, nil
}

func (s *PostgresStore) ListDevotionals(ctx context.Context, userID string, limit int) ([]Devotional, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT `+devotionalColumns+`
		FROM devotionals WHERE user_id = $1
		ORDER BY date DESC LIMIT %d
	`, limit), userID)
	if err != nil {
		return nil, fmt.Errorf("list devotionals: %w", err)
	}
	defer rows.Close()

	var devotionals []Devotional
	for rows.Next() {
		d, err := scanDevotional(rows)
		if err != nil {
			return nil, err
		}
		devotionals = append(devotionals, d)
	}
	return devotionals, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevotional(row rowScanner) (Devotional, error) {
	var d Devotional
	var music []byte
	err := row.Scan(&d.ID, &d.UserID, &d.Title, &d.Content, &d.Verse, &d.VerseReference, &music, &d.Date, &d.Day, &d.CreatedAt)
	if err != nil {
		return Devotional{}, err
	}
	if len(music) > 0 {
		if err := json.Unmarshal(music, &d.MusicSuggestions); err != nil {
			return Devotional{}, fmt.Errorf("unmarshal music suggestions: %w", err)
		}
	}
	return d, nil
}

// ---- search fallback ----

// SearchJournal is the Postgres fallback used when Meilisearch is down.
// Plain ILIKE over private entries plus the public feed.
func (s *PostgresStore) SearchJournal(ctx context.Context, userID, q string, limit int) ([]JournalHit, error) {
	pattern := "%" + q + "%"
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, 'prayer', title, content, date FROM prayers
			WHERE user_id = $1 AND (title ILIKE $2 OR content ILIKE $2)
		UNION ALL
		SELECT id, 'gratitude', '', content, date FROM gratitudes
			WHERE user_id = $1 AND content ILIKE $2
		UNION ALL
		SELECT id, 'reflection', user_name, content, date FROM reflections
			WHERE is_public = TRUE AND content ILIKE $2
		ORDER BY 5 DESC LIMIT %d
	`, limit), userID, pattern)
	if err != nil {
		return nil, fmt.Errorf("search journal: %w", err)
	}
	defer rows.Close()

	var hits []JournalHit
	for rows.Next() {
		var h JournalHit
		if err := rows.Scan(&h.ID, &h.Type, &h.Title, &h.Snippet, &h.Date); err != nil {
			return nil, fmt.Errorf("scan search hit: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

type JournalHit struct {
	ID      string
	Type    string
	Title   string
	Snippet string
	Date    time.Time
}
