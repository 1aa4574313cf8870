package store

import "time"

type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Theme        string
	CreatedAt    time.Time
}

// Prayer categories as the mobile client sends them.
const (
	PrayerPending  = "pendente"
	PrayerAnswered = "respondida"
	PrayerOngoing  = "continua"
)

type Prayer struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	Category  string
	Date      time.Time
	CreatedAt time.Time
}

type Gratitude struct {
	ID        string
	UserID    string
	Content   string
	Date      time.Time
	CreatedAt time.Time
}

// Reflection types mirror the journal areas they were shared from.
const (
	ReflectionDevotional = "devocional"
	ReflectionPrayer     = "oracao"
	ReflectionGratitude  = "gratidao"
)

type Reflection struct {
	ID        string
	UserID    string
	UserName  string
	Content   string
	Type      string
	IsPublic  bool
	Date      time.Time
	CreatedAt time.Time
}

type MusicSuggestion struct {
	Name    string `json:"name"`
	Artist  string `json:"artist"`
	Country string `json:"country"`
}

// Devotional is immutable once inserted. Day is the UTC calendar day of
// Date; (UserID, Day) is unique.
type Devotional struct {
	ID               string
	UserID           string
	Title            string
	Content          string
	Verse            string
	VerseReference   string
	MusicSuggestions []MusicSuggestion
	Date             time.Time
	Day              time.Time
	CreatedAt        time.Time
}
