package search

import "time"

// ResultType identifies the kind of journal entry in a search result.
type ResultType string

const (
	ResultPrayer     ResultType = "prayer"
	ResultGratitude  ResultType = "gratitude"
	ResultReflection ResultType = "reflection"
)

// Result is a single search hit returned to the caller.
type Result struct {
	Type    ResultType `json:"type"`
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Snippet string     `json:"snippet"`
	Date    time.Time  `json:"date"`
}

// Query describes a search request. OwnerID scopes private entries; public
// reflections are visible to every caller.
type Query struct {
	Text       string
	OwnerID    string
	FilterType ResultType // empty = all types
	Limit      int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// EntryRecord is the data indexed per journal entry.
type EntryRecord struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	OwnerID  string `json:"ownerId"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	IsPublic bool   `json:"isPublic"`
	Date     int64  `json:"date"`
}
