// Package export renders a user's journal as a downloadable PDF.
package export

import (
	"errors"
	"time"
)

// ErrPDFDependencyMissing indicates chromium is not installed on the host.
var ErrPDFDependencyMissing = errors.New("pdf export unavailable")

// Request contains parameters for a journal export.
type Request struct {
	OwnerEmail string
	OwnerName  string
	Days       int // how far back to include, default 30
}

// Result is the produced file.
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

// Entry is one journal item rendered into the export.
type Entry struct {
	Kind  string // Devocional, Oração, Gratidão
	Title string
	Body  string
	Extra string // verse line for devotionals, category for prayers
	Date  time.Time
}
