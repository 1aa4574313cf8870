package devotional

import (
	"strings"

	"selah/api/internal/store"
)

// Section markers the provider is instructed to emit. The parser recognizes
// them as literal line prefixes.
const (
	markerTitle     = "TÍTULO:"
	markerContent   = "CONTEÚDO:"
	markerVerse     = "VERSÍCULO:"
	markerReference = "REFERÊNCIA:"
	markerMusic     = "MÚSICA_"

	musicDelimiter     = "-"
	countryPlaceholder = "Brasil"
)

// Parsed holds the structured fields recovered from a provider reply.
type Parsed struct {
	Title            string
	Content          string
	Verse            string
	VerseReference   string
	MusicSuggestions []store.MusicSuggestion
}

// Empty reports whether the reply carried none of the primary sections,
// meaning the provider ignored the requested format entirely.
func (p Parsed) Empty() bool {
	return p.Title == "" && p.Content == "" && p.Verse == ""
}

// Parse scans a provider reply line by line. It is a pure function: no I/O,
// no validation beyond structure recovery.
//
// Two states: idle and in_content. The content marker opens in_content;
// verse, reference and music markers close it. While in_content, unmarked
// non-empty lines accumulate and are space-joined at the end. Accumulation
// is marker-triggered, not line-counted.
func Parse(reply string) Parsed {
	var parsed Parsed
	var contentLines []string
	inContent := false

	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, markerTitle):
			parsed.Title = strings.TrimSpace(strings.TrimPrefix(line, markerTitle))

		case strings.HasPrefix(line, markerContent):
			inContent = true
			if rest := strings.TrimSpace(strings.TrimPrefix(line, markerContent)); rest != "" {
				contentLines = append(contentLines, rest)
			}

		case strings.HasPrefix(line, markerVerse):
			inContent = false
			parsed.Verse = strings.TrimSpace(strings.TrimPrefix(line, markerVerse))

		case strings.HasPrefix(line, markerReference):
			inContent = false
			parsed.VerseReference = strings.TrimSpace(strings.TrimPrefix(line, markerReference))

		case strings.HasPrefix(line, markerMusic):
			inContent = false
			if suggestion, ok := parseMusicLine(line); ok {
				parsed.MusicSuggestions = append(parsed.MusicSuggestions, suggestion)
			}

		default:
			if inContent && line != "" {
				contentLines = append(contentLines, line)
			}
		}
	}

	parsed.Content = strings.Join(contentLines, " ")
	return parsed
}

// parseMusicLine splits "MÚSICA_n: Name - Artist - Country" into its parts.
// Fewer than two parts means the line is dropped, not recorded as malformed.
func parseMusicLine(line string) (store.MusicSuggestion, bool) {
	_, value, found := strings.Cut(line, ":")
	if !found {
		return store.MusicSuggestion{}, false
	}

	rawParts := strings.Split(value, musicDelimiter)
	parts := make([]string, 0, len(rawParts))
	for _, part := range rawParts {
		parts = append(parts, strings.TrimSpace(part))
	}
	if len(parts) < 2 {
		return store.MusicSuggestion{}, false
	}

	suggestion := store.MusicSuggestion{
		Name:    parts[0],
		Artist:  parts[1],
		Country: countryPlaceholder,
	}
	if len(parts) > 2 {
		suggestion.Country = parts[2]
	}
	return suggestion, true
}
