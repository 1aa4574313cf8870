package export

import (
	"bytes"
	"html/template"
	"time"
)

const journalTemplate = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: Georgia, serif; color: #2b2b2b; margin: 0; }
  h1 { font-size: 22pt; margin-bottom: 0; }
  .subtitle { color: #777; margin-top: 4pt; }
  .entry { margin-top: 18pt; page-break-inside: avoid; }
  .entry h2 { font-size: 13pt; margin-bottom: 2pt; }
  .meta { font-size: 9pt; color: #999; }
  .kind { text-transform: uppercase; letter-spacing: 1px; font-size: 8pt; color: #8a6d3b; }
  .extra { font-style: italic; color: #555; margin-top: 4pt; }
  p { line-height: 1.5; margin-top: 6pt; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="subtitle">{{.OwnerName}} &middot; {{formatDate .GeneratedAt "02/01/2006"}}</div>
{{range .Entries}}
<div class="entry">
  <div class="kind">{{.Kind}}</div>
  {{if .Title}}<h2>{{.Title}}</h2>{{end}}
  <div class="meta">{{formatDate .Date "02/01/2006"}}</div>
  <p>{{.Body}}</p>
  {{if .Extra}}<div class="extra">{{.Extra}}</div>{{end}}
</div>
{{end}}
</body>
</html>`

var journalTmpl = template.Must(template.New("journal").Funcs(template.FuncMap{
	"formatDate": func(t time.Time, layout string) string {
		return t.Format(layout)
	},
}).Parse(journalTemplate))

// TemplateData holds the rendered journal.
type TemplateData struct {
	Title       string
	OwnerName   string
	GeneratedAt time.Time
	Entries     []Entry
}

// RenderJournalHTML renders the journal template.
func RenderJournalHTML(data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := journalTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
