package email

import (
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"communityevents/internal/domain"
)

//go:embed templates/*
var templateFS embed.FS

// eventTimeLayout is how event start times appear in mail, always in UTC.
const eventTimeLayout = "Mon, 02 Jan 2006 15:04 MST"

var templateFuncs = map[string]any{
	"eventTime": func(t time.Time) string { return t.UTC().Format(eventTimeLayout) },
}

// templateRenderer renders the embedded mail templates. Each mail named N consists of
// N_subject.txt, N.txt and N.html.
type templateRenderer struct {
	text *texttemplate.Template
	html *htmltemplate.Template
}

// NewTemplateRenderer parses the embedded templates once. The templates ship with the
// binary, so a parse failure is a programming error and panics.
func NewTemplateRenderer() domain.EmailTemplateRenderer {
	return &templateRenderer{
		text: texttemplate.Must(texttemplate.New("mail").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.txt")),
		html: htmltemplate.Must(htmltemplate.New("mail").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")),
	}
}

// Render executes the named mail with data and returns its subject and bodies.
func (r *templateRenderer) Render(templateName string, data any) (subject, htmlBody, textBody string, err error) {
	if r.html.Lookup(templateName+".html") == nil {
		return "", "", "", fmt.Errorf("unknown email template %q", templateName)
	}
	var sb, tb, hb strings.Builder
	if err := r.text.ExecuteTemplate(&sb, templateName+"_subject.txt", data); err != nil {
		return "", "", "", fmt.Errorf("render subject: %w", err)
	}
	if err := r.html.ExecuteTemplate(&hb, templateName+".html", data); err != nil {
		return "", "", "", fmt.Errorf("render html: %w", err)
	}
	if err := r.text.ExecuteTemplate(&tb, templateName+".txt", data); err != nil {
		return "", "", "", fmt.Errorf("render text: %w", err)
	}
	return strings.TrimSpace(sb.String()), hb.String(), tb.String(), nil
}
