// Package render turns BRD and FRD models into HTML or markdown documents.
//
// Rendering is pure interpolation over embedded templates. The same model
// always renders to the same bytes.
package render

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/dhabedank/brdgen/internal/core"
)

//go:embed templates/*.html templates/*.md.tmpl
var templatesFS embed.FS

// Format selects the rendered representation.
type Format string

const (
	HTML     Format = "html"
	Markdown Format = "markdown"
)

// ParseFormat accepts html, markdown or md.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "html":
		return HTML, nil
	case "markdown", "md":
		return Markdown, nil
	}
	return "", fmt.Errorf("unknown render format %q (want html or markdown)", s)
}

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templatesFS, "templates/*.html"))
	mdTemplates   = texttemplate.Must(texttemplate.ParseFS(templatesFS, "templates/*.md.tmpl"))
)

// BRD renders a business requirements document.
func BRD(b core.BRD, f Format) (string, error) {
	if f == Markdown {
		return execText("brd.md", b)
	}
	return execHTML("brd", b)
}

// FRD renders a functional requirements document.
func FRD(d core.FRD, f Format) (string, error) {
	if f == Markdown {
		return execText("frd.md", d)
	}
	return execHTML("frd", d)
}

// Document renders the analysis as the requested document type and wraps it
// with its identifying fields.
func Document(e *core.Engine, a core.Analysis, t core.DocType, f Format) (core.Document, error) {
	var (
		body string
		err  error
	)
	switch t {
	case core.DocFRD:
		body, err = FRD(e.BuildFRD(a), f)
	default:
		t = core.DocBRD
		body, err = BRD(e.BuildBRD(a), f)
	}
	if err != nil {
		return core.Document{}, err
	}

	in := a.Input.Normalized()
	return core.Document{
		Project: in.Project,
		Version: in.Version,
		Type:    t,
		Domain:  a.Domain,
		HTML:    body,
	}, nil
}

// Wrap embeds an HTML fragment (such as an AI reply) in a styled page.
// Complete pages are returned unchanged.
func Wrap(project string, t core.DocType, fragment string) (string, error) {
	if strings.Contains(strings.ToLower(fragment), "<html") {
		return fragment, nil
	}
	title := project + " - Business Requirements Document"
	if t == core.DocFRD {
		title = project + " - Functional Requirements Document"
	}
	return execHTML("page", struct {
		Title string
		Body  htmltemplate.HTML
	}{title, htmltemplate.HTML(fragment)})
}

func execHTML(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func execText(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := mdTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
