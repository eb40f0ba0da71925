package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// pageTemplates is the parsed set of all page templates (head, tail, index, classic, personalised, adult).
var pageTemplates = mustParseTemplates()

func mustParseTemplates() *template.Template {
	t, err := template.New("").ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		panic("parse templates: " + err.Error())
	}
	return t
}

// pageData is passed to every page template.
type pageData struct {
	Page  string
	Title string
}

// pages maps a page template name to its document title.
var pages = map[string]string{
	"index":        "Bedtime Stories",
	"classic":      "Classic Bedtime Stories",
	"personalised": "Personalised Stories",
	"adult":        "Stories for Grown-ups",
}

// executeTemplate executes the named page template with data into w.
func executeTemplate(w io.Writer, name string, data interface{}) error {
	return pageTemplates.ExecuteTemplate(w, name, data)
}

// renderPage renders a page into memory so a template error never leaves a half-written response.
func renderPage(name string) ([]byte, error) {
	var buf bytes.Buffer
	err := executeTemplate(&buf, name, pageData{Page: name, Title: pages[name]})
	return buf.Bytes(), err
}
