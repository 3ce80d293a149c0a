// Package views builds the HTML template sets for pages and PDF reports.
package views

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"math"
	"path"
	"strconv"
	"strings"
	"time"

	"elca-web/internal/models"
	"elca-web/web"

	"github.com/gin-contrib/multitemplate"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// Raw HTML inside markdown is escaped since WithUnsafe is not set.
var md = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

func Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

// Number formats an indicator value for display. Small magnitudes switch
// to exponent notation so that ozone depletion values stay readable.
func Number(v float64) string {
	a := math.Abs(v)
	switch {
	case v == 0:
		return "0"
	case a >= 1000:
		return strconv.FormatFloat(v, 'f', 0, 64)
	case a >= 0.01:
		return strconv.FormatFloat(v, 'f', 2, 64)
	default:
		return strconv.FormatFloat(v, 'e', 2, 64)
	}
}

func Funcs() template.FuncMap {
	return template.FuncMap{
		"num":        Number,
		"markdown":   Markdown,
		"phaseLabel": models.PhaseLabel,
		"percent":    func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) + " %" },
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02.01.2006 15:04")
		},
		"datep": func(t *time.Time) string {
			if t == nil {
				return "never"
			}
			return t.Format("02.01.2006 15:04")
		},
		"has": func(list []string, v string) bool {
			for _, s := range list {
				if s == v {
					return true
				}
			}
			return false
		},
		"upper": strings.ToUpper,
	}
}

// Pages returns one template set per file in templates/pages, each parsed
// together with the layout and the partials.
func Pages() (multitemplate.Render, error) {
	return build("templates/layout.html", "templates/pages/*.html")
}

func build(layout, pattern string) (multitemplate.Render, error) {
	files, err := fs.Glob(web.FS, pattern)
	if err != nil {
		return nil, err
	}
	partials, err := fs.Glob(web.FS, "templates/partials/*.html")
	if err != nil {
		return nil, err
	}

	r := multitemplate.New()
	for _, file := range files {
		patterns := append([]string{layout}, partials...)
		patterns = append(patterns, file)
		t, err := template.New(path.Base(layout)).Funcs(Funcs()).ParseFS(web.FS, patterns...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		r.Add(path.Base(file), t)
	}
	return r, nil
}

// PDF renders report documents that are handed to the PDF renderer.
type PDF struct {
	sets multitemplate.Render
}

func LoadPDF() (*PDF, error) {
	sets, err := build("templates/pdf/layout.html", "templates/pdf/report_*.html")
	if err != nil {
		return nil, err
	}
	return &PDF{sets: sets}, nil
}

// Execute renders the named report (e.g. "summary") into a complete HTML
// document.
func (p *PDF) Execute(report string, data any) ([]byte, error) {
	t, ok := p.sets["report_"+report+".html"]
	if !ok {
		return nil, fmt.Errorf("views: no pdf template for report %q", report)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
