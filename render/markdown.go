// Copyright 2025 The DuoScience Authors
// SPDX-License-Identifier: Apache-2.0

// Package render converts markdown task reports into styled PDF documents.
//
// Research and hypothesis results arrive as markdown with tables, fenced
// code, and footnotes. Rendering happens in two stages: goldmark produces
// the HTML body with chroma syntax highlighting, and wkhtmltopdf turns the
// assembled page into a PDF.
package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghtml "github.com/yuin/goldmark/renderer/html"
)

// DefaultHighlightStyle is the chroma style used for code blocks when none
// is configured.
const DefaultHighlightStyle = "github"

// Options control HTML assembly and PDF generation.
type Options struct {
	// CSSPath points to an optional custom stylesheet appended after the
	// base styles.
	CSSPath string

	// HighlightStyle selects the chroma style for code highlighting.
	// Empty means DefaultHighlightStyle.
	HighlightStyle string

	// LogoPath points to an optional logo image embedded at the top of
	// the document as a base64 data URI.
	LogoPath string

	// WkhtmltopdfPath is the path to the wkhtmltopdf executable. Empty
	// means the binary is looked up on PATH.
	WkhtmltopdfPath string
}

func (o Options) highlightStyle() string {
	if o.HighlightStyle == "" {
		return DefaultHighlightStyle
	}
	// Unknown style names would silently highlight with chroma's fallback;
	// resolve them against the registry up front instead.
	if _, ok := styles.Registry[o.HighlightStyle]; !ok {
		return DefaultHighlightStyle
	}
	return o.HighlightStyle
}

// newMarkdown builds the goldmark instance used for report rendering:
// GFM tables and autolinks, footnotes, definition lists, auto heading ids
// for intra-document links, and chroma highlighting of fenced code.
func newMarkdown(style string) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.DefinitionList,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			ghtml.WithUnsafe(),
		),
	)
}

// MarkdownToHTML converts markdown source into an HTML body fragment.
func MarkdownToHTML(source []byte, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := newMarkdown(opts.highlightStyle()).Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// baseCSS carries the document styles: A4 pages, readable body text, and
// bordered tables that survive the print engine's fixed layout.
const baseCSS = `
.logo { max-height: 40px; margin-bottom: 20px; }
.logo + h1, .logo + h2, .logo + h3, .logo + p { margin-top: 0; }
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif; font-size: 11pt; line-height: 1.6; }
@page { size: A4; margin: 25mm; }
h1, h2, h3, h4, h5, h6 { margin-top: 1.5em; margin-bottom: 0.5em; }
table { width: 100%; border-collapse: collapse; margin-top: 1em; table-layout: fixed; }
th, td { border: 1px solid #ddd; padding: 8px; vertical-align: top; word-wrap: break-word; }
th { background-color: #f2f2f2; font-weight: bold; }
code:not(pre > code) { background-color: #f0f0f0; padding: 2px 4px; border-radius: 3px; font-size: 0.9em; }
blockquote { border-left: 4px solid #ddd; padding-left: 1em; color: #666; margin-left: 0; }
`

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<style>
{{.BaseCSS}}
{{.UserCSS}}
</style>
</head>
<body>
{{.Logo}}
{{.Body}}
</body>
</html>
`))

// BuildPage assembles the complete HTML document around a rendered body
// fragment, folding in the optional user stylesheet and logo.
func BuildPage(body []byte, opts Options) ([]byte, error) {
	var userCSS string
	if opts.CSSPath != "" {
		css, err := os.ReadFile(opts.CSSPath)
		if err != nil {
			return nil, fmt.Errorf("read stylesheet %q: %w", opts.CSSPath, err)
		}
		userCSS = string(css)
	}

	logo, err := logoElement(opts.LogoPath)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = pageTemplate.Execute(&buf, struct {
		BaseCSS template.CSS
		UserCSS template.CSS
		Logo    template.HTML
		Body    template.HTML
	}{
		BaseCSS: template.CSS(baseCSS),
		UserCSS: template.CSS(userCSS),
		Logo:    template.HTML(logo),
		Body:    template.HTML(body),
	})
	if err != nil {
		return nil, fmt.Errorf("assemble page: %w", err)
	}
	return buf.Bytes(), nil
}

// logoElement embeds the logo image as a base64 data URI so the PDF does
// not depend on the file staying around.
func logoElement(logoPath string) (string, error) {
	if logoPath == "" {
		return "", nil
	}

	data, err := os.ReadFile(logoPath)
	if err != nil {
		return "", fmt.Errorf("read logo %q: %w", logoPath, err)
	}

	ext := strings.TrimPrefix(filepath.Ext(logoPath), ".")
	if ext == "" {
		ext = "png"
	}
	if ext == "jpg" {
		ext = "jpeg"
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	return fmt.Sprintf(`<img src="data:image/%s;base64,%s" class="logo">`, ext, encoded), nil
}
