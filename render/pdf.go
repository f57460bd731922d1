// Copyright 2025 The DuoScience Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	wkhtmltopdf "github.com/SebastiaanKlippert/go-wkhtmltopdf"
)

// Convert reads markdown from src, renders it, and writes the PDF to w.
func Convert(ctx context.Context, src io.Reader, w io.Writer, opts Options) error {
	source, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("read markdown: %w", err)
	}

	body, err := MarkdownToHTML(source, opts)
	if err != nil {
		return err
	}

	page, err := BuildPage(body, opts)
	if err != nil {
		return err
	}

	return htmlToPDF(ctx, page, w, opts)
}

// ConvertFile converts the markdown file at mdPath into a PDF at pdfPath.
func ConvertFile(ctx context.Context, mdPath, pdfPath string, opts Options) error {
	src, err := os.Open(mdPath)
	if err != nil {
		return fmt.Errorf("open markdown file %q: %w", mdPath, err)
	}
	defer src.Close()

	out, err := os.Create(pdfPath)
	if err != nil {
		return fmt.Errorf("create pdf file %q: %w", pdfPath, err)
	}

	if err := Convert(ctx, src, out, opts); err != nil {
		out.Close()
		os.Remove(pdfPath)
		return err
	}
	return out.Close()
}

// htmlToPDF drives wkhtmltopdf over the assembled page.
func htmlToPDF(ctx context.Context, page []byte, w io.Writer, opts Options) error {
	if opts.WkhtmltopdfPath != "" {
		wkhtmltopdf.SetPath(opts.WkhtmltopdfPath)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return fmt.Errorf("initialize wkhtmltopdf: %w", err)
	}
	pdfg.SetOutput(w)

	reader := wkhtmltopdf.NewPageReader(bytes.NewReader(page))
	reader.Encoding.Set("UTF-8")
	reader.EnableLocalFileAccess.Set(true)
	pdfg.AddPage(reader)

	if err := pdfg.CreateContext(ctx); err != nil {
		return fmt.Errorf("generate pdf: %w", err)
	}
	return nil
}
