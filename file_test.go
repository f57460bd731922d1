// Copyright 2025 The DuoScience Authors
// SPDX-License-Identifier: Apache-2.0

package duoscience

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFilePayloadValidate(t *testing.T) {
	valid := NewFilePayload("report.pdf", "", []byte("%PDF-1.4"))
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() of complete payload failed: %v", err)
	}

	missing := &FilePayload{ContentType: "text/plain"}
	err := missing.Validate()
	if err == nil {
		t.Fatal("Validate() with missing members should fail")
	}
	want := "invalid file payload, missing keys: [filename base64]"
	if err.Error() != want {
		t.Errorf("Validate() error = %q, want %q", err, want)
	}
}

func TestNewFilePayload(t *testing.T) {
	content := []byte("hello world")
	payload := NewFilePayload("/tmp/notes/hello.txt", "", content)

	if payload.Filename != "hello.txt" {
		t.Errorf("Expected base name hello.txt, got %s", payload.Filename)
	}
	if payload.ContentType != "text/plain" {
		t.Errorf("Expected text/plain, got %s", payload.ContentType)
	}

	decoded, err := payload.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	if !bytes.Equal(decoded, content) {
		t.Errorf("Round-tripped content mismatch: got %q", decoded)
	}
}

func TestNewFilePayloadExplicitType(t *testing.T) {
	payload := NewFilePayload("data.bin", "application/x-custom", []byte{1, 2, 3})
	if payload.ContentType != "application/x-custom" {
		t.Errorf("Explicit content type should win, got %s", payload.ContentType)
	}
}

func TestFilePayloadBytesInvalid(t *testing.T) {
	payload := &FilePayload{Filename: "x", ContentType: "text/plain", Base64: "!!not base64!!"}
	if _, err := payload.Bytes(); err == nil {
		t.Error("Bytes() of invalid base64 should fail")
	}
}

func TestFilePayloadIsImage(t *testing.T) {
	if !(&FilePayload{ContentType: "image/png"}).IsImage() {
		t.Error("image/png is an image")
	}
	if (&FilePayload{ContentType: "application/pdf"}).IsImage() {
		t.Error("application/pdf is not an image")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "attachment.csv")
	if err := os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	payload, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if payload.Filename != "attachment.csv" {
		t.Errorf("Expected attachment.csv, got %s", payload.Filename)
	}
	if err := payload.Validate(); err != nil {
		t.Errorf("Loaded payload should validate: %v", err)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("LoadFile of a missing file should fail")
	}
}

func TestContentTypeForFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"report.pdf", "application/pdf"},
		{"photo.png", "image/png"},
		{"photo.jpg", "image/jpeg"},
		{"weird.zzz-unknown", DefaultContentType},
		{"no-extension", DefaultContentType},
	}
	for _, tt := range tests {
		got := ContentTypeForFilename(tt.filename)
		if got != tt.want {
			t.Errorf("ContentTypeForFilename(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestContentTypeForFilenameStripsParams(t *testing.T) {
	// mime.TypeByExtension returns "text/plain; charset=utf-8" for .txt on
	// most platforms; the payload wants the bare media type.
	got := ContentTypeForFilename("notes.txt")
	if strings.Contains(got, ";") {
		t.Errorf("Media type parameters should be stripped, got %q", got)
	}
}
