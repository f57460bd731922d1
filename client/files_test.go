// Copyright 2025 The DuoScience Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"bytes"
	"context"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	duoscience "github.com/duoscience/duoscience-go"
)

// largePNG encodes a PNG big enough that JPEG re-encoding shrinks it.
func largePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 13), B: uint8(x ^ y), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}
	return buf.Bytes()
}

func TestCompressFile(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:1")
	defer c.Close()

	original := duoscience.NewFilePayload("photo.png", "image/png", largePNG(t, 2000, 1500))
	compressed := c.compressFile(context.Background(), original)

	if compressed == original {
		t.Fatal("Expected a compressed payload, got the original")
	}
	if compressed.ContentType != "image/jpeg" {
		t.Errorf("Expected image/jpeg, got %s", compressed.ContentType)
	}
	if compressed.Filename != "photo.jpg" {
		t.Errorf("Expected photo.jpg, got %s", compressed.Filename)
	}
	if len(compressed.Base64) >= len(original.Base64) {
		t.Errorf("Compressed payload (%d) should be smaller than the original (%d)",
			len(compressed.Base64), len(original.Base64))
	}

	data, err := compressed.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Compressed payload is not an image: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("Expected jpeg, got %s", format)
	}
	if cfg.Width > 1280 || cfg.Height > 1280 {
		t.Errorf("Image not resized: %dx%d", cfg.Width, cfg.Height)
	}
}

func TestCompressFileSkipsNonImages(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:1")
	defer c.Close()

	pdf := duoscience.NewFilePayload("paper.pdf", "application/pdf", []byte("%PDF-1.4"))
	if got := c.compressFile(context.Background(), pdf); got != pdf {
		t.Error("Non-image payloads must pass through untouched")
	}
}

func TestCompressFileBestEffort(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:1")
	defer c.Close()

	// An attachment that claims to be an image but is not decodes to an
	// error; the original payload is sent as is.
	broken := duoscience.NewFilePayload("broken.png", "image/png", []byte("not an image"))
	if got := c.compressFile(context.Background(), broken); got != broken {
		t.Error("Undecodable images must pass through untouched")
	}
}

func TestCompressFileDisabled(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:1", WithoutImageCompression())
	defer c.Close()

	img := duoscience.NewFilePayload("photo.png", "image/png", largePNG(t, 2000, 1500))
	if got := c.compressFile(context.Background(), img); got != img {
		t.Error("Disabled compression must pass payloads through untouched")
	}
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txt, []byte("some notes"), 0o644); err != nil {
		t.Fatal(err)
	}
	img := filepath.Join(dir, "figure.png")
	if err := os.WriteFile(img, largePNG(t, 1600, 1600), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewHTTPClient("http://127.0.0.1:1")
	defer c.Close()

	files, err := c.LoadFiles(context.Background(), txt, img)
	if err != nil {
		t.Fatalf("LoadFiles failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("Expected 2 payloads, got %d", len(files))
	}
	if files[0].Filename != "notes.txt" || files[0].ContentType != "text/plain" {
		t.Errorf("Unexpected text payload %+v", files[0])
	}
	if files[1].ContentType != "image/jpeg" {
		t.Errorf("Image attachment should be compressed to JPEG, got %s", files[1].ContentType)
	}
}

func TestLoadFilesTooMany(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:1")
	defer c.Close()

	paths := make([]string, duoscience.MaxFilesPerRequest+1)
	for i := range paths {
		paths[i] = "x.txt"
	}
	if _, err := c.LoadFiles(context.Background(), paths...); !IsValidationError(err) {
		t.Errorf("Expected a validation error, got %v", err)
	}
}

func TestRenameForFormat(t *testing.T) {
	tests := []struct {
		filename, format, want string
	}{
		{"photo.png", "jpeg", "photo.jpg"},
		{"photo.jpg", "jpeg", "photo.jpg"},
		{"archive.tar.gz", "jpeg", "archive.tar.jpg"},
		{"noext", "jpeg", "noext.jpg"},
		{"photo.png", "png", "photo.png"},
	}
	for _, tt := range tests {
		if got := renameForFormat(tt.filename, tt.format); got != tt.want {
			t.Errorf("renameForFormat(%q, %q) = %q, want %q", tt.filename, tt.format, got, tt.want)
		}
	}
}

func TestRenameKeepsHiddenFiles(t *testing.T) {
	if got := renameForFormat(".hidden", "jpeg"); !strings.HasSuffix(got, ".jpg") {
		t.Errorf("Expected a .jpg suffix, got %q", got)
	}
}
