// Copyright 2025 The DuoScience Authors
// SPDX-License-Identifier: Apache-2.0

package duoscience

import (
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// DefaultContentType is used for attachments whose media type cannot be
// derived from the file name.
const DefaultContentType = "application/octet-stream"

// FilePayload is a file attachment in the form the task endpoints accept:
// the file name, its media type, and the base64-encoded content.
type FilePayload struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Base64      string `json:"base64"`
}

// Validate ensures all three members are present. The field names are
// reported the way the server reports them, so error messages line up with
// what API users see elsewhere.
func (f *FilePayload) Validate() error {
	var missing []string
	if f.Filename == "" {
		missing = append(missing, "filename")
	}
	if f.ContentType == "" {
		missing = append(missing, "content_type")
	}
	if f.Base64 == "" {
		missing = append(missing, "base64")
	}
	if len(missing) > 0 {
		return fmt.Errorf("invalid file payload, missing keys: [%s]", strings.Join(missing, " "))
	}
	return nil
}

// Bytes decodes the payload content.
func (f *FilePayload) Bytes() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(f.Base64)
	if err != nil {
		return nil, fmt.Errorf("decode file payload %q: %w", f.Filename, err)
	}
	return data, nil
}

// IsImage reports whether the payload is an image attachment.
func (f *FilePayload) IsImage() bool {
	return strings.HasPrefix(f.ContentType, "image/")
}

// NewFilePayload builds a payload from raw content. The media type is
// derived from the file name's extension when contentType is empty.
func NewFilePayload(filename, contentType string, content []byte) *FilePayload {
	if contentType == "" {
		contentType = ContentTypeForFilename(filename)
	}
	return &FilePayload{
		Filename:    filepath.Base(filename),
		ContentType: contentType,
		Base64:      base64.StdEncoding.EncodeToString(content),
	}
}

// LoadFile reads the file at path and converts it into a FilePayload.
func LoadFile(path string) (*FilePayload, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %q: %w", path, err)
	}
	return NewFilePayload(path, "", content), nil
}

// ContentTypeForFilename guesses the media type of a file from its name,
// falling back to DefaultContentType. Parameters such as charset are
// stripped so the value is a bare media type.
func ContentTypeForFilename(filename string) string {
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		return DefaultContentType
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		return mediaType
	}
	return contentType
}
