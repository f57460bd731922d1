// Copyright 2025 The DuoScience Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strings"

	duoscience "github.com/duoscience/duoscience-go"
	"github.com/duoscience/duoscience-go/internal/imaging"
)

// LoadFiles reads the files at the given paths into attachment payloads,
// applying the client's image compression settings. Use duoscience.LoadFile
// directly to bypass compression.
func (c *HTTPClient) LoadFiles(ctx context.Context, paths ...string) ([]*duoscience.FilePayload, error) {
	if len(paths) > duoscience.MaxFilesPerRequest {
		return nil, NewValidationError("too many files", nil)
	}

	files := make([]*duoscience.FilePayload, 0, len(paths))
	for _, path := range paths {
		file, err := duoscience.LoadFile(path)
		if err != nil {
			return nil, NewValidationError("loading file", err)
		}
		files = append(files, c.compressFile(ctx, file))
	}
	return files, nil
}

// prepareFiles applies image compression to the attachments of a request.
// Compression is best effort: a payload that cannot be compressed is sent
// as is.
func (c *HTTPClient) prepareFiles(ctx context.Context, files []*duoscience.FilePayload) []*duoscience.FilePayload {
	if len(files) == 0 || c.options.Compression.Disabled {
		return files
	}

	prepared := make([]*duoscience.FilePayload, len(files))
	for i, file := range files {
		prepared[i] = c.compressFile(ctx, file)
	}
	return prepared
}

// compressFile shrinks an image payload according to the client's
// compression settings. Non-image payloads and failures return the input
// unchanged.
func (c *HTTPClient) compressFile(ctx context.Context, file *duoscience.FilePayload) *duoscience.FilePayload {
	if c.options.Compression.Disabled || file == nil || !file.IsImage() {
		return file
	}

	data, err := file.Bytes()
	if err != nil {
		c.logger.WarnContext(ctx, "image compression skipped: undecodable payload",
			slog.String("filename", file.Filename), slog.Any("error", err))
		return file
	}

	compressed, format, err := imaging.Compress(data, imaging.Options{
		MaxDim:        c.options.Compression.MaxDim,
		Quality:       c.options.Compression.Quality,
		ConvertToJPEG: c.options.Compression.ConvertToJPEG,
	})
	if err != nil {
		c.logger.WarnContext(ctx, "image compression failed, using original",
			slog.String("filename", file.Filename), slog.Any("error", err))
		return file
	}
	if len(compressed) >= len(data) {
		return file
	}

	c.logger.DebugContext(ctx, "compressed image attachment",
		slog.String("filename", file.Filename),
		slog.Int("original_bytes", len(data)),
		slog.Int("compressed_bytes", len(compressed)))

	return &duoscience.FilePayload{
		Filename:    renameForFormat(file.Filename, format),
		ContentType: "image/" + format,
		Base64:      base64.StdEncoding.EncodeToString(compressed),
	}
}

// renameForFormat swaps the file extension when re-encoding changed the
// image format.
func renameForFormat(filename, format string) string {
	if format != "jpeg" {
		return filename
	}
	if i := strings.LastIndex(filename, "."); i > 0 {
		filename = filename[:i]
	}
	return filename + ".jpg"
}
