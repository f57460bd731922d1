// Copyright 2025 The DuoScience Authors
// SPDX-License-Identifier: Apache-2.0

// Package imaging shrinks image attachments before upload. Large photo
// uploads are the usual cause of 413 responses from the task endpoints,
// so the client downscales and re-encodes images ahead of base64 encoding.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // register the GIF decoder for image.Decode
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

// Defaults for compression options.
const (
	DefaultMaxDim  = 1280
	DefaultQuality = 80
)

// Options control how an image is compressed.
type Options struct {
	// MaxDim is the maximum width/height after resizing. Zero means
	// DefaultMaxDim.
	MaxDim int

	// Quality is the JPEG quality (1-95). Zero means DefaultQuality.
	Quality int

	// ConvertToJPEG re-encodes PNG and GIF input as JPEG, which is almost
	// always smaller for photographic content. Transparency is lost.
	ConvertToJPEG bool
}

func (o Options) withDefaults() Options {
	if o.MaxDim <= 0 {
		o.MaxDim = DefaultMaxDim
	}
	if o.Quality <= 0 {
		o.Quality = DefaultQuality
	}
	if o.Quality > 95 {
		o.Quality = 95
	}
	return o
}

// Compress decodes data as an image, downscales it so neither side exceeds
// opts.MaxDim, and re-encodes it. The returned format is "jpeg" or "png".
// Data that is not a decodable image is an error; callers treat that as
// "send the original".
func Compress(data []byte, opts Options) ([]byte, string, error) {
	opts = opts.withDefaults()

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}

	src = resize(src, opts.MaxDim)

	outFormat := "jpeg"
	if !opts.ConvertToJPEG && format != "jpeg" {
		outFormat = "png"
	}

	var buf bytes.Buffer
	switch outFormat {
	case "png":
		if err := png.Encode(&buf, src); err != nil {
			return nil, "", fmt.Errorf("encode png: %w", err)
		}
	default:
		if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: opts.Quality}); err != nil {
			return nil, "", fmt.Errorf("encode jpeg: %w", err)
		}
	}

	return buf.Bytes(), outFormat, nil
}

// resize scales src down so that its longest side is at most maxDim.
// Images already within bounds are returned unchanged.
func resize(src image.Image, maxDim int) image.Image {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= maxDim && height <= maxDim {
		return src
	}

	var dstW, dstH int
	if width >= height {
		dstW = maxDim
		dstH = height * maxDim / width
	} else {
		dstH = maxDim
		dstW = width * maxDim / height
	}
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}
