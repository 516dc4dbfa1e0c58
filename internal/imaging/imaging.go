// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging prepares uploaded cover images for the public bucket.
// Covers wider than the article column are downscaled; smaller ones and
// animated GIFs are stored as uploaded so they never get upscaled.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	_ "image/gif"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// MaxCoverWidth is the widest cover the public layout displays.
	MaxCoverWidth = 1600

	// JPEGQuality is used when a resized cover is re-encoded as JPEG.
	JPEGQuality = 85
)

// ErrUndecodable is returned for data that is not a supported image.
var ErrUndecodable = errors.New("imaging: cannot decode image")

// Cover is a cover image ready for upload.
type Cover struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
	Resized     bool
}

// FitCover returns original unchanged when it is at most maxWidth pixels
// wide, otherwise a copy scaled down to maxWidth with the aspect ratio
// kept. PNG stays PNG to keep transparency; everything else becomes JPEG
// since WebP cannot be encoded here.
func FitCover(original []byte, maxWidth int) (*Cover, error) {
	if maxWidth <= 0 {
		maxWidth = MaxCoverWidth
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(original))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	if cfg.Width <= maxWidth || format == "gif" {
		return &Cover{
			Data:        original,
			ContentType: "image/" + format,
			Width:       cfg.Width,
			Height:      cfg.Height,
		}, nil
	}

	src, _, err := image.Decode(bytes.NewReader(original))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	height := cfg.Height * maxWidth / cfg.Width
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	contentType := "image/jpeg"
	if format == "png" {
		contentType = "image/png"
		err = png.Encode(&buf, dst)
	} else {
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality})
	}
	if err != nil {
		return nil, fmt.Errorf("imaging: encode %s: %w", contentType, err)
	}

	return &Cover{
		Data:        buf.Bytes(),
		ContentType: contentType,
		Width:       maxWidth,
		Height:      height,
		Resized:     true,
	}, nil
}
