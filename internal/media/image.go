// Package media turns uploaded images into small WebP files and stores them.
package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/chai2010/webp"
	"golang.org/x/image/draw"

	"github.com/BruksfildServices01/booking-api/internal/httperr"
)

const (
	AvatarMaxSide = 256
	MaxUploadSize = 5 << 20
	webpQuality   = 80
)

// Avatar decodes r, fits it inside a maxSide square keeping the aspect
// ratio and encodes it as WebP.
func Avatar(r io.Reader, maxSide int) ([]byte, error) {
	src, _, err := image.Decode(io.LimitReader(r, MaxUploadSize))
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_image")
	}

	dst := fit(src, maxSide)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, dst, &webp.Options{Quality: webpQuality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

func fit(src image.Image, maxSide int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxSide && h <= maxSide {
		return src
	}

	if w >= h {
		h = h * maxSide / w
		w = maxSide
	} else {
		w = w * maxSide / h
		h = maxSide
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
