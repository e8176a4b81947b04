// Package imaging validates uploaded ID photos and normalises their size.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"net/http"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

const (
	DefaultMaxDimension = 1600
	JPEGQuality         = 85
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrCorruptImage      = errors.New("image could not be decoded")
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Result is a validated image ready to be written to the file store.
type Result struct {
	Data   []byte
	MIME   string
	Ext    string
	Width  int
	Height int
}

// Processor checks MIME by sniffing bytes and shrinks oversized JPEG/PNG images.
type Processor struct {
	allowed      map[string]bool
	maxDimension int
}

// NewProcessor builds a processor. Unknown MIME types in allowed are ignored.
func NewProcessor(allowed []string, maxDimension int) *Processor {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	set := make(map[string]bool, len(allowed))
	for _, mime := range allowed {
		if _, ok := extensions[mime]; ok {
			set[mime] = true
		}
	}
	if len(set) == 0 {
		for mime := range extensions {
			set[mime] = true
		}
	}
	return &Processor{allowed: set, maxDimension: maxDimension}
}

// Process validates data and returns the bytes to store.
func (p *Processor) Process(data []byte) (*Result, error) {
	detected := http.DetectContentType(data)
	if !p.allowed[detected] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, detected)
	}

	cfg, err := decodeConfig(detected, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptImage, err)
	}

	result := &Result{Data: data, MIME: detected, Ext: extensions[detected], Width: cfg.Width, Height: cfg.Height}
	if detected != "image/jpeg" && detected != "image/png" {
		return result, nil
	}
	if cfg.Width <= p.maxDimension && cfg.Height <= p.maxDimension {
		return result, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptImage, err)
	}
	scaled := downscale(img, p.maxDimension)

	var buf bytes.Buffer
	if detected == "image/png" {
		err = png.Encode(&buf, scaled)
	} else {
		err = jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: JPEGQuality})
	}
	if err != nil {
		return nil, fmt.Errorf("re-encode image: %w", err)
	}

	bounds := scaled.Bounds()
	result.Data = buf.Bytes()
	result.Width, result.Height = bounds.Dx(), bounds.Dy()
	return result, nil
}

// Extension maps a supported MIME type to the file extension used on disk.
func Extension(mime string) string {
	return extensions[mime]
}

func decodeConfig(mime string, data []byte) (image.Config, error) {
	r := bytes.NewReader(data)
	switch mime {
	case "image/jpeg":
		return jpeg.DecodeConfig(r)
	case "image/png":
		return png.DecodeConfig(r)
	case "image/gif":
		return gif.DecodeConfig(r)
	case "image/webp":
		return webp.DecodeConfig(r)
	}
	return image.Config{}, ErrUnsupportedFormat
}

// downscale fits img inside maxDim x maxDim keeping its aspect ratio.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := maxDim, maxDim
	if w > h {
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}
	newW = max(newW, 1)
	newH = max(newH, 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
