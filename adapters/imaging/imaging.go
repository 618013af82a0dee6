// Package imaging shrinks oversized photos before they are stored.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

const (
	// MaxDimension is the largest width or height kept in storage.
	MaxDimension = 1600
	JPEGQuality  = 85
)

// Downscale resizes JPEG and PNG images whose longest side exceeds MaxDimension,
// keeping the input format. Other types, and images already small enough, are returned unchanged.
func Downscale(data []byte, mimeType string) ([]byte, error) {
	const op = "Downscale"

	var decode func(*bytes.Reader) (image.Image, error)
	switch mimeType {
	case "image/jpeg":
		decode = func(r *bytes.Reader) (image.Image, error) { return jpeg.Decode(r) }
	case "image/png":
		decode = func(r *bytes.Reader) (image.Image, error) { return png.Decode(r) }
	default:
		return data, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to read image header, err=%w", op, err)
	}
	if cfg.Width <= MaxDimension && cfg.Height <= MaxDimension {
		return data, nil
	}

	img, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to decode image, err=%w", op, err)
	}
	scaled := scale(img, MaxDimension)

	var buf bytes.Buffer
	if mimeType == "image/png" {
		err = png.Encode(&buf, scaled)
	} else {
		err = jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: JPEGQuality})
	}
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to encode image, err=%w", op, err)
	}
	return buf.Bytes(), nil
}

// scale fits img inside a maxDim square, preserving the aspect ratio.
func scale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	newW, newH := maxDim, maxDim
	if w > h {
		newH = max(1, int(float64(h)*float64(maxDim)/float64(w)))
	} else {
		newW = max(1, int(float64(w)*float64(maxDim)/float64(h)))
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
