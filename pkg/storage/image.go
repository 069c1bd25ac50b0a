package storage

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

// MaxImageWidth is the widest an event image is stored at; wider uploads are
// downscaled before hitting S3 so listing pages never serve multi-megapixel files.
const MaxImageWidth = 1600

// NormalizeImage decodes a JPEG or PNG upload and downscales it to at most
// MaxImageWidth wide, preserving aspect ratio. Formats imaging cannot
// re-encode losslessly (webp, gif) are passed through untouched. Returns the
// bytes to store and their length.
func NormalizeImage(r io.Reader, contentType string) ([]byte, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	var format imaging.Format
	switch contentType {
	case "image/jpeg", "image/jpg":
		format = imaging.JPEG
	case "image/png":
		format = imaging.PNG
	default:
		return raw, nil
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if img.Bounds().Dx() <= MaxImageWidth {
		return raw, nil
	}

	resized := imaging.Resize(img, MaxImageWidth, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
