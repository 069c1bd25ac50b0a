package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeTestImage(t *testing.T, width, height int, format imaging.Format) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{R: 120, G: 80, B: 40, A: 255}}, image.Point{}, draw.Src)
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, format))
	return buf.Bytes()
}

func TestNormalizeImageKeepsSmallImages(t *testing.T) {
	raw := encodeTestImage(t, 800, 600, imaging.JPEG)

	out, err := NormalizeImage(bytes.NewReader(raw), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, raw, out, "images within the width limit pass through untouched")
}

func TestNormalizeImageDownscalesWideImages(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		format      imaging.Format
	}{
		{name: "jpeg", contentType: "image/jpeg", format: imaging.JPEG},
		{name: "png", contentType: "image/png", format: imaging.PNG},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := encodeTestImage(t, 3200, 1800, tt.format)

			out, err := NormalizeImage(bytes.NewReader(raw), tt.contentType)
			require.NoError(t, err)

			decoded, err := imaging.Decode(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, MaxImageWidth, decoded.Bounds().Dx())
			assert.Equal(t, 900, decoded.Bounds().Dy(), "aspect ratio preserved")
		})
	}
}

func TestNormalizeImagePassesUnknownFormatsThrough(t *testing.T) {
	raw := []byte("RIFFxxxxWEBPVP8 ")

	out, err := NormalizeImage(bytes.NewReader(raw), "image/webp")
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

func TestNormalizeImageRejectsCorruptData(t *testing.T) {
	_, err := NormalizeImage(bytes.NewReader([]byte("definitely not a jpeg")), "image/jpeg")
	assert.Error(t, err)
}
