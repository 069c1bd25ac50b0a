package storage

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestImageKey(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{name: "jpg", filename: "flyer.jpg", want: "event-images/1700000000000.jpg"},
		{name: "jpeg folds to jpg", filename: "photo.JPEG", want: "event-images/1700000000000.jpg"},
		{name: "png", filename: "poster.png", want: "event-images/1700000000000.png"},
		{name: "no extension", filename: "upload", want: "event-images/1700000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ImageKey(now, tt.filename))
		})
	}
}

func TestValidateImageType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		filename    string
		want        bool
	}{
		{name: "jpeg by content type", contentType: "image/jpeg", filename: "whatever.bin", want: true},
		{name: "png by extension", contentType: "", filename: "poster.png", want: true},
		{name: "webp", contentType: "image/webp", filename: "a.webp", want: true},
		{name: "gif", contentType: "", filename: "loop.GIF", want: true},
		{name: "video rejected", contentType: "video/mp4", filename: "clip.mp4", want: false},
		{name: "executable rejected", contentType: "application/octet-stream", filename: "evil.exe", want: false},
		{name: "nothing to go on", contentType: "", filename: "upload", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateImageType(tt.contentType, tt.filename))
		})
	}
}

func TestContentTypeForFilename(t *testing.T) {
	assert.Equal(t, "image/jpeg", ContentTypeForFilename("a.jpg"))
	assert.Equal(t, "image/jpeg", ContentTypeForFilename("a.JPEG"))
	assert.Equal(t, "image/png", ContentTypeForFilename("a.png"))
	assert.Equal(t, "application/octet-stream", ContentTypeForFilename("a.bin"))
}

func TestPublicObjectURL(t *testing.T) {
	s := &S3{cfg: S3Config{Region: "us-east-1", ImagesBucket: "event-images"}}
	url := s.PublicObjectURL("event-images", "event-images/1700000000000.jpg")
	assert.Equal(t, fmt.Sprintf("https://event-images.s3.us-east-1.amazonaws.com/%s", "event-images/1700000000000.jpg"), url)
}
