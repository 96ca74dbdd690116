package domain

import (
	"errors"
	"fmt"
	"strings"
)

// MaxImageSize is the largest accepted profile image, inclusive.
const MaxImageSize int64 = 5 * 1024 * 1024

var (
	ErrImageTypeNotAllowed = errors.New("image type not allowed: use JPEG, PNG or WebP")
	ErrImageTooLarge       = fmt.Errorf("image exceeds maximum size of %d bytes", MaxImageSize)
	ErrImageEmpty          = errors.New("image is empty")
)

var allowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// ValidateImage checks a profile image's declared content type and size.
func ValidateImage(contentType string, size int64) error {
	if _, ok := allowedImageTypes[normalizeMediaType(contentType)]; !ok {
		return ErrImageTypeNotAllowed
	}
	if size <= 0 {
		return ErrImageEmpty
	}
	if size > MaxImageSize {
		return ErrImageTooLarge
	}
	return nil
}

// ImageExtension returns the file extension for an allowed image type.
func ImageExtension(contentType string) (string, bool) {
	ext, ok := allowedImageTypes[normalizeMediaType(contentType)]
	return ext, ok
}

// normalizeMediaType drops parameters ("; charset=...") and lower-cases.
func normalizeMediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}
