package models

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrDataURL is returned for strings that are not base64 data URLs.
var ErrDataURL = errors.New("not a base64 data URL")

// PhotoTypes are the image formats accepted for event photos.
var PhotoTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// DecodeDataURL splits a "data:<type>;base64,<payload>" string.
func DecodeDataURL(s string) (contentType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, ErrDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrDataURL
	}
	contentType, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, ErrDataURL
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrDataURL, err)
	}
	return contentType, data, nil
}

// EncodeDataURL renders data as a base64 data URL.
func EncodeDataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// IsImageDataURL checks that a non-empty string is a decodable base64 data
// URL of an image.
var IsImageDataURL = validation.By(func(v interface{}) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	contentType, _, err := DecodeDataURL(s)
	if err != nil {
		return ErrDataURL
	}
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("must be an image, got %s", contentType)
	}
	return nil
})
