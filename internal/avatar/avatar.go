// Package avatar converts profile images between raw bytes and the base64
// data URLs exchanged with the proxy, and enforces the upload limits.
package avatar

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gosimple/slug"
	"github.com/vincent-petithory/dataurl"

	"github.com/mmcdole/moviedb/internal/domain"
)

// MaxSize is the largest accepted avatar in bytes
const MaxSize = 250 * 1024

// DefaultMimeType is used when a stored avatar has no recorded type
const DefaultMimeType = "image/jpeg"

// Sniff detects the MIME type from the file contents
func Sniff(data []byte) string {
	return mimetype.Detect(data).String()
}

// Validate checks that data is an image no larger than MaxSize and returns its MIME type
func Validate(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", domain.ErrInvalidAvatar)
	}
	if len(data) > MaxSize {
		return "", fmt.Errorf("%w: %d bytes exceeds the %d KB limit", domain.ErrInvalidAvatar, len(data), MaxSize/1024)
	}
	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", fmt.Errorf("%w: %s is not an image", domain.ErrInvalidAvatar, mime.String())
	}
	return mime.String(), nil
}

// New validates raw image bytes and wraps them as an Avatar
func New(data []byte) (domain.Avatar, error) {
	mime, err := Validate(data)
	if err != nil {
		return domain.Avatar{}, err
	}
	return domain.Avatar{Data: data, MimeType: mime}, nil
}

// EncodeDataURL renders an avatar as data:<mime>;base64,<data>
func EncodeDataURL(a domain.Avatar) string {
	mime, _, _ := strings.Cut(a.MimeType, ";")
	mime = strings.TrimSpace(mime)
	if strings.Count(mime, "/") != 1 {
		mime = DefaultMimeType
	}
	return dataurl.New(a.Data, mime).String()
}

// DecodeDataURL parses a base64 data URL, taking the MIME type from its header
func DecodeDataURL(s string) (domain.Avatar, error) {
	u, err := dataurl.DecodeString(s)
	if err != nil {
		return domain.Avatar{}, fmt.Errorf("%w: %v", domain.ErrInvalidAvatar, err)
	}
	return domain.Avatar{Data: u.Data, MimeType: u.ContentType()}, nil
}

// FileName suggests a file name for a downloaded avatar, e.g. "jane-doe.png"
// for jane.doe@example.com
func FileName(owner string, a domain.Avatar) string {
	if local, _, ok := strings.Cut(owner, "@"); ok {
		owner = local
	}
	base := slug.Make(owner)
	if base == "" {
		base = "avatar"
	}
	ext := ".jpg"
	if mt := mimetype.Lookup(a.MimeType); mt != nil && mt.Extension() != "" {
		ext = mt.Extension()
	}
	return base + ext
}
