package avatar

import (
	"bytes"
	"errors"
	"testing"

	"github.com/mmcdole/moviedb/internal/domain"
)

// smallest valid PNG: signature + IHDR + IEND
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4e,
	0x44, 0xae, 0x42, 0x60, 0x82,
}

func TestValidate(t *testing.T) {
	mime, err := Validate(pngBytes)
	if err != nil {
		t.Fatalf("Validate(png) error = %v", err)
	}
	if mime != "image/png" {
		t.Errorf("mime = %q, want image/png", mime)
	}

	if _, err := Validate([]byte("just some text")); !errors.Is(err, domain.ErrInvalidAvatar) {
		t.Errorf("Validate(text) error = %v, want ErrInvalidAvatar", err)
	}

	big := append(append([]byte{}, pngBytes...), make([]byte, MaxSize)...)
	if _, err := Validate(big); !errors.Is(err, domain.ErrInvalidAvatar) {
		t.Errorf("Validate(oversized) error = %v, want ErrInvalidAvatar", err)
	}

	if _, err := Validate(nil); !errors.Is(err, domain.ErrInvalidAvatar) {
		t.Errorf("Validate(nil) error = %v, want ErrInvalidAvatar", err)
	}
}

func TestDataURLRoundTrip(t *testing.T) {
	encoded := EncodeDataURL(domain.Avatar{Data: pngBytes, MimeType: "image/png"})
	if !bytes.HasPrefix([]byte(encoded), []byte("data:image/png;base64,")) {
		t.Fatalf("EncodeDataURL() = %q", encoded[:30])
	}

	decoded, err := DecodeDataURL(encoded)
	if err != nil {
		t.Fatalf("DecodeDataURL() error = %v", err)
	}
	if decoded.MimeType != "image/png" {
		t.Errorf("MimeType = %q", decoded.MimeType)
	}
	if !bytes.Equal(decoded.Data, pngBytes) {
		t.Error("decoded bytes differ")
	}
}

func TestEncodeDefaultsToJPEG(t *testing.T) {
	encoded := EncodeDataURL(domain.Avatar{Data: []byte{1, 2, 3}})
	if !bytes.HasPrefix([]byte(encoded), []byte("data:image/jpeg;base64,")) {
		t.Errorf("EncodeDataURL() = %q, want image/jpeg prefix", encoded)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := DecodeDataURL("not a data url"); !errors.Is(err, domain.ErrInvalidAvatar) {
		t.Errorf("DecodeDataURL() error = %v, want ErrInvalidAvatar", err)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		owner string
		mime  string
		want  string
	}{
		{"jane.doe@example.com", "image/png", "jane-doe.png"},
		{"", "image/png", "avatar.png"},
		{"Bob Smith", "", "bob-smith.jpg"},
	}
	for _, tt := range tests {
		got := FileName(tt.owner, domain.Avatar{MimeType: tt.mime})
		if got != tt.want {
			t.Errorf("FileName(%q, %q) = %q, want %q", tt.owner, tt.mime, got, tt.want)
		}
	}
}
