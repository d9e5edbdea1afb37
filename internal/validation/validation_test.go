package validation

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"plain artifact", "LudwigXV7.images.csv", nil},
		{"missing marker", "*LudwigXV7.001r.tif", nil},
		{"empty", "", ErrEmptyName},
		{"dot", ".", ErrInvalidName},
		{"dotdot", "..", ErrInvalidName},
		{"slash", "a/b", ErrInvalidName},
		{"backslash", "a\\b", ErrInvalidName},
		{"null byte", "a\x00b", ErrInvalidCharacter},
		{"control", "a\nb", ErrInvalidCharacter},
		{"too long", strings.Repeat("a", MaxNameLength+1), ErrNameTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateName(%q) = %v, want nil", tt.input, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateName(%q) = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestImageTypeFromName(t *testing.T) {
	tests := []struct {
		input string
		want  ImageType
	}{
		{"B.001r.tif", ImageTIFF},
		{"B.001r.TIFF", ImageTIFF},
		{"B.001r.jpg", ImageJPEG},
		{"B.001r.png", ImagePNG},
		{"B.images.csv", ImageUnknown},
		{"noext", ImageUnknown},
	}
	for _, tt := range tests {
		if got := ImageTypeFromName(tt.input); got != tt.want {
			t.Errorf("ImageTypeFromName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIsArchiveImage(t *testing.T) {
	if !IsArchiveImage("B.001r.tif") {
		t.Error("tif should be an archive image")
	}
	if IsArchiveImage(".B.001r.tif") {
		t.Error("dotfiles are never archive images")
	}
	if IsArchiveImage("B.001r.jpg") {
		t.Error("jpeg derivatives are not archive masters")
	}
}

func TestValidateImage(t *testing.T) {
	tiff := []byte{0x49, 0x49, 0x2a, 0x00, 0x08, 0x00, 0x00, 0x00}
	png := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

	if err := ValidateImage(bytes.NewReader(tiff), "B.001r.tif"); err != nil {
		t.Errorf("valid tiff rejected: %v", err)
	}
	if err := ValidateImage(bytes.NewReader(png), "B.001r.tif"); err == nil {
		t.Error("png content with tif name should fail")
	}
	if err := ValidateImage(bytes.NewReader([]byte("hello")), "B.001r.tif"); err == nil {
		t.Error("text content with tif name should fail")
	}
	if err := ValidateImage(bytes.NewReader(tiff), "B.images.csv"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("non-image name error = %v, want ErrInvalidName", err)
	}
}

func TestDetectImageTypeShortInput(t *testing.T) {
	got, err := DetectImageType(bytes.NewReader([]byte{0xff}))
	if err != nil {
		t.Fatalf("DetectImageType() error = %v", err)
	}
	if got != ImageUnknown {
		t.Errorf("DetectImageType() = %q, want unknown", got)
	}
}
