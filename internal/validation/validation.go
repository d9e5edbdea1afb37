// Package validation guards artifact and store names and recognizes image
// files, so that names read from tables or user input cannot escape the
// archive root.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"
)

const (
	// MaxNameLength is the maximum allowed artifact or store name length.
	MaxNameLength = 255
)

// Common validation errors.
var (
	ErrInvalidName      = errors.New("invalid name")
	ErrNameTooLong      = errors.New("name too long")
	ErrInvalidCharacter = errors.New("invalid character in name")
	ErrEmptyName        = errors.New("name cannot be empty")
)

// ValidateName checks that name is usable as a single path component inside
// a store. Separators, reserved names, null bytes and control characters are
// rejected.
func ValidateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}

	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}

	if name == "." || name == ".." {
		return fmt.Errorf("%w: reserved name", ErrInvalidName)
	}

	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("%w: path separator not allowed", ErrInvalidName)
	}

	if strings.Contains(name, "\x00") {
		return fmt.Errorf("%w: null byte not allowed", ErrInvalidCharacter)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}

	return nil
}

// ImageType is a recognized image encoding.
type ImageType string

const (
	ImageUnknown ImageType = ""
	ImageTIFF    ImageType = "tiff"
	ImageJPEG    ImageType = "jpeg"
	ImagePNG     ImageType = "png"
)

var imageMagic = []struct {
	magic     []byte
	imageType ImageType
}{
	{[]byte{0x49, 0x49, 0x2a, 0x00}, ImageTIFF}, // little-endian "II*\0"
	{[]byte{0x4d, 0x4d, 0x00, 0x2a}, ImageTIFF}, // big-endian "MM\0*"
	{[]byte{0xff, 0xd8, 0xff}, ImageJPEG},
	{[]byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}, ImagePNG},
}

// ImageTypeFromName determines the image type implied by a file extension.
func ImageTypeFromName(name string) ImageType {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".tif", ".tiff":
		return ImageTIFF
	case ".jpg", ".jpeg":
		return ImageJPEG
	case ".png":
		return ImagePNG
	default:
		return ImageUnknown
	}
}

// IsArchiveImage reports whether name is an archive master image. Only TIFF
// masters are part of a book's image list; dotfiles are never images.
func IsArchiveImage(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	return ImageTypeFromName(name) == ImageTIFF
}

// DetectImageType reads the leading bytes of r and reports the image
// encoding they announce.
func DetectImageType(r io.Reader) (ImageType, error) {
	buf := make([]byte, 8)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return ImageUnknown, fmt.Errorf("failed to read image header: %w", err)
	}
	buf = buf[:n]

	for _, sig := range imageMagic {
		if len(buf) >= len(sig.magic) && bytes.Equal(buf[:len(sig.magic)], sig.magic) {
			return sig.imageType, nil
		}
	}
	return ImageUnknown, nil
}

// ValidateImage checks that the content of r matches the encoding implied
// by the name's extension.
func ValidateImage(r io.Reader, name string) error {
	expected := ImageTypeFromName(name)
	if expected == ImageUnknown {
		return fmt.Errorf("%w: %s is not an image name", ErrInvalidName, name)
	}
	detected, err := DetectImageType(r)
	if err != nil {
		return err
	}
	if detected != expected {
		if detected == ImageUnknown {
			return fmt.Errorf("image type mismatch: extension suggests %s but content is unrecognized", expected)
		}
		return fmt.Errorf("image type mismatch: extension suggests %s but content is %s", expected, detected)
	}
	return nil
}
