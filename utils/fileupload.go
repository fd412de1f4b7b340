package utils

import (
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	// Decoders registered for dimension probing
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
)

const (
	// MaxUploadSize is 20MB in bytes
	MaxUploadSize = 20 * 1024 * 1024
	// MinProductImageDim is the minimum accepted product image edge in pixels
	MinProductImageDim = 1000
)

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// allowedDocumentTypes are the MIME types accepted for business documents
var allowedDocumentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
}

// ValidateImageUpload checks size and MIME type for logo/product uploads.
// Any image/* content type is accepted; dimension policy is applied after
// the file is written.
func ValidateImageUpload(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxUploadSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File too large. Maximum size is %d MB", MaxUploadSize/(1024*1024)),
		}
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return &FileUploadError{
			Code:    "INVALID_FILE_TYPE",
			Message: "Only image files are allowed",
		}
	}
	return nil
}

// ValidateDocumentUpload checks size and MIME type for business documents
func ValidateDocumentUpload(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxUploadSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File too large. Maximum size is %d MB", MaxUploadSize/(1024*1024)),
		}
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !allowedDocumentTypes[contentType] {
		return &FileUploadError{
			Code:    "INVALID_FILE_TYPE",
			Message: "Only PDF, JPG, and PNG files are allowed",
		}
	}
	return nil
}

// SaveUploadedFile writes an uploaded file to destPath. The content goes to
// a temp file in the destination directory first and is renamed into place
// only after a successful write and sync, so no partially-written file is
// ever visible and failures leave nothing behind.
func SaveUploadedFile(fileHeader *multipart.FileHeader, destPath string) (err error) {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err = io.Copy(tmp, src); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err = os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

// ProbeImageDimensions reads the image header and returns width and height.
// Returns (0, 0) with a nil error for files whose format cannot be decoded,
// matching the advisory nature of dimension checks.
func ProbeImageDimensions(path string) (width, height int) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

// DimensionWarning returns an advisory message when either dimension is
// below the recommended minimum, empty string otherwise. An unprobeable
// image gets its own message rather than a misleading 0x0 resolution one.
func DimensionWarning(width, height int) string {
	if width == 0 && height == 0 {
		return "Could not read image dimensions"
	}
	if width < MinProductImageDim || height < MinProductImageDim {
		return fmt.Sprintf("Image resolution (%dx%d) is below recommended %dx%d",
			width, height, MinProductImageDim, MinProductImageDim)
	}
	return ""
}

// UniqueImageName builds a collision-safe stored name for a product image,
// keeping a sanitized version of the original base name for traceability.
func UniqueImageName(originalName string) string {
	ext := filepath.Ext(originalName)
	base := strings.TrimSuffix(filepath.Base(originalName), ext)
	return fmt.Sprintf("%s_%s%s", SanitizeImageBaseName(base), uuid.NewString()[:8], ext)
}
