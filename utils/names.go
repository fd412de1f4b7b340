package utils

import (
	"regexp"
	"strings"
)

var (
	unsafeChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	whitespace  = regexp.MustCompile(`\s+`)
	// Uploaded image base names keep ASCII word characters and the Arabic block
	imageNameChars = regexp.MustCompile(`[^a-zA-Z0-9_\x{0600}-\x{06FF}-]`)
)

// SanitizeFilename strips characters that are unsafe in file names and
// collapses whitespace runs to a single space.
func SanitizeFilename(name string) string {
	name = unsafeChars.ReplaceAllString(name, "_")
	name = whitespace.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// SafeBrandName converts a brand name into a filesystem-safe token used in
// generated file and folder names.
func SafeBrandName(name string) string {
	safe := SanitizeFilename(name)
	safe = strings.ReplaceAll(safe, " ", "_")
	if safe == "" {
		return "brand"
	}
	return safe
}

// SanitizeImageBaseName keeps letters, digits, underscore, hyphen and Arabic
// characters; everything else becomes an underscore.
func SanitizeImageBaseName(base string) string {
	return imageNameChars.ReplaceAllString(base, "_")
}
