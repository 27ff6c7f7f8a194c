package utils

import (
	"path/filepath"
	"strings"
	"unicode"
)

// SanitizeString trims whitespace and removes control characters.
func SanitizeString(input string) string {
	trimmed := strings.TrimSpace(input)

	var result strings.Builder
	for _, r := range trimmed {
		if unicode.IsPrint(r) {
			result.WriteRune(r)
		}
	}

	return result.String()
}

// SanitizeNote sanitizes multi-line note input, keeping newlines and tabs.
func SanitizeNote(input string) string {
	trimmed := strings.TrimSpace(input)

	var result strings.Builder
	for _, r := range trimmed {
		if unicode.IsPrint(r) || r == '\n' || r == '\t' {
			result.WriteRune(r)
		}
	}

	return result.String()
}

// SanitizeFilename strips any path component from an uploaded file name and
// removes characters that would be unsafe to echo back.
func SanitizeFilename(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}

	var result strings.Builder
	for _, r := range base {
		if unicode.IsPrint(r) && r != '\\' && r != '/' {
			result.WriteRune(r)
		}
	}

	return result.String()
}
