package util

import (
	"errors"
	"strings"
	"unicode"
)

const maxFileNameLength = 255

var errInvalidFileName = errors.New("invalid file name")

// SanitizeFileName flattens path separators into underscores and rejects
// traversal, control characters and empty names.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errInvalidFileName
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" || s == "." {
		return "", errInvalidFileName
	}
	if strings.IndexFunc(s, unicode.IsControl) >= 0 {
		return "", errInvalidFileName
	}
	if len(s) > maxFileNameLength {
		s = s[len(s)-maxFileNameLength:]
	}
	return s, nil
}
