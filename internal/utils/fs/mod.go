package fs

import (
	"os"
	"path/filepath"
	"strings"
)

// IsValidFile reports whether filename exists and is a regular file
func IsValidFile(filename string) bool {
	fileInfo, err := os.Stat(filename)
	return err == nil && fileInfo.Mode().IsRegular()
}

// FirstPart returns the first segment of a slash or backslash separated
// path, without its extension
func FirstPart(path string) string {
	normalized := strings.Trim(strings.ReplaceAll(path, "\\", "/"), "/")
	if normalized == "" {
		return ""
	}
	first, _, _ := strings.Cut(normalized, "/")
	return strings.TrimSuffix(first, filepath.Ext(first))
}
