package utils

import (
	"regexp"
	"strings"
)

var unsafePathChars = regexp.MustCompile(`[/\\:*?"<>|\x00-\x1f]+`)

// SanitizeDirName turns a catalog title into a single path element.
// Letters of any script and spaces are kept.
func SanitizeDirName(name string) string {
	clean := strings.TrimSpace(unsafePathChars.ReplaceAllString(name, "_"))
	clean = strings.Trim(clean, ".")
	if clean == "" {
		return "untitled"
	}
	return clean
}
