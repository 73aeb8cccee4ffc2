package utils

import (
	"regexp"
	"strings"
)

var (
	slugInvalid    = regexp.MustCompile(`[^\w\s-]`)
	slugWhitespace = regexp.MustCompile(`\s+`)
	slugHyphens    = regexp.MustCompile(`-+`)
)

// GenerateSlug turns a display name into a URL slug: lowercase ASCII word
// characters separated by single hyphens. Letters outside ASCII are dropped,
// so a name written only in Bengali yields "".
func GenerateSlug(name string) string {
	s := strings.ToLower(name)
	s = slugInvalid.ReplaceAllString(s, "")
	s = slugWhitespace.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "- ")
}
