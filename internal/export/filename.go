package export

import (
	"regexp"
	"strings"
)

var (
	nonWordChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)
	underscores  = regexp.MustCompile(`_+`)
)

// SanitizeFilename reduces a label to alphanumerics plus `.`, `-` and
// `_`: brackets are stripped, slashes and spaces become underscores,
// anything else collapses to a single underscore. The same rule labels
// cache keys and log fields, so exported filenames and diagnostics
// always agree.
func SanitizeFilename(name string) string {
	s := strings.NewReplacer("[", "", "]", "").Replace(name)
	s = strings.NewReplacer("/", "_", " ", "_").Replace(s)
	s = nonWordChars.ReplaceAllString(s, "_")
	s = underscores.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
