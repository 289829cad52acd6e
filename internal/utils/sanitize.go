package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// CleanText strips all HTML from user supplied plain-text fields
// (captions, comments, bios) before they are stored.
func CleanText(s string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}
