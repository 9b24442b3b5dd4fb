// Package htmlsanitize strips dangerous HTML from user-supplied text
// before it is stored. Comment messages keep safe formatting; plain
// fields like workspace and project descriptions lose all markup.
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

// ugc allows the formatting users legitimately paste (paragraphs, bold,
// links) while removing scripts, event handlers, and javascript: URLs.
var ugc = bluemonday.UGCPolicy()

// strict strips all markup, leaving plain text.
var strict = bluemonday.StrictPolicy()

// Sanitize returns s with unsafe HTML removed. Safe formatting tags are
// preserved.
func Sanitize(s string) string {
	return ugc.Sanitize(s)
}

// SanitizeStrict strips all HTML from s, returning plain text only.
// Used for single-line fields (names, titles) where markup is never valid.
func SanitizeStrict(s string) string {
	return strict.Sanitize(s)
}
