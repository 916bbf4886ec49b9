/*
Responsibilities
- Strip markup out of harvested text values
- Decode HTML entities
- Trim surrounding whitespace

Property values arrive from untrusted pages (titles, descriptions, meta
content) and may carry embedded tags or double-encoded entities. This
stage reduces them to plain text before they enter a source map.
*/
package sanitizer

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// The strict policy drops every element and attribute, leaving text
// content only. Shared: bluemonday policies are safe for concurrent use.
var strictPolicy = bluemonday.StrictPolicy()

// StripTags removes all HTML markup from value, keeping text content.
func StripTags(value string) string {
	return strictPolicy.Sanitize(value)
}

// CleanText reduces an untrusted text value to trimmed plain text:
// markup is stripped, entities decoded, surrounding whitespace removed.
func CleanText(value string) string {
	return strings.TrimSpace(html.UnescapeString(StripTags(strings.TrimSpace(value))))
}

// DecodeEntities decodes HTML entities and trims whitespace without
// touching markup. Titles keep literal angle brackets this way.
func DecodeEntities(value string) string {
	return strings.TrimSpace(html.UnescapeString(value))
}
