package linkpreview

import (
	"strconv"
	"strings"

	"github.com/rohmanhakim/link-preview/internal/frontier"
	"github.com/rohmanhakim/link-preview/internal/sanitizer"
	"github.com/rohmanhakim/link-preview/internal/uri"
)

// The closed set of logical properties a Content can resolve, plus the
// derived permalink "url".
var allProperties = []string{
	"title",
	"description",
	"site_name",
	"site_url",
	"image_url",
	"image_data",
	"image_content_type",
	"image_file_name",
	"content_url",
	"content_type",
	"content_width",
	"content_height",
}

var knownSources = []string{"initial", "image", "oembed", "opengraph", "html"}

// propertyAliasTable maps a logical property to the literal keys that
// may answer it within a source, in preference order. A listed property
// is answered only by its aliases; an unlisted one by its own name.
var propertyAliasTable = map[string]map[string][]string{
	"oembed": {
		"site_name": {"provider_name"},
		"site_url":  {"provider_url"},
		"image_url": {"thumbnail_url"},
	},
	"opengraph": {
		"image_url":      {"image_secure_url", "image", "image_url"},
		"content_url":    {"video_secure_url", "video", "video_url"},
		"content_type":   {"video_type"},
		"content_width":  {"video_width"},
		"content_height": {"video_height"},
	},
}

// canonicalKeyTable is the alias table inverted: literal key to logical
// property, per source. Built once at init.
var canonicalKeyTable = func() map[string]map[string]string {
	table := map[string]map[string]string{}
	for source, aliases := range propertyAliasTable {
		table[source] = map[string]string{}
		for property, keys := range aliases {
			for _, key := range keys {
				table[source][key] = property
			}
		}
	}
	return table
}()

func propertyAliases(source, property string) []string {
	if aliases, ok := propertyAliasTable[source][property]; ok {
		return aliases
	}
	return []string{property}
}

func canonicalKey(source, key string) string {
	if property, ok := canonicalKeyTable[source][key]; ok {
		return property
	}
	return key
}

// propertySourceOrder is the cross-source precedence used to resolve a
// property once harvesting is done. Caller-seeded values always win;
// descriptions prefer the page's own meta tag over provider blurbs;
// image payload fields prefer the fetched image itself. Everything else
// prefers structured sources over document fallbacks, so og:title beats
// the document title.
func propertySourceOrder(property string) []string {
	switch property {
	case "description":
		return []string{"initial", "html", "oembed", "image", "opengraph"}
	case "image_data", "image_content_type", "image_file_name":
		return []string{"initial", "image", "oembed", "opengraph", "html"}
	default:
		return []string{"initial", "oembed", "opengraph", "html", "image"}
	}
}

// fetchPriorityOrder is the frontier drain order while hunting for a
// property: visit the buckets most likely to answer it first.
func fetchPriorityOrder(property string) []string {
	switch property {
	case "description":
		return []string{frontier.BucketHTML, frontier.BucketOEmbed, frontier.BucketDefault}
	case "image_data", "image_content_type", "image_file_name":
		return []string{frontier.BucketImage, frontier.BucketOEmbed, frontier.BucketDefault}
	default:
		return []string{frontier.BucketOEmbed, frontier.BucketHTML, frontier.BucketImage, frontier.BucketDefault}
	}
}

// propertyNormalizers are the write-time strategies keyed by canonical
// property. Anything unlisted goes through normalizeGeneric.
var propertyNormalizers = map[string]func(*Content, string) string{
	"image_url":   (*Content).normalizeImageURL,
	"url":         (*Content).normalizePermalink,
	"content_url": (*Content).normalizeContentURL,
	"title":       (*Content).normalizeTitle,
	"html":        (*Content).normalizeEmbedHTML,
}

// normalizeProperty prepares a value for storage. String values are
// cleaned per the property's strategy; arrays element-wise; anything
// else passes through. URL-bearing properties are not pure: resolving
// them to absolute form also enqueues them for fetching.
func (c *Content) normalizeProperty(property string, value any) any {
	switch v := value.(type) {
	case string:
		if normalize, ok := propertyNormalizers[property]; ok {
			return normalize(c, v)
		}
		return c.normalizeGeneric(v)
	case []string:
		normalized := make([]string, 0, len(v))
		for _, elem := range v {
			if s, ok := c.normalizeProperty(property, elem).(string); ok && s != "" {
				normalized = append(normalized, s)
			}
		}
		return normalized
	default:
		return value
	}
}

func (c *Content) normalizeGeneric(value string) string {
	return sanitizer.CleanText(value)
}

// normalizeImageURL resolves a possibly relative image reference against
// the content URI and queues it so the image bytes can be fetched.
func (c *Content) normalizeImageURL(value string) string {
	parsed, err := uri.Parse(value, c.uriOpts)
	if err != nil {
		return ""
	}
	absolute := parsed.ToAbsolute(c.contentURI).String()
	c.frontier.Enqueue(absolute, frontier.BucketImage)
	return absolute
}

// normalizePermalink resolves the harvested permalink and queues it for
// the html-oriented sources; the stored form is the display form.
func (c *Content) normalizePermalink(value string) string {
	parsed, err := uri.Parse(uri.Unescape(value), c.uriOpts)
	if err != nil {
		return ""
	}
	absolute := parsed.ToAbsolute(c.contentURI)
	c.frontier.Enqueue(absolute.String(), frontier.BucketHTML)
	return absolute.ForDisplay()
}

// normalizeContentURL escapes the asset reference without queueing it:
// a media asset is a terminal reference, not a metadata page.
func (c *Content) normalizeContentURL(value string) string {
	return uri.SafeEscape(value)
}

// normalizeTitle decodes entities but keeps literal markup characters:
// a title mentioning "<b>" should render as text, not vanish.
func (c *Content) normalizeTitle(value string) string {
	return sanitizer.DecodeEntities(value)
}

// normalizeEmbedHTML stores captured embed markup verbatim.
func (c *Content) normalizeEmbedHTML(value string) string {
	return value
}

// defaultProperty derives last-resort values from the permalink.
func (c *Content) defaultProperty(property string) any {
	switch property {
	case "title":
		return c.permalinkURI().ForDisplay()
	case "site_name":
		return c.permalinkURI().Host()
	case "site_url":
		permalink := c.permalinkURI()
		if permalink.Scheme() != "" && permalink.Host() != "" {
			return permalink.Scheme() + "://" + permalink.Host()
		}
		return nil
	default:
		return nil
	}
}

// permalinkURI is the resolved permalink as a URI, or the seed URI when
// no better permalink was harvested. Resolution here never crawls; the
// defaults are only consulted after the frontier is drained.
func (c *Content) permalinkURI() *uri.URI {
	for _, source := range propertySourceOrder("url") {
		if value, ok := c.sourceValue(source, "url"); ok {
			if parsed, err := uri.Parse(stringValue(value), c.uriOpts); err == nil {
				return parsed
			}
		}
	}
	return c.contentURI
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case []byte:
		return len(v) == 0
	default:
		return false
	}
}

func stringValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return ""
	}
}

// intValue coerces the mixed numeric shapes harvested from JSON
// (float64), XML and meta tags (strings) into an int.
func intValue(value any) int {
	switch v := value.(type) {
	case int:
		return v
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return 0
}
