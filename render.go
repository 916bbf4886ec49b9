package linkpreview

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

const flashContentType = "application/x-shockwave-flash"

// OEmbed is the projection of a resolved Content into the oEmbed
// response shape. Fields a provider answered with directly always win
// over synthesized ones; provider keys outside the standard shape are
// carried in Extra.
type OEmbed struct {
	Version      string
	Type         string
	ProviderName string
	ProviderURL  string
	Title        string
	Description  string
	ThumbnailURL string
	HTML         string
	Width        int
	Height       int
	Extra        map[string]any
}

// MarshalJSON flattens Extra into the top-level object and omits empty
// fields, matching the wire shape oEmbed consumers expect.
func (o OEmbed) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 10+len(o.Extra))
	for key, value := range o.Extra {
		out[key] = value
	}
	setNonEmpty := func(key, value string) {
		if value != "" {
			out[key] = value
		}
	}
	setNonEmpty("version", o.Version)
	setNonEmpty("type", o.Type)
	setNonEmpty("provider_name", o.ProviderName)
	setNonEmpty("provider_url", o.ProviderURL)
	setNonEmpty("title", o.Title)
	setNonEmpty("description", o.Description)
	setNonEmpty("thumbnail_url", o.ThumbnailURL)
	setNonEmpty("html", o.HTML)
	if o.Width > 0 {
		out["width"] = o.Width
	}
	if o.Height > 0 {
		out["height"] = o.Height
	}
	return json.Marshal(out)
}

// AsOEmbed projects the resolved properties into an oEmbed result,
// forcing whatever resolution each consulted property still needs.
// Direct video and flash assets render as a video with synthesized
// embed markup; a captured player page renders as a video with its own
// markup; everything else is a plain link. Literal fields from a real
// oEmbed provider response override all synthesized values.
func (c *Content) AsOEmbed() OEmbed {
	var result OEmbed
	switch {
	case c.contentTypeVideo() || c.contentTypeFlash():
		result = c.oembedVideo(c.contentHTML())
	case c.capturedEmbedHTML() != "":
		result = c.oembedVideo(c.capturedEmbedHTML())
	default:
		result = c.oembedLink()
	}
	c.applyOEmbedSource(&result)
	return result
}

func (c *Content) oembedLink() OEmbed {
	return OEmbed{
		Version:      "1.0",
		Type:         "link",
		ProviderName: c.SiteName(),
		ProviderURL:  c.SiteURL(),
		Title:        c.Title(),
		Description:  c.Description(),
		ThumbnailURL: c.ImageURL(),
	}
}

func (c *Content) oembedVideo(html string) OEmbed {
	result := c.oembedLink()
	result.Type = "video"
	result.HTML = html
	result.Width = c.scaledWidth()
	result.Height = c.scaledHeight()
	return result
}

// applyOEmbedSource overlays the literal oembed source map: its fields
// replace synthesized ones, unknown keys accumulate in Extra.
func (c *Content) applyOEmbedSource(result *OEmbed) {
	for key, value := range c.sources["oembed"] {
		switch key {
		case "version":
			result.Version = stringValue(value)
		case "type":
			result.Type = stringValue(value)
		case "provider_name":
			result.ProviderName = stringValue(value)
		case "provider_url":
			result.ProviderURL = stringValue(value)
		case "title":
			result.Title = stringValue(value)
		case "description":
			result.Description = stringValue(value)
		case "thumbnail_url":
			result.ThumbnailURL = stringValue(value)
		case "html":
			result.HTML = stringValue(value)
		case "width":
			result.Width = intValue(value)
		case "height":
			result.Height = intValue(value)
		default:
			if result.Extra == nil {
				result.Extra = map[string]any{}
			}
			result.Extra[key] = value
		}
	}
}

func (c *Content) contentTypeVideo() bool {
	return strings.HasPrefix(c.ContentType(), "video/")
}

func (c *Content) contentTypeFlash() bool {
	return c.ContentType() == flashContentType
}

func (c *Content) capturedEmbedHTML() string {
	if value, ok := c.sourceValue("opengraph", "html"); ok {
		return stringValue(value)
	}
	return ""
}

// contentHTML synthesizes embed markup for a direct media asset.
func (c *Content) contentHTML() string {
	if c.ContentURL() == "" {
		return ""
	}
	switch {
	case c.contentTypeVideo():
		return c.videoMarkup()
	case c.contentTypeFlash():
		return c.flashMarkup()
	default:
		return ""
	}
}

func (c *Content) videoMarkup() string {
	return fmt.Sprintf(
		`<video width="%d" height="%d"><source src="%s" type="%s" /></video>`,
		c.scaledWidth(), c.scaledHeight(), c.ContentURL(), c.ContentType())
}

func (c *Content) flashMarkup() string {
	width, height := c.scaledWidth(), c.scaledHeight()
	contentURL, contentType := c.ContentURL(), c.ContentType()
	return fmt.Sprintf(
		`<object width="%d" height="%d">`+
			`<param name="movie" value="%s"></param>`+
			`<param name="allowScriptAccess" value="always"></param>`+
			`<param name="allowFullScreen" value="true"></param>`+
			`<embed src="%s" type="%s" allowscriptaccess="always" allowfullscreen="true" width="%d" height="%d"></embed>`+
			`</object>`,
		width, height, contentURL, contentURL, contentType, width, height)
}

// scaledWidth scales the intrinsic width to the caller's target
// dimensions. Width takes precedence over height; rounding is always
// up so a requested dimension is never undershot.
func (c *Content) scaledWidth() int {
	width, height := c.ContentWidth(), c.ContentHeight()
	switch {
	case c.opts.Width > 0:
		return c.opts.Width
	case c.opts.Height > 0 && height > 0:
		return int(math.Ceil(float64(c.opts.Height) / float64(height) * float64(width)))
	default:
		return width
	}
}

func (c *Content) scaledHeight() int {
	width, height := c.ContentWidth(), c.ContentHeight()
	switch {
	case c.opts.Width > 0 && width > 0:
		return int(math.Ceil(float64(c.opts.Width) / float64(width) * float64(height)))
	case c.opts.Height > 0:
		return c.opts.Height
	default:
		return height
	}
}
