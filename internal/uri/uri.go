/*
URI model

Responsibilities
- Parse and normalize content URIs
- Classify special URI shapes:
  - embed-player URIs (playerId + entryId query parameters)
  - oEmbed request URIs ("oembed" path segment + url query parameter)

- Rewrite a content URI into its oEmbed-request form via a provider directory
- Recover the content URI an oEmbed-request URI points at
- Resolve relative references against a base

Normalization guarantees:
- Idempotent: Normalize(Normalize(u)) == Normalize(u)
- Scheme and host are lowercased
- An empty path on an absolute URI becomes "/"
- Embed-player URIs always end their path with "/"
- Query values are percent-encoded per RFC 3986 (%20, not "+")

The model knows nothing about fetching, crawling, or parsing.
*/
package uri

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/rohmanhakim/link-preview/providers"
)

var ErrEmptyURI = errors.New("uri: empty input")

// Parse builds a normalized URI from a raw string. Empty or blank input is
// rejected so callers can skip unusable references without special-casing.
func Parse(raw string, opts Options) (*URI, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyURI
	}
	parsed, err := url.Parse(SafeEscape(raw))
	if err != nil {
		return nil, fmt.Errorf("uri: parse %q: %w", raw, err)
	}
	u := &URI{
		u:      parsed,
		params: parseParams(parsed.RawQuery),
		opts:   opts,
	}
	if u.IsEmbedPlayer() {
		u.mergeQuery(dimensionParams("width", "height", opts))
	} else if u.IsOEmbed() {
		u.mergeQuery(dimensionParams("maxwidth", "maxheight", opts))
	}
	return u.Normalize(), nil
}

// Normalize applies the package-level normalization rules in place and
// returns the receiver for chaining.
func (u *URI) Normalize() *URI {
	u.u.Scheme = strings.ToLower(u.u.Scheme)
	u.u.Host = strings.ToLower(u.u.Host)
	if u.u.Host != "" && u.u.Path == "" {
		u.u.Path = "/"
	}
	if u.IsEmbedPlayer() && !strings.HasSuffix(u.u.Path, "/") {
		u.u.Path += "/"
	}
	return u
}

// IsEmbedPlayer reports whether the URI is a provider-specific embed-player
// reference, recognized by carrying both a player and an entry identifier.
func (u *URI) IsEmbedPlayer() bool {
	_, hasPlayer := u.QueryValue("playerId")
	_, hasEntry := u.QueryValue("entryId")
	return hasPlayer && hasEntry
}

// IsOEmbed reports whether the URI is an oEmbed request: an "oembed" path
// segment plus a url query parameter naming the content it describes.
func (u *URI) IsOEmbed() bool {
	if len(u.params) == 0 {
		return false
	}
	if !strings.Contains(strings.ToLower(u.u.Path), "oembed") {
		return false
	}
	_, hasURL := u.QueryValue("url")
	return hasURL
}

// AsOEmbedURI rewrites the URI into its oEmbed-request form. Special URIs
// already are their own oEmbed form. For everything else the provider
// directory decides; an unknown URI has no oEmbed form and yields nil.
func (u *URI) AsOEmbedURI(dir providers.Directory) *URI {
	if u.IsEmbedPlayer() || u.IsOEmbed() {
		return u
	}
	if dir == nil {
		return nil
	}
	provider := dir.Find(u.String())
	if provider == nil {
		return nil
	}
	built, err := provider.Build(u.String())
	if err != nil {
		return nil
	}
	rewritten, err := Parse(built, u.opts)
	if err != nil {
		return nil
	}
	return rewritten
}

// AsContentURI recovers the content URI an oEmbed or embed-player URI
// points at via its url query parameter. A plain content URI is returned
// unchanged, and a special URI without a url parameter points at itself.
func (u *URI) AsContentURI() *URI {
	if !u.IsEmbedPlayer() && !u.IsOEmbed() {
		return u
	}
	if raw, ok := u.QueryValue("url"); ok && raw != "" {
		content, err := Parse(raw, u.opts)
		if err != nil {
			return nil
		}
		return content
	}
	return u
}

// ToAbsolute resolves the URI against base using standard URI reference
// resolution ("." and ".." segments are merged away). Absolute URIs are
// returned unchanged.
func (u *URI) ToAbsolute(base *URI) *URI {
	if u.IsAbsolute() || base == nil {
		return u
	}
	rel := *u.u
	rel.RawQuery = encodeQuery(u.params)
	resolved := base.u.ResolveReference(&rel)
	absolute, err := Parse(resolved.String(), u.opts)
	if err != nil {
		return u
	}
	return absolute
}

func (u *URI) IsAbsolute() bool {
	return u.u.IsAbs()
}

// QueryValue returns the first value recorded for key.
func (u *URI) QueryValue(key string) (string, bool) {
	for _, p := range u.params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

func (u *URI) Scheme() string { return u.u.Scheme }
func (u *URI) Host() string   { return u.u.Host }
func (u *URI) Path() string   { return u.u.Path }

// String renders the normalized, fully escaped form of the URI.
func (u *URI) String() string {
	out := *u.u
	out.RawQuery = encodeQuery(u.params)
	return out.String()
}

// ForDisplay renders a human-readable form with path and query values
// percent-decoded. Used for default titles and permalink display.
func (u *URI) ForDisplay() string {
	if u.u.Opaque != "" {
		return u.String()
	}
	var b strings.Builder
	if u.u.Scheme != "" {
		b.WriteString(u.u.Scheme)
		b.WriteString("://")
	}
	b.WriteString(u.u.Host)
	b.WriteString(u.u.Path)
	if len(u.params) > 0 {
		b.WriteByte('?')
		for i, p := range u.params {
			if i > 0 {
				b.WriteByte('&')
			}
			b.WriteString(p.Key)
			b.WriteByte('=')
			b.WriteString(p.Value)
		}
	}
	if u.u.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(u.u.Fragment)
	}
	return b.String()
}

// mergeQuery folds pairs into the query: an existing key keeps its position
// and takes the new value, a new key is appended at the end.
func (u *URI) mergeQuery(pairs []Param) {
	for _, pair := range pairs {
		replaced := false
		for i := range u.params {
			if u.params[i].Key == pair.Key {
				u.params[i].Value = pair.Value
				replaced = true
				break
			}
		}
		if !replaced {
			u.params = append(u.params, pair)
		}
	}
}

func dimensionParams(widthKey, heightKey string, opts Options) []Param {
	var pairs []Param
	if opts.Width > 0 && opts.Width < math.MaxInt32 {
		pairs = append(pairs, Param{Key: widthKey, Value: strconv.Itoa(opts.Width)})
	}
	if opts.Height > 0 && opts.Height < math.MaxInt32 {
		pairs = append(pairs, Param{Key: heightKey, Value: strconv.Itoa(opts.Height)})
	}
	return pairs
}

func parseParams(rawQuery string) []Param {
	if rawQuery == "" {
		return nil
	}
	var params []Param
	for _, chunk := range strings.Split(rawQuery, "&") {
		if chunk == "" {
			continue
		}
		key, value, _ := strings.Cut(chunk, "=")
		if decoded, err := url.QueryUnescape(key); err == nil {
			key = decoded
		}
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}
		params = append(params, Param{Key: key, Value: value})
	}
	return params
}

func encodeQuery(params []Param) string {
	if len(params) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(queryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(queryEscape(p.Value))
	}
	return b.String()
}

// queryEscape percent-encodes a query component with %20 for spaces, the
// form normalization produces for query values.
func queryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
