package linkpreview

import (
	"context"
	"fmt"

	"github.com/rohmanhakim/link-preview/fetch"
	"github.com/rohmanhakim/link-preview/internal/frontier"
	"github.com/rohmanhakim/link-preview/internal/parser"
	"github.com/rohmanhakim/link-preview/internal/uri"
)

/*
Content is one resolution session: a handle over the per-source property
maps harvested so far, the frontier of URIs still worth fetching, and
the parser that turns responses into properties.

Responsibilities
- Drive the fetch/parse loop lazily, only as far as a requested
  property demands
- Merge parser output into per-source maps with aliasing,
  normalization on write and first-write-wins per key
- Resolve a property across sources by precedence, falling back to
  URI-derived defaults

A Content is single-use and not safe for concurrent access: properties
accumulate over its life and are never invalidated.
*/
type Content struct {
	cfg        Config
	opts       Options
	uriOpts    uri.Options
	contentURI *uri.URI
	fetcher    fetch.Client
	frontier   frontier.Frontier
	parser     *parser.Parser
	sources    map[string]map[string]any
	ctx        context.Context
}

// newContent seeds the session: the content URI enters the frontier
// (live sessions only) and caller-supplied properties are merged before
// any fetch happens.
func newContent(ctx context.Context, client *Client, rawurl string, opts Options, allowRequests bool) (*Content, error) {
	uriOpts := uri.Options{Width: opts.Width, Height: opts.Height}
	contentURI, err := uri.Parse(rawurl, uriOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURL, err.Error())
	}

	var front frontier.Frontier
	if allowRequests {
		front = frontier.NewCrawlFrontier(client.cfg.maxRequests, client.directory, uriOpts, client.sink)
	} else {
		front = frontier.NewInertFrontier()
	}

	c := &Content{
		cfg:        client.cfg,
		opts:       opts,
		uriOpts:    uriOpts,
		contentURI: contentURI,
		fetcher:    client.fetcher,
		frontier:   front,
		parser: parser.New(parser.Config{
			Client:              client.fetcher,
			Options:             uriOpts,
			IgnoreVideoTypeHTML: client.cfg.ignoreOpenGraphVideoHTML,
			Sink:                client.sink,
		}),
		sources: make(map[string]map[string]any, len(knownSources)),
		ctx:     ctx,
	}
	for _, source := range knownSources {
		c.sources[source] = map[string]any{}
	}

	c.frontier.Enqueue(contentURI.String(), frontier.BucketDefault)
	c.addSeedProperties(opts.SeedProperties)
	return c, nil
}

// URL is the resolved permalink, falling back to the seed URI.
func (c *Content) URL() string {
	if permalink := stringValue(c.extract("url")); permalink != "" {
		return permalink
	}
	return c.contentURI.String()
}

func (c *Content) Title() string       { return stringValue(c.extract("title")) }
func (c *Content) Description() string { return stringValue(c.extract("description")) }
func (c *Content) SiteName() string    { return stringValue(c.extract("site_name")) }
func (c *Content) SiteURL() string     { return stringValue(c.extract("site_url")) }
func (c *Content) ImageURL() string    { return stringValue(c.extract("image_url")) }

func (c *Content) ImageData() []byte {
	if data, ok := c.extract("image_data").([]byte); ok {
		return data
	}
	return nil
}

func (c *Content) ImageContentType() string { return stringValue(c.extract("image_content_type")) }
func (c *Content) ImageFileName() string    { return stringValue(c.extract("image_file_name")) }
func (c *Content) ContentURL() string       { return stringValue(c.extract("content_url")) }
func (c *Content) ContentType() string      { return stringValue(c.extract("content_type")) }
func (c *Content) ContentWidth() int        { return intValue(c.extract("content_width")) }
func (c *Content) ContentHeight() int       { return intValue(c.extract("content_height")) }

// Found reports whether at least one related URI fetched successfully.
// It forces full resolution first.
func (c *Content) Found() bool {
	c.extractAll()
	return c.frontier.Succeeded()
}

// Empty reports whether no source holds any usable property. It forces
// full resolution first.
func (c *Content) Empty() bool {
	c.extractAll()
	for _, source := range knownSources {
		for _, value := range c.sources[source] {
			if !isBlank(value) {
				return false
			}
		}
	}
	return true
}

// Sources exposes the raw per-source property maps, primarily so a
// preview can later be reloaded offline via LoadContent.
func (c *Content) Sources() map[string]map[string]any {
	return c.sources
}

// extract drives the fetch loop until property is answerable or the
// frontier runs dry, then resolves the property across sources.
func (c *Content) extract(property string) any {
	for !c.frontier.Finished() {
		if c.hasProperty(property) {
			break
		}
		next, ok := c.frontier.Dequeue(fetchPriorityOrder(property))
		if !ok {
			break
		}
		resp := c.fetcher.Get(c.ctx, next, fetch.RequestOptions{
			Width:  c.opts.Width,
			Height: c.opts.Height,
		})
		c.frontier.MarkIssued(next, resp.Status)

		result := c.parser.Parse(c.ctx, resp)
		c.addParsedProperties(result.Sources)
		for _, discovered := range result.DiscoveredURIs {
			c.frontier.Enqueue(discovered, frontier.BucketDefault)
		}
	}
	return c.resolvedValue(property)
}

func (c *Content) extractAll() {
	c.extract("url")
	for _, property := range allProperties {
		c.extract(property)
	}
}

func (c *Content) addParsedProperties(sources map[string]parser.Properties) {
	for source, props := range sources {
		raw := make(map[string]any, len(props))
		for key, value := range props {
			raw[key] = value
		}
		c.addSourceProperties(source, raw)
	}
}

func (c *Content) addSeedProperties(seeds map[string]map[string]any) {
	for source, props := range seeds {
		c.addSourceProperties(source, props)
	}
}

// addSourceProperties merges one source's harvest. Values are stored
// under their literal key but normalized according to the canonical
// property the key aliases; the first write per key wins for the life
// of the session. Blank values never enter a source map.
func (c *Content) addSourceProperties(source string, props map[string]any) {
	target, known := c.sources[source]
	if !known {
		return
	}
	for key, value := range props {
		if isBlank(value) {
			continue
		}
		if _, exists := target[key]; exists {
			continue
		}
		normalized := c.normalizeProperty(canonicalKey(source, key), value)
		if isBlank(normalized) {
			continue
		}
		target[key] = normalized
	}
}

// hasProperty reports whether any source already answers property with
// a usable value.
func (c *Content) hasProperty(property string) bool {
	for _, source := range propertySourceOrder(property) {
		if _, ok := c.sourceValue(source, property); ok {
			return true
		}
	}
	return false
}

// resolvedValue picks the effective value by source precedence, then
// falls back to the URI-derived default.
func (c *Content) resolvedValue(property string) any {
	for _, source := range propertySourceOrder(property) {
		if value, ok := c.sourceValue(source, property); ok {
			return value
		}
	}
	return c.defaultProperty(property)
}

// sourceValue finds the literal key answering property within source,
// honoring the source's alias preference order.
func (c *Content) sourceValue(source, property string) (any, bool) {
	for _, alias := range propertyAliases(source, property) {
		if value, exists := c.sources[source][alias]; exists && !isBlank(value) {
			return value, true
		}
	}
	return nil, false
}
