/*
Package linkpreview resolves the metadata needed to render a link
preview: title, description, site, image and embeddable content for an
arbitrary URL, projected into an oEmbed-shaped result.

Resolution is lazy. A Content handle fetches nothing until a property
is asked for, then crawls exactly as far as needed: the oEmbed endpoint
for a known provider, the page itself for OpenGraph and HTML fallbacks,
the image for its bytes. Every session is bounded by a request ceiling
and each URI is fetched at most once.
*/
package linkpreview

import (
	"context"
	"sync"

	"github.com/rohmanhakim/link-preview/fetch"
	"github.com/rohmanhakim/link-preview/internal/metadata"
	"github.com/rohmanhakim/link-preview/providers"
)

// Options carries per-fetch settings. Width and Height are the caller's
// target embed dimensions; they flow into provider requests and into
// the final embed markup scaling.
type Options struct {
	Width  int
	Height int
	// SeedProperties preloads per-source property maps, keyed by source
	// name (initial, image, oembed, opengraph, html). Unknown sources
	// and blank values are dropped.
	SeedProperties map[string]map[string]any
}

// Client resolves link previews with a fixed configuration. It is safe
// for concurrent use; each Fetch returns an independent single-use
// Content session.
type Client struct {
	cfg       Config
	fetcher   fetch.Client
	directory providers.Directory
	sink      metadata.Sink
}

func New(cfg Config) *Client {
	sink := metadata.NewRecorder(cfg.logger)

	directory := cfg.directory
	if directory == nil {
		directory = providers.NewRegistry()
	}

	fetcher := cfg.httpClient
	if fetcher == nil {
		fetcher = fetch.NewHTTPClient(fetch.ClientConfig{
			Timeout:          cfg.timeout,
			OpenTimeout:      cfg.openTimeout,
			DisableRedirects: !cfg.followRedirects,
			MaxRedirects:     cfg.maxRedirects,
			UserAgent:        cfg.userAgent,
			ErrorHandler:     cfg.errorHandler,
			Sink:             sink,
		})
	}

	return &Client{
		cfg:       cfg,
		fetcher:   fetcher,
		directory: directory,
		sink:      sink,
	}
}

// Fetch opens a resolution session for rawurl. Nothing is fetched until
// a property accessor is called on the returned Content.
func (c *Client) Fetch(ctx context.Context, rawurl string, opts Options) (*Content, error) {
	return newContent(ctx, c, rawurl, opts, true)
}

// LoadContent opens an offline session: properties resolve only from
// opts.SeedProperties and URI-derived defaults, and no request is ever
// issued. Used to re-render previews from already-harvested properties.
func (c *Client) LoadContent(ctx context.Context, rawurl string, opts Options) (*Content, error) {
	return newContent(ctx, c, rawurl, opts, false)
}

var (
	defaultClientOnce sync.Once
	defaultClient     *Client
)

func sharedClient() *Client {
	defaultClientOnce.Do(func() {
		cfg, err := WithDefault().Build()
		if err != nil {
			// Defaults always validate.
			panic(err)
		}
		defaultClient = New(cfg)
	})
	return defaultClient
}

// Fetch resolves rawurl with the shared default client.
func Fetch(ctx context.Context, rawurl string, opts Options) (*Content, error) {
	return sharedClient().Fetch(ctx, rawurl, opts)
}

// LoadContent opens an offline session with the shared default client.
func LoadContent(ctx context.Context, rawurl string, opts Options) (*Content, error) {
	return sharedClient().LoadContent(ctx, rawurl, opts)
}
