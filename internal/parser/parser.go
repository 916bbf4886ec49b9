/*
Responsibilities
- Dispatch a fetched response by content-type
- Extract per-source property mappings:
  - image headers for binary image payloads
  - plain document metadata and OpenGraph tags for HTML
  - flat key/value payloads for oEmbed JSON and XML
- Surface oEmbed discovery links found in an HTML head

The parser never raises on malformed input: a response it cannot use
contributes an empty result and resolution moves on. The one fetch it
performs itself is the nested OpenGraph video-embed capture; everything
else arrives through the caller.
*/
package parser

import (
	"context"
	"strings"

	"github.com/rohmanhakim/link-preview/fetch"
	"github.com/rohmanhakim/link-preview/internal/metadata"
	"github.com/rohmanhakim/link-preview/internal/uri"
)

// Config wires the parser's collaborators.
type Config struct {
	// Client performs the nested video-embed fetch. May be nil when
	// IgnoreVideoTypeHTML is set.
	Client fetch.Client
	// Options carries the caller's target dimensions into URI rewrites.
	Options uri.Options
	// IgnoreVideoTypeHTML suppresses the nested embed fetch entirely.
	IgnoreVideoTypeHTML bool
	// Sink records parse events.
	Sink metadata.Sink
}

type Parser struct {
	cfg  Config
	sink metadata.Sink
}

func New(cfg Config) *Parser {
	sink := cfg.Sink
	if sink == nil {
		sink = metadata.NewRecorder(nil)
	}
	return &Parser{cfg: cfg, sink: sink}
}

// Parse dispatches resp by content-type and returns whatever properties
// it yields. Responses without a content-type or body contribute
// nothing.
func (p *Parser) Parse(ctx context.Context, resp fetch.Response) Result {
	result := p.parse(ctx, resp)

	sources := make([]string, 0, len(result.Sources))
	for name := range result.Sources {
		sources = append(sources, name)
	}
	p.sink.RecordParse(resp.URL, sources, len(result.DiscoveredURIs))
	return result
}

func (p *Parser) parse(ctx context.Context, resp fetch.Response) Result {
	contentType := strings.ToLower(resp.ContentType())
	if contentType == "" || len(resp.Body) == 0 {
		return emptyResult()
	}
	switch {
	case strings.Contains(contentType, "image"), contentType == "binary/octet-stream":
		return p.parseImage(resp)
	case strings.HasPrefix(contentType, "text/html"):
		return p.parseHTML(ctx, resp)
	case strings.HasPrefix(contentType, "text/xml"), strings.HasPrefix(contentType, "application/json"):
		return p.parseOEmbed(resp)
	default:
		return emptyResult()
	}
}

// contentURLOf recovers the permalink a fetched oEmbed resource
// describes from its effective URL.
func (p *Parser) contentURLOf(resp fetch.Response) string {
	if resp.URL == "" {
		return ""
	}
	parsed, err := uri.Parse(resp.URL, p.cfg.Options)
	if err != nil {
		return ""
	}
	content := parsed.AsContentURI()
	if content == nil {
		return ""
	}
	return content.String()
}

// setIfAbsent writes a non-blank value under key unless one is present.
func setIfAbsent(props Properties, key string, value any) {
	if _, exists := props[key]; exists {
		return
	}
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return
	}
	if value == nil {
		return
	}
	props[key] = value
}
