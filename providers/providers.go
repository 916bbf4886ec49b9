/*
Package providers implements the oEmbed provider-directory collaborator:
given a content URL, decide which known provider can describe it and build
the oEmbed request URI for that provider's discovery endpoint.

The default registry is loaded from an embedded snapshot in the
oembed.com providers.json shape. URL scheme patterns use the oEmbed
wildcard convention ("https://*.youtube.com/watch*") and are compiled to
anchored regular expressions once, at registry construction.

The directory is a lookup table, not a fetcher: it never performs network
I/O and knows nothing about crawling.
*/
package providers

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

//go:embed providers.json
var providersJSON []byte

// Provider can build the oEmbed request URI for a content URL it matched.
type Provider interface {
	// Name is the provider's display name ("YouTube").
	Name() string
	// Build returns the oEmbed request URI describing rawurl.
	Build(rawurl string) (string, error)
}

// Directory matches a content URL to a provider. Find returns nil when no
// registered provider covers the URL.
type Directory interface {
	Find(rawurl string) Provider
}

// Registry is the default Directory, backed by a fixed provider table.
type Registry struct {
	providers []*endpointProvider
}

type endpointProvider struct {
	name     string
	endpoint string
	format   string
	schemes  []*regexp.Regexp
}

// rawProvider mirrors the oembed.com providers.json document shape.
type rawProvider struct {
	ProviderName string `json:"provider_name"`
	ProviderURL  string `json:"provider_url"`
	Endpoints    []struct {
		Schemes []string `json:"schemes"`
		URL     string   `json:"url"`
		Formats []string `json:"formats"`
	} `json:"endpoints"`
}

// NewRegistry builds the default registry from the embedded provider
// table. The snapshot ships with the binary, so a parse failure is a
// build defect, not a runtime condition.
func NewRegistry() *Registry {
	registry, err := NewRegistryFromJSON(providersJSON)
	if err != nil {
		panic(err)
	}
	return registry
}

// NewRegistryFromJSON builds a registry from a providers.json document,
// allowing callers to substitute their own provider snapshot.
func NewRegistryFromJSON(doc []byte) (*Registry, error) {
	var raws []rawProvider
	if err := json.Unmarshal(doc, &raws); err != nil {
		return nil, fmt.Errorf("providers: parse provider table: %w", err)
	}

	registry := &Registry{}
	for _, raw := range raws {
		if len(raw.Endpoints) == 0 {
			continue
		}
		// Most providers expose a single endpoint; the first one wins.
		endpoint := raw.Endpoints[0]
		if endpoint.URL == "" {
			continue
		}
		provider := &endpointProvider{
			name:     raw.ProviderName,
			endpoint: endpoint.URL,
			format:   preferredFormat(endpoint.Formats),
		}
		for _, scheme := range endpoint.Schemes {
			pattern, err := regexp.Compile(schemeToRegex(scheme))
			if err != nil {
				continue
			}
			provider.schemes = append(provider.schemes, pattern)
		}
		if len(provider.schemes) > 0 {
			registry.providers = append(registry.providers, provider)
		}
	}
	return registry, nil
}

// Find returns the first provider whose scheme patterns cover rawurl, or
// nil when the URL belongs to no known provider.
func (r *Registry) Find(rawurl string) Provider {
	for _, provider := range r.providers {
		for _, pattern := range provider.schemes {
			if pattern.MatchString(rawurl) {
				return provider
			}
		}
	}
	return nil
}

func (p *endpointProvider) Name() string { return p.name }

// Build constructs the oEmbed request URI for rawurl against the
// provider's endpoint, preserving any query parameters the endpoint
// already carries.
func (p *endpointProvider) Build(rawurl string) (string, error) {
	endpoint, err := url.Parse(p.endpoint)
	if err != nil {
		return "", fmt.Errorf("providers: endpoint %q: %w", p.endpoint, err)
	}
	query := endpoint.RawQuery
	if query != "" {
		query += "&"
	}
	query += "format=" + p.format + "&url=" + url.QueryEscape(rawurl)
	endpoint.RawQuery = query
	return endpoint.String(), nil
}

// preferredFormat picks json when the endpoint offers it, otherwise the
// first declared format. An endpoint with no declared formats is assumed
// to speak json.
func preferredFormat(formats []string) string {
	if len(formats) == 0 {
		return "json"
	}
	for _, f := range formats {
		if f == "json" {
			return f
		}
	}
	return formats[0]
}

// schemeToRegex compiles an oEmbed wildcard scheme to an anchored regexp:
// "https://*.youtube.com/watch*" becomes "^https://[^/]*\.youtube\.com/watch.*$".
func schemeToRegex(scheme string) string {
	pattern := regexp.QuoteMeta(scheme)
	// A wildcard in the authority must not cross a path separator; a
	// wildcard elsewhere may match anything.
	if i := strings.Index(pattern, "://\\*"); i >= 0 {
		pattern = pattern[:i+3] + "[^/]*" + pattern[i+5:]
	}
	pattern = strings.ReplaceAll(pattern, "\\*", ".*")
	return "^" + pattern + "$"
}
