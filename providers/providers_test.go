package providers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/link-preview/providers"
)

func TestNewRegistryLoadsEmbeddedTable(t *testing.T) {
	registry := providers.NewRegistry()

	provider := registry.Find("http://www.youtube.com/watch?v=M3r2XDceM6A")
	require.NotNil(t, provider)
	assert.Equal(t, "YouTube", provider.Name())
}

func TestFindMatchesWildcardSchemes(t *testing.T) {
	registry := providers.NewRegistry()

	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=abc", "YouTube"},
		{"https://youtu.be/abc", "YouTube"},
		{"https://vimeo.com/1234567", "Vimeo"},
		{"https://www.flickr.com/photos/someone/123/", "Flickr"},
	}
	for _, tt := range tests {
		provider := registry.Find(tt.url)
		require.NotNil(t, provider, "expected a provider for %s", tt.url)
		assert.Equal(t, tt.want, provider.Name())
	}
}

func TestFindReturnsNilForUnknownURLs(t *testing.T) {
	registry := providers.NewRegistry()

	assert.Nil(t, registry.Find("http://example.com/page"))
	assert.Nil(t, registry.Find("https://www.youtube.com.evil.com/watch?v=abc"))
}

func TestAuthorityWildcardDoesNotCrossPathSeparator(t *testing.T) {
	registry := providers.NewRegistry()

	// "https://*.youtube.com/..." must not let the wildcard swallow a
	// whole different authority plus a path segment.
	assert.Nil(t, registry.Find("https://evil.com/x.youtube.com/watch?v=abc"))
}

func TestBuildConstructsOEmbedRequestURI(t *testing.T) {
	registry := providers.NewRegistry()

	provider := registry.Find("http://www.youtube.com/watch?v=M3r2XDceM6A")
	require.NotNil(t, provider)

	built, err := provider.Build("http://www.youtube.com/watch?v=M3r2XDceM6A")
	require.NoError(t, err)
	assert.Equal(t,
		"http://www.youtube.com/oembed?format=json&url=http%3A%2F%2Fwww.youtube.com%2Fwatch%3Fv%3DM3r2XDceM6A",
		built)
}

func TestNewRegistryFromJSONRejectsMalformedDocuments(t *testing.T) {
	_, err := providers.NewRegistryFromJSON([]byte(`{"not":"a list"`))
	assert.Error(t, err)
}

func TestNewRegistryFromJSONCustomProvider(t *testing.T) {
	doc := []byte(`[{
		"provider_name": "Example",
		"provider_url": "https://example.com/",
		"endpoints": [{
			"schemes": ["https://media.example.com/*"],
			"url": "https://media.example.com/oembed",
			"formats": ["xml"]
		}]
	}]`)

	registry, err := providers.NewRegistryFromJSON(doc)
	require.NoError(t, err)

	provider := registry.Find("https://media.example.com/clip/42")
	require.NotNil(t, provider)

	built, err := provider.Build("https://media.example.com/clip/42")
	require.NoError(t, err)
	assert.Equal(t,
		"https://media.example.com/oembed?format=xml&url=https%3A%2F%2Fmedia.example.com%2Fclip%2F42",
		built)
}
