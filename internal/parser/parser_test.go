package parser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/link-preview/fetch"
	"github.com/rohmanhakim/link-preview/internal/parser"
	"github.com/rohmanhakim/link-preview/internal/uri"
)

func newParserForTest() *parser.Parser {
	return parser.New(parser.Config{})
}

func htmlResponse(url, body string) fetch.Response {
	return fetch.Response{
		Status:  200,
		Headers: map[string]string{"content-type": "text/html; charset=utf-8"},
		Body:    []byte(body),
		URL:     url,
	}
}

func TestParseIgnoresUnusableResponses(t *testing.T) {
	p := newParserForTest()
	ctx := context.Background()

	tests := []struct {
		name string
		resp fetch.Response
	}{
		{"no content type", fetch.Response{Status: 200, Headers: map[string]string{}, Body: []byte("x"), URL: "http://example.com/"}},
		{"no body", fetch.Response{Status: 200, Headers: map[string]string{"content-type": "text/html"}, URL: "http://example.com/"}},
		{"unknown content type", fetch.Response{Status: 200, Headers: map[string]string{"content-type": "application/pdf"}, Body: []byte("x"), URL: "http://example.com/"}},
		{"failed fetch", fetch.Response{Status: fetch.FailureStatus, Headers: map[string]string{}, URL: "http://example.com/"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := p.Parse(ctx, tt.resp)
			assert.Empty(t, result.Sources)
			assert.Empty(t, result.DiscoveredURIs)
		})
	}
}

func TestParseImage(t *testing.T) {
	p := newParserForTest()

	result := p.Parse(context.Background(), fetch.Response{
		Status:  200,
		Headers: map[string]string{"content-type": "image/png"},
		Body:    []byte{0x89, 'P', 'N', 'G'},
		URL:     "http://example.com/media/logo.png",
	})

	props := result.Sources[parser.SourceImage]
	require.NotNil(t, props)
	assert.Equal(t, "http://example.com/media/logo.png", props["image_url"])
	assert.Equal(t, "image/png", props["image_content_type"])
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, props["image_data"])
	assert.Equal(t, "logo.png", props["image_file_name"])
}

func TestParseImageFileNamePrefersContentDisposition(t *testing.T) {
	p := newParserForTest()

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"bare", `attachment; filename=photo.jpg`, "photo.jpg"},
		{"double quoted", `attachment; filename="photo.jpg"`, "photo.jpg"},
		{"single quoted", `attachment; filename='photo.jpg'`, "photo.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := p.Parse(context.Background(), fetch.Response{
				Status: 200,
				Headers: map[string]string{
					"content-type":        "binary/octet-stream",
					"content-disposition": tt.header,
				},
				Body: []byte("data"),
				URL:  "http://example.com/download",
			})
			assert.Equal(t, tt.want, result.Sources[parser.SourceImage]["image_file_name"])
		})
	}
}

func TestParseImageFileNameFallsBackToHost(t *testing.T) {
	p := newParserForTest()

	result := p.Parse(context.Background(), fetch.Response{
		Status:  200,
		Headers: map[string]string{"content-type": "image/gif"},
		Body:    []byte("gif"),
		URL:     "http://img.example.com/",
	})
	assert.Equal(t, "img_example_com", result.Sources[parser.SourceImage]["image_file_name"])
}

func TestParseHTMLExtractsPlainDocumentMetadata(t *testing.T) {
	p := newParserForTest()

	body := `<html><head>
		<title>Page Title</title>
		<meta name="description" content="A page about things." />
	</head><body>
		<a rel="tag" href="/tags/go">go</a>
		<a rel="tag" href="/tags/web">web</a>
	</body></html>`

	result := p.Parse(context.Background(), htmlResponse("http://example.com/", body))

	html := result.Sources[parser.SourceHTML]
	require.NotNil(t, html)
	assert.Equal(t, "Page Title", html["title"])
	assert.Equal(t, "A page about things.", html["description"])
	assert.Equal(t, []string{"go", "web"}, html["tags"])
}

func TestParseHTMLExtractsOpenGraphScalars(t *testing.T) {
	p := newParserForTest()

	body := `<html><head>
		<meta property="og:title" content="OG Title" />
		<meta property="og:description" content="OG description" />
		<meta property="og:url" content="http://example.com/canonical" />
		<meta property="og:type" content="article" />
		<meta property="og:site_name" content="Example Site" />
	</head></html>`

	result := p.Parse(context.Background(), htmlResponse("http://example.com/", body))

	og := result.Sources[parser.SourceOpenGraph]
	require.NotNil(t, og)
	assert.Equal(t, "OG Title", og["title"])
	assert.Equal(t, "OG description", og["description"])
	assert.Equal(t, "http://example.com/canonical", og["url"])
	assert.Equal(t, "article", og["type"])
	assert.Equal(t, "Example Site", og["site_name"])
}

func TestParseHTMLUsesFirstImageGroup(t *testing.T) {
	p := newParserForTest()

	body := `<html><head>
		<meta property="og:image" content="http://example.com/one.png" />
		<meta property="og:image:secure_url" content="https://example.com/one.png" />
		<meta property="og:image" content="http://example.com/two.png" />
		<meta property="og:image:width" content="800" />
	</head></html>`

	result := p.Parse(context.Background(), htmlResponse("http://example.com/", body))

	og := result.Sources[parser.SourceOpenGraph]
	assert.Equal(t, "http://example.com/one.png", og["image"])
	assert.Equal(t, "https://example.com/one.png", og["image_secure_url"])
	assert.NotContains(t, og, "image_width", "second group must not leak into the first")
}

func TestParseHTMLUsesFirstDirectVideoGroup(t *testing.T) {
	body := `<html><head>
		<meta property="og:video" content="http://example.com/player" />
		<meta property="og:video:type" content="text/html" />
		<meta property="og:video" content="http://example.com/movie.mp4" />
		<meta property="og:video:type" content="video/mp4" />
		<meta property="og:video:width" content="640" />
		<meta property="og:video:height" content="360" />
	</head></html>`

	cfg := parser.Config{IgnoreVideoTypeHTML: true}
	result := parser.New(cfg).Parse(context.Background(), htmlResponse("http://example.com/", body))

	og := result.Sources[parser.SourceOpenGraph]
	assert.Equal(t, "http://example.com/movie.mp4", og["video"])
	assert.Equal(t, "video/mp4", og["video_type"])
	assert.Equal(t, "640", og["video_width"])
	assert.Equal(t, "360", og["video_height"])
}

func TestParseHTMLCapturesEmbeddedVideoHTML(t *testing.T) {
	client := newFakeFetchClient()
	client.serve("http://example.com/player", 200, "text/html", `<iframe src="http://example.com/embed"></iframe>`)
	p := parser.New(parser.Config{Client: client})

	body := `<html><head>
		<meta property="og:video" content="http://example.com/player" />
		<meta property="og:video:type" content="text/html" />
		<meta property="og:video:width" content="480" />
		<meta property="og:video:height" content="270" />
	</head></html>`

	result := p.Parse(context.Background(), htmlResponse("http://example.com/", body))

	og := result.Sources[parser.SourceOpenGraph]
	assert.Equal(t, `<iframe src="http://example.com/embed"></iframe>`, og["html"])
	assert.Equal(t, "480", og["video_width"])
	assert.Equal(t, "270", og["video_height"])
	assert.Equal(t, []string{"http://example.com/player"}, client.requested)
}

func TestParseHTMLSkipsEmbedCaptureWhenSuppressed(t *testing.T) {
	client := newFakeFetchClient()
	p := parser.New(parser.Config{Client: client, IgnoreVideoTypeHTML: true})

	body := `<html><head>
		<meta property="og:video" content="http://example.com/player" />
		<meta property="og:video:type" content="text/html" />
	</head></html>`

	result := p.Parse(context.Background(), htmlResponse("http://example.com/", body))

	assert.NotContains(t, result.Sources[parser.SourceOpenGraph], "html")
	assert.Empty(t, client.requested)
}

func TestParseHTMLDiscoversOEmbedLinks(t *testing.T) {
	p := newParserForTest()

	body := `<html><head>
		<link rel="alternate" type="application/json+oembed" href="http://example.com/oembed.json?url=x" />
		<link rel="alternate" type="text/xml+oembed" href="http://example.com/oembed.xml?url=x" />
		<link rel="alternate" type="application/rss+xml" href="http://example.com/feed" />
	</head></html>`

	result := p.Parse(context.Background(), htmlResponse("http://example.com/", body))

	assert.Equal(t, []string{
		"http://example.com/oembed.json?url=x",
		"http://example.com/oembed.xml?url=x",
	}, result.DiscoveredURIs)
}

func TestParseOEmbedJSON(t *testing.T) {
	p := newParserForTest()

	result := p.Parse(context.Background(), fetch.Response{
		Status:  200,
		Headers: map[string]string{"content-type": "application/json"},
		Body:    []byte(`{"version":"1.0","type":"video","title":"A Video","width":640,"height":360}`),
		URL:     "http://www.youtube.com/oembed?url=http%3A%2F%2Fwww.youtube.com%2Fwatch%3Fv%3Dabc",
	})

	oembed := result.Sources[parser.SourceOEmbed]
	require.NotNil(t, oembed)
	assert.Equal(t, "A Video", oembed["title"])
	assert.Equal(t, "video", oembed["type"])
	assert.Equal(t, float64(640), oembed["width"])
	assert.Equal(t, "http://www.youtube.com/watch?v=abc", oembed["url"])
}

func TestParseOEmbedXML(t *testing.T) {
	p := newParserForTest()

	result := p.Parse(context.Background(), fetch.Response{
		Status:  200,
		Headers: map[string]string{"content-type": "text/xml; charset=utf-8"},
		Body: []byte(`<?xml version="1.0" encoding="utf-8"?>
			<oembed>
				<version>1.0</version>
				<type>rich</type>
				<title>A Slide Deck</title>
				<html>&lt;iframe src="http://example.com/embed"&gt;&lt;/iframe&gt;</html>
			</oembed>`),
		URL: "http://example.com/oembed?url=http%3A%2F%2Fexample.com%2Fdeck",
	})

	oembed := result.Sources[parser.SourceOEmbed]
	require.NotNil(t, oembed)
	assert.Equal(t, "A Slide Deck", oembed["title"])
	assert.Equal(t, "rich", oembed["type"])
	assert.Equal(t, `<iframe src="http://example.com/embed"></iframe>`, oembed["html"])
	assert.Equal(t, "http://example.com/deck", oembed["url"])
}

func TestParseOEmbedMalformedPayloadStillRecoversURL(t *testing.T) {
	p := newParserForTest()

	result := p.Parse(context.Background(), fetch.Response{
		Status:  200,
		Headers: map[string]string{"content-type": "application/json"},
		Body:    []byte(`{"truncated":`),
		URL:     "http://example.com/oembed?url=http%3A%2F%2Fexample.com%2Fpage",
	})

	oembed := result.Sources[parser.SourceOEmbed]
	require.NotNil(t, oembed)
	assert.Equal(t, "http://example.com/page", oembed["url"])
	assert.Len(t, oembed, 1)
}

func TestParseHTMLWithDimensionOptionsKeepsURLsIntact(t *testing.T) {
	p := parser.New(parser.Config{Options: uri.Options{Width: 300, Height: 200}})

	result := p.Parse(context.Background(), fetch.Response{
		Status:  200,
		Headers: map[string]string{"content-type": "application/json"},
		Body:    []byte(`{"version":"1.0"}`),
		URL:     "http://example.com/oembed?url=http%3A%2F%2Fexample.com%2Fpage",
	})

	assert.Equal(t, "http://example.com/page", result.Sources[parser.SourceOEmbed]["url"])
}
