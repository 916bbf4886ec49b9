package parser

// Source names the parser can emit. Seed properties supplied by callers
// live under "initial", which a parsed response never produces.
const (
	SourceImage     = "image"
	SourceOEmbed    = "oembed"
	SourceOpenGraph = "opengraph"
	SourceHTML      = "html"
)

// Properties is one source's flat property mapping. Values are strings
// except image_data ([]byte) and tags ([]string).
type Properties map[string]any

// Result carries everything a single response contributed: per-source
// properties plus URIs discovered inside the document, in document
// order. An unusable response yields a Result with no sources.
type Result struct {
	Sources        map[string]Properties
	DiscoveredURIs []string
}

func emptyResult() Result {
	return Result{Sources: map[string]Properties{}}
}
