package uri

import "net/url"

// Options carries the caller-requested embed dimensions. They are folded
// into special URIs at parse time (width/height for embed-player URIs,
// maxwidth/maxheight for oEmbed request URIs).
type Options struct {
	Width  int
	Height int
}

// Param is a single query parameter. Query parameters are kept as an
// ordered sequence rather than a map: order is significant for URI
// equality and names may repeat.
type Param struct {
	Key   string
	Value string
}

// URI wraps a parsed absolute-or-relative reference plus its ordered
// query parameters.
type URI struct {
	u      *url.URL
	params []Param
	opts   Options
}
