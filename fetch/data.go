package fetch

import "strings"

// FailureStatus is the sentinel status recorded when a fetch fails before
// producing an HTTP response (DNS, connect, timeout, redirect budget).
const FailureStatus = 500

// RequestOptions carries per-request options explicitly instead of ambient
// client state. Width and Height describe the caller's target embed
// dimensions; transports may forward them to size-aware endpoints.
type RequestOptions struct {
	Width  int
	Height int
}

// Response is the normalized result of a fetch. It is always usable:
// a failed fetch yields FailureStatus, an empty body and no headers
// rather than an error.
type Response struct {
	// Status is the final HTTP status, or FailureStatus on transport error.
	Status int
	// Headers holds response headers with lower-cased keys.
	Headers map[string]string
	// Body is the decoded response body. Text bodies have already been
	// converted to UTF-8.
	Body []byte
	// URL is the effective URL after redirect-following, normalized.
	URL string
}

// Header returns the named header; lookup is case-insensitive.
func (r Response) Header(name string) string {
	return r.Headers[strings.ToLower(name)]
}

// ContentType returns the content-type header verbatim, parameters
// included; dispatching on media-type prefixes is the parser's concern.
func (r Response) ContentType() string {
	return r.Header("content-type")
}

func (r Response) Success() bool {
	return r.Status == 200
}
