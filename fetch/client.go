/*
Package fetch defines the HTTP boundary of the extraction engine.

Responsibilities
- Perform one GET per call with timeouts applied
- Follow redirects up to a bounded budget
- Repair the character encoding of text bodies to UTF-8
- Report the normalized effective URL after redirects
- Classify failures and swallow them into a failure-status Response

Fetch semantics
- A Response is always returned; transport failures surface to the
  configured error callback and come back as FailureStatus.
- The client never parses content; it only returns bytes and metadata.
- No retries: each URI is fetched at most once per resolution session,
  and a failed URI is never re-attempted.
*/
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/rohmanhakim/link-preview/internal/metadata"
	"github.com/rohmanhakim/link-preview/internal/uri"
	"github.com/rohmanhakim/link-preview/pkg/hashutil"
)

// Client is the fetch collaborator contract. Implementations must have
// already applied redirect-following, timeouts and character-encoding
// repair before returning, and must swallow transport failures into a
// FailureStatus response instead of propagating them.
type Client interface {
	Get(ctx context.Context, rawurl string, opts RequestOptions) Response
}

// ClientConfig configures the default HTTP client.
type ClientConfig struct {
	// Timeout bounds a whole request including body read. Default 5s.
	Timeout time.Duration
	// OpenTimeout bounds connection establishment. Default 2s.
	OpenTimeout time.Duration
	// DisableRedirects turns off redirect-following entirely; the first
	// response is returned as-is. Redirects are followed by default.
	DisableRedirects bool
	// MaxRedirects is the redirect budget per request. Default 3.
	MaxRedirects int
	// UserAgent is sent with every request.
	UserAgent string
	// MaxBodyBytes caps how much of a response body is read. Default 10 MiB.
	MaxBodyBytes int64
	// ErrorHandler receives every classified transport failure.
	ErrorHandler func(error)
	// Sink records fetch events and failures.
	Sink metadata.Sink
}

const (
	defaultTimeout      = 5 * time.Second
	defaultOpenTimeout  = 2 * time.Second
	defaultMaxRedirects = 3
	defaultMaxBodyBytes = 10 << 20
	defaultUserAgent    = "link-preview/1.0"
)

var errRedirectLimit = errors.New("redirect limit exceeded")

// HTTPClient is the default Client implementation.
type HTTPClient struct {
	cfg        ClientConfig
	httpClient *http.Client
	sink       metadata.Sink
}

// NewHTTPClient builds a client from cfg, filling in defaults for any
// zero-valued field.
func NewHTTPClient(cfg ClientConfig) *HTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaultOpenTimeout
	}
	if cfg.MaxRedirects <= 0 {
		cfg.MaxRedirects = defaultMaxRedirects
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(error) {}
	}
	sink := cfg.Sink
	if sink == nil {
		sink = metadata.NewRecorder(nil)
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: cfg.OpenTimeout,
		}).DialContext,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}

	checkRedirect := func(req *http.Request, via []*http.Request) error {
		if cfg.DisableRedirects {
			return http.ErrUseLastResponse
		}
		if len(via) >= cfg.MaxRedirects {
			return errRedirectLimit
		}
		return nil
	}

	return &HTTPClient{
		cfg:  cfg,
		sink: sink,
		httpClient: &http.Client{
			Timeout:       cfg.Timeout,
			Transport:     transport,
			CheckRedirect: checkRedirect,
		},
	}
}

// Get fetches rawurl. Any failure is reported through the error handler
// and returned as a FailureStatus response; Get itself never fails.
func (h *HTTPClient) Get(ctx context.Context, rawurl string, opts RequestOptions) Response {
	start := time.Now()
	response, err := h.get(ctx, rawurl)
	duration := time.Since(start)

	if err != nil {
		h.cfg.ErrorHandler(err)
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) {
			h.sink.RecordError("fetch", "HTTPClient.Get", mapFetchErrorToMetadataCause(fetchErr), err.Error(), rawurl)
		} else {
			h.sink.RecordError("fetch", "HTTPClient.Get", metadata.CauseUnknown, err.Error(), rawurl)
		}
		response = Response{
			Status:  FailureStatus,
			Headers: map[string]string{},
			URL:     rawurl,
		}
	}

	h.sink.RecordFetch(response.URL, response.Status, duration, response.ContentType(), hashutil.Fingerprint(response.Body))
	return response
}

func (h *HTTPClient) get(ctx context.Context, rawurl string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return Response{}, &FetchError{
			Message: fmt.Sprintf("build request: %v", err),
			Cause:   ErrCauseNetworkFailure,
			URL:     rawurl,
			Err:     err,
		}
	}
	req.Header.Set("User-Agent", h.cfg.UserAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return Response{}, classifyTransportError(rawurl, err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp, h.cfg.MaxBodyBytes)
	if err != nil {
		return Response{}, &FetchError{
			Message: fmt.Sprintf("read body: %v", err),
			Cause:   ErrCauseReadResponseBodyError,
			URL:     rawurl,
			Err:     err,
		}
	}

	headers := make(map[string]string, len(resp.Header))
	for name, values := range resp.Header {
		if len(values) > 0 {
			headers[strings.ToLower(name)] = values[0]
		}
	}

	return Response{
		Status:  resp.StatusCode,
		Headers: headers,
		Body:    body,
		URL:     effectiveURL(resp, rawurl),
	}, nil
}

// readBody drains the response body, converting text payloads to UTF-8.
// Binary payloads (images, octet streams) are passed through untouched;
// charset sniffing would corrupt them.
func readBody(resp *http.Response, limit int64) ([]byte, error) {
	var reader io.Reader = io.LimitReader(resp.Body, limit)
	contentType := resp.Header.Get("Content-Type")
	if isTextContentType(contentType) {
		repaired, err := charset.NewReader(reader, contentType)
		if err == nil {
			reader = repaired
		}
	}
	return io.ReadAll(reader)
}

func isTextContentType(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, "text/") ||
		strings.HasPrefix(ct, "application/json") ||
		strings.HasPrefix(ct, "application/xml")
}

// effectiveURL reports the normalized URL the response was ultimately
// served from, falling back to the request URL.
func effectiveURL(resp *http.Response, rawurl string) string {
	final := rawurl
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	normalized, err := uri.Parse(final, uri.Options{})
	if err != nil {
		return final
	}
	return normalized.String()
}

func classifyTransportError(rawurl string, err error) *FetchError {
	cause := ErrCauseNetworkFailure
	switch {
	case errors.Is(err, errRedirectLimit):
		cause = ErrCauseRedirectLimitExceeded
	case errors.Is(err, context.DeadlineExceeded):
		cause = ErrCauseTimeout
	default:
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			cause = ErrCauseTimeout
		}
	}
	return &FetchError{
		Message: fmt.Sprintf("request failed: %v", err),
		Cause:   cause,
		URL:     rawurl,
		Err:     err,
	}
}
