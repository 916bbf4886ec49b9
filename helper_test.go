package linkpreview_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	linkpreview "github.com/rohmanhakim/link-preview"
	"github.com/rohmanhakim/link-preview/fetch"
	"github.com/rohmanhakim/link-preview/providers"
)

// fakeFetchClient serves canned responses by exact URL and records every
// request in order.
type fakeFetchClient struct {
	responses map[string]fetch.Response
	requested []string
}

func newFakeFetchClient() *fakeFetchClient {
	return &fakeFetchClient{responses: map[string]fetch.Response{}}
}

func (f *fakeFetchClient) serve(url string, status int, contentType string, body string) {
	f.responses[url] = fetch.Response{
		Status:  status,
		Headers: map[string]string{"content-type": contentType},
		Body:    []byte(body),
		URL:     url,
	}
}

func (f *fakeFetchClient) Get(_ context.Context, rawurl string, _ fetch.RequestOptions) fetch.Response {
	f.requested = append(f.requested, rawurl)
	if resp, ok := f.responses[rawurl]; ok {
		return resp
	}
	return fetch.Response{
		Status:  fetch.FailureStatus,
		Headers: map[string]string{},
		URL:     rawurl,
	}
}

func (f *fakeFetchClient) countRequests(url string) int {
	count := 0
	for _, requested := range f.requested {
		if requested == url {
			count++
		}
	}
	return count
}

// stubProvider and stubDirectory emulate a provider directory entry for
// watch.example.com without depending on the embedded registry.
type stubProvider struct{}

func (stubProvider) Name() string { return "Example Media" }

func (stubProvider) Build(rawurl string) (string, error) {
	return "http://media.example.com/oembed?format=json&url=" + rawurl, nil
}

type stubDirectory struct{}

func (stubDirectory) Find(rawurl string) providers.Provider {
	if strings.HasPrefix(rawurl, "http://watch.example.com/") {
		return stubProvider{}
	}
	return nil
}

func newClientForTest(t *testing.T, fetcher fetch.Client, maxRequests int) *linkpreview.Client {
	t.Helper()
	cfg, err := linkpreview.WithDefault().
		WithMaxRequests(maxRequests).
		WithHTTPClient(fetcher).
		WithProviderDirectory(stubDirectory{}).
		Build()
	require.NoError(t, err)
	return linkpreview.New(cfg)
}
