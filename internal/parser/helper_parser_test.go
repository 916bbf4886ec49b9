package parser_test

import (
	"context"

	"github.com/rohmanhakim/link-preview/fetch"
)

// fakeFetchClient serves canned responses by exact URL and records every
// request it sees.
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
