// Package storetest provides an in-memory object-store double keyed by
// URL prefix, used by RPC-handler and gossip-dispatcher tests.
package storetest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// Responder produces a canned HTTP response for a matched URL.
type Responder struct {
	Status int
	Body   string
}

// Mock is a Client implementation that matches requests by URL prefix and
// records every call it receives for assertions.
type Mock struct {
	mu        sync.Mutex
	responses map[string]Responder
	calls     []string
}

// NewMock returns an empty Mock. Use Respond to register canned answers
// before exercising it.
func NewMock() *Mock {
	return &Mock{responses: make(map[string]Responder)}
}

// Respond registers the response returned for any request whose URL has
// the given prefix. Longer, more specific prefixes should be registered
// when a request path and its subpath (e.g. "/api/v0/pin/add" vs
// "/api/v0/pin/ls") need different answers.
func (m *Mock) Respond(urlPrefix string, status int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[urlPrefix] = Responder{Status: status, Body: body}
}

// Calls returns every URL (in call order) that the mock was asked to
// serve, regardless of whether a matching response was registered.
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *Mock) resolve(url string) (*http.Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, url)

	var best string
	var bestResp Responder
	found := false
	for prefix, resp := range m.responses {
		if strings.HasPrefix(url, prefix) && len(prefix) >= len(best) {
			best = prefix
			bestResp = resp
			found = true
		}
	}
	m.mu.Unlock()

	if !found {
		return nil, fmt.Errorf("storetest: no response registered for %s", url)
	}
	return &http.Response{
		StatusCode: bestResp.Status,
		Body:       io.NopCloser(strings.NewReader(bestResp.Body)),
		Header:     make(http.Header),
	}, nil
}

// Post implements objectstore.Client.
func (m *Mock) Post(_ context.Context, url string) (*http.Response, error) {
	return m.resolve(url)
}

// PostMultipart implements objectstore.Client. The multipart body itself
// isn't inspected; only the URL is used to pick a response.
func (m *Mock) PostMultipart(_ context.Context, url, _ string, _ []byte) (*http.Response, error) {
	return m.resolve(url)
}
