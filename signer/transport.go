package signer

import (
	"net/http"
)

// RewriteFunc transforms a request before it is sent.
type RewriteFunc func(*http.Request) (*http.Request, error)

// HookTransport applies Hook to every request and hands the result to Base
// unchanged.
type HookTransport struct {
	Base http.RoundTripper
	Hook RewriteFunc
}

// NewTransport returns a RoundTripper that signs every request with s before
// passing it to base. A nil base uses http.DefaultTransport.
func NewTransport(s *Signer, base http.RoundTripper) *HookTransport {
	return &HookTransport{Base: base, Hook: s.Rewrite}
}

// RoundTrip implements http.RoundTripper.
func (t *HookTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rewritten, err := t.Hook(req)
	if err != nil {
		return nil, err
	}
	return t.base().RoundTrip(rewritten)
}

func (t *HookTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}
