// Package media turns stored image references into URLs.
package media

import (
	"context"
	"net/url"
	"strings"
)

// Resolver maps an opaque media reference to a URL clients can fetch.
type Resolver interface {
	URL(ctx context.Context, ref string) (string, error)
}

// StaticResolver serves media from a fixed base URL.
type StaticResolver struct {
	BaseURL string
}

// NewStaticResolver creates a new StaticResolver.
func NewStaticResolver(baseURL string) *StaticResolver {
	return &StaticResolver{BaseURL: strings.TrimRight(baseURL, "/")}
}

// URL joins the base URL and ref. Absolute refs are returned unchanged.
func (r *StaticResolver) URL(_ context.Context, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return ref, nil
	}
	return r.BaseURL + "/" + strings.TrimLeft(ref, "/"), nil
}
