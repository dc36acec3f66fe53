// Package content fetches the documents behind post contentUri values.
package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"engagelayer/internal/config"

	"resty.dev/v3"
)

const (
	defaultGateway = "https://ipfs.io/ipfs/"

	// maxBody caps how much of a document is kept. Post bodies are short;
	// anything longer is truncated, not rejected.
	maxBody = 64 * 1024
)

// Resolver turns an opaque contentUri into displayable text. ipfs:// URIs go
// through the configured gateway, http(s) URIs are fetched directly and
// anything else is treated as inline content.
type Resolver struct {
	Logger *slog.Logger
	Config *config.Config

	client  *resty.Client
	gateway string
}

func (r *Resolver) Init(context.Context) error {
	r.Logger = r.Logger.With("component", "content.Resolver")

	r.gateway = r.Config.IPFSGateway
	if r.gateway == "" {
		r.gateway = defaultGateway
	}
	if !strings.HasSuffix(r.gateway, "/") {
		r.gateway += "/"
	}

	r.client = resty.NewWithTransportSettings(&resty.TransportSettings{
		DialerTimeout:         5 * time.Second,
		IdleConnTimeout:       5 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 5 * time.Second,
	})

	return nil
}

func (r *Resolver) Shutdown(context.Context) error {
	return r.client.Close()
}

// Resolve fetches the content behind uri. Inline content comes back as-is.
func (r *Resolver) Resolve(ctx context.Context, uri string) (string, error) {
	var url string
	switch {
	case strings.HasPrefix(uri, "ipfs://"):
		url = r.gateway + strings.TrimPrefix(uri, "ipfs://")
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		url = uri
	default:
		return uri, nil
	}

	resp, err := r.client.R().WithContext(ctx).Get(url)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("fetching %s: %s", url, resp.Status())
	}

	body := resp.String()
	if len(body) > maxBody {
		body = body[:maxBody]
	}
	return body, nil
}
