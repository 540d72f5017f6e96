package client

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/stladder/internal/api"
)

// Converter sends one conversion request to a server.
type Converter interface {
	Convert(ctx context.Context, req api.ConversionRequest) (api.ConversionResponse, error)
}

// DefaultTimeout bounds one remote conversion.
const DefaultTimeout = 15 * time.Second

// New picks the transport from the URL scheme: http and https use the HTTP
// API, ws and wss use socket.io.
func New(rawURL string, timeout time.Duration) (Converter, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported server URL scheme %q (want http, https, ws or wss)", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("server URL %q has no host", rawURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if u.Scheme == "ws" || u.Scheme == "wss" {
		return NewLive(rawURL, timeout), nil
	}
	return NewHTTP(rawURL, timeout), nil
}
