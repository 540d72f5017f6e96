package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/vk/stladder/internal/api"
	"github.com/vk/stladder/internal/ctxlog"
)

// Live sends conversion requests over socket.io.
type Live struct {
	url     string
	timeout time.Duration
}

// NewLive returns a socket.io client for the server at rawURL. A ws or wss
// scheme is accepted in place of http or https.
func NewLive(rawURL string, timeout time.Duration) *Live {
	return &Live{url: rawURL, timeout: timeout}
}

// opResult is a private struct to safely pass results through the done channel.
type opResult struct {
	value api.ConversionResponse
	err   error
}

// Convert connects, emits one translate event and waits for the answer.
func (l *Live) Convert(ctx context.Context, req api.ConversionRequest) (api.ConversionResponse, error) {
	logger := ctxlog.FromContext(ctx).With("url", l.url)
	logger.Debug("Live conversion started.")
	defer logger.Debug("Live conversion finished.")

	parsedURL, err := url.Parse(l.url)
	if err != nil {
		return api.ConversionResponse{}, fmt.Errorf("failed to parse URL: %w", err)
	}
	scheme := map[string]string{"ws": "http", "wss": "https"}[parsedURL.Scheme]
	if scheme == "" {
		scheme = parsedURL.Scheme
	}
	path := parsedURL.Path
	if path == "" || path == "/" {
		path = "/socket.io/"
	}

	payload, err := toMap(req)
	if err != nil {
		return api.ConversionResponse{}, fmt.Errorf("encoding request: %w", err)
	}

	var isConnected atomic.Bool
	done := make(chan opResult, 1)
	finish := func(r opResult) {
		select {
		case done <- r:
		default:
		}
	}
	opCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	opts := socket.DefaultOptions()
	opts.SetPath(path)
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(fmt.Sprintf("%s://%s", scheme, parsedURL.Host), opts)
	io := manager.Socket("/", opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Debug("Connected, emitting translate event.", "sid", io.Id())
		io.Emit(api.EventTranslate, payload)
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connection refused")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		finish(opResult{err: fmt.Errorf("socket.io connection failed: %w", err)})
	})
	io.On(types.EventName(api.EventTranslation), func(data ...any) {
		var resp api.ConversionResponse
		if len(data) == 0 {
			finish(opResult{err: errors.New("translation event has no payload")})
			return
		}
		if err := remarshal(data[0], &resp); err != nil {
			finish(opResult{err: fmt.Errorf("decoding translation: %w", err)})
			return
		}
		finish(opResult{value: resp})
	})
	io.On(types.EventName(api.EventError), func(data ...any) {
		var e api.ErrorResponse
		if len(data) > 0 {
			_ = remarshal(data[0], &e)
		}
		finish(opResult{err: fmt.Errorf("server rejected request: %s", e.Detail)})
	})

	io.Connect()

	select {
	case <-opCtx.Done():
		if isConnected.Load() {
			return api.ConversionResponse{}, fmt.Errorf("timed out after connecting while waiting for event '%s'", api.EventTranslation)
		}
		return api.ConversionResponse{}, errors.New("timed out while waiting for initial connection")
	case res := <-done:
		return res.value, res.err
	}
}

func toMap(v any) (map[string]any, error) {
	var m map[string]any
	err := remarshal(v, &m)
	return m, err
}

func remarshal(src, dst any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
