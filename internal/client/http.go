package client

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"resty.dev/v3"

	"github.com/vk/stladder/internal/api"
	"github.com/vk/stladder/internal/ctxlog"
)

// HTTP is a client of the JSON API.
type HTTP struct {
	baseURL string
	timeout time.Duration
}

// NewHTTP returns a client for the server at baseURL.
func NewHTTP(baseURL string, timeout time.Duration) *HTTP {
	return &HTTP{baseURL: strings.TrimRight(baseURL, "/"), timeout: timeout}
}

func (h *HTTP) newClient() *resty.Client {
	return resty.New().
		SetBaseURL(h.baseURL).
		SetTimeout(h.timeout).
		SetHeader("Accept", "application/json")
}

// Convert posts req to /api/convert.
func (h *HTTP) Convert(ctx context.Context, req api.ConversionRequest) (api.ConversionResponse, error) {
	c := h.newClient()
	defer c.Close()

	return h.do(ctx, "/api/convert", c.R().SetBody(req))
}

// Upload posts the content of r as the multipart field "file" to
// /api/upload-convert.
func (h *HTTP) Upload(ctx context.Context, name string, r io.Reader) (api.ConversionResponse, error) {
	c := h.newClient()
	defer c.Close()

	return h.do(ctx, "/api/upload-convert", c.R().SetFileReader("file", name, r))
}

func (h *HTTP) do(ctx context.Context, path string, req *resty.Request) (api.ConversionResponse, error) {
	logger := ctxlog.FromContext(ctx).With("url", h.baseURL+path)
	logger.Debug("Sending conversion request.")

	var (
		resp   api.ConversionResponse
		failed api.ErrorResponse
	)
	res, err := req.
		SetContext(ctx).
		SetResult(&resp).
		SetError(&failed).
		Post(path)
	if err != nil {
		return api.ConversionResponse{}, fmt.Errorf("request to %s failed: %w", path, err)
	}
	if res.IsError() {
		if failed.Detail != "" {
			return api.ConversionResponse{}, fmt.Errorf("server returned %s: %s", res.Status(), failed.Detail)
		}
		return api.ConversionResponse{}, fmt.Errorf("server returned %s", res.Status())
	}

	logger.Debug("Received conversion response.", "status", res.StatusCode(), "success", resp.Success)
	return resp, nil
}
