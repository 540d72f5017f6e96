package server

import (
	"encoding/json"
	"fmt"

	"github.com/zishang520/socket.io/v2/socket"

	"github.com/vk/stladder/internal/api"
	"github.com/vk/stladder/internal/ctxlog"
)

func (s *Server) newSocketIO() *socket.Server {
	logger := ctxlog.FromContext(s.ctx)
	io := socket.NewServer(nil, nil)

	io.On("connection", func(clients ...any) {
		client, ok := clients[0].(*socket.Socket)
		if !ok {
			return
		}
		logger.Debug("Socket connected.", "sid", client.Id())

		client.On(api.EventTranslate, func(args ...any) {
			s.onTranslate(client, args...)
		})
		client.On("disconnect", func(reason ...any) {
			logger.Debug("Socket disconnected.", "sid", client.Id(), "reason", reason)
		})
	})
	return io
}

// onTranslate answers one "translate" event on the same socket.
func (s *Server) onTranslate(client *socket.Socket, args ...any) {
	logger := ctxlog.FromContext(s.ctx).With("sid", client.Id())

	var req api.ConversionRequest
	if len(args) == 0 {
		client.Emit(api.EventError, map[string]any{"detail": "translate event has no payload"})
		return
	}
	if err := remarshal(args[0], &req); err != nil {
		logger.Warn("Rejected translate event.", "error", err)
		client.Emit(api.EventError, map[string]any{"detail": fmt.Sprintf("invalid translate payload: %v", err)})
		return
	}

	resp := s.translate(s.ctx, req)
	var payload map[string]any
	if err := remarshal(resp, &payload); err != nil {
		logger.Error("Could not encode translation.", "error", err)
		return
	}
	client.Emit(api.EventTranslation, payload)
}

// remarshal copies src into dst through JSON, so socket payloads and API
// types share one wire shape.
func remarshal(src, dst any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
