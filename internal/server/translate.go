package server

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/stladder/internal/api"
	"github.com/vk/stladder/internal/ctxlog"
	"github.com/vk/stladder/internal/translator"
)

// translate runs one conversion under the configured timeout. A panic or a
// timeout becomes a failed response instead of tearing the connection down.
func (s *Server) translate(reqCtx context.Context, req api.ConversionRequest) api.ConversionResponse {
	start := time.Now()
	logger := ctxlog.FromContext(s.ctx)
	ctx := ctxlog.WithLogger(reqCtx, logger)
	if s.cfg.TranslateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.TranslateTimeout)
		defer cancel()
	}

	family := req.PLCType
	if family == "" {
		family = s.base.TargetFamily
	}
	if family == "" {
		family = translator.DefaultFamily
	}

	done := make(chan api.ConversionResponse, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Translation panicked.", "panic", r)
				done <- api.Failure(family, fmt.Errorf("internal error: %v", r), time.Now(), time.Since(start))
			}
		}()
		done <- s.convert(ctx, req, s.base)
	}()

	select {
	case resp := <-done:
		logger.Debug("Translated request.", "success", resp.Success, "rungs", len(resp.LadderData.Rungs), "elapsed", time.Since(start))
		return resp
	case <-ctx.Done():
		logger.Warn("Translation abandoned.", "error", ctx.Err())
		err := fmt.Errorf("translation timed out after %s", s.cfg.TranslateTimeout)
		if ctx.Err() == context.Canceled {
			err = fmt.Errorf("translation cancelled: %w", ctx.Err())
		}
		return api.Failure(family, err, time.Now(), time.Since(start))
	}
}
