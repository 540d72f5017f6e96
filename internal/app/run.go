package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vk/stladder/internal/api"
	"github.com/vk/stladder/internal/batch"
	"github.com/vk/stladder/internal/client"
	"github.com/vk/stladder/internal/ctxlog"
	"github.com/vk/stladder/internal/repl"
	"github.com/vk/stladder/internal/report"
	"github.com/vk/stladder/internal/server"
)

// ErrTranslation is returned when a translation reported errors. The
// document has already been written when Run returns it.
var ErrTranslation = errors.New("translation reported errors")

// Run executes the mode selected by the configuration. It blocks in server
// mode until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	mode, err := a.mode()
	if err != nil {
		return err
	}
	a.logger.Debug("App.Run method started.", "mode", mode)
	defer a.logger.Debug("App.Run method finished.")

	switch mode {
	case ModeServe:
		return server.New(ctx, a.settings.Server, a.base).ListenAndServe(ctx)
	case ModeREPL:
		return repl.Run(ctx, a.base, a.outW)
	case ModeBatch:
		return a.runBatch(ctx)
	case ModeRemote:
		return a.runRemote(ctx)
	default:
		return a.runFile(ctx)
	}
}

func (a *App) mode() (Mode, error) {
	m := a.config.Mode()
	if m != ModeFile && m != ModeRemote {
		return m, nil
	}
	if a.config.Source == StdinSource {
		return m, nil
	}
	info, err := os.Stat(a.config.Source)
	if err != nil {
		return m, fmt.Errorf("reading source: %w", err)
	}
	if info.IsDir() {
		if m == ModeRemote {
			return m, errors.New("-remote translates a single file, not a directory")
		}
		return ModeBatch, nil
	}
	return m, nil
}

func (a *App) readSource() (string, error) {
	if a.config.Source == StdinSource {
		data, err := io.ReadAll(a.in)
		if err != nil {
			return "", fmt.Errorf("reading standard input: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(a.config.Source)
	if err != nil {
		return "", fmt.Errorf("reading source: %w", err)
	}
	return string(data), nil
}

func (a *App) runFile(ctx context.Context) error {
	src, err := a.readSource()
	if err != nil {
		return err
	}
	resp := api.Convert(ctx, api.ConversionRequest{SourceCode: src}, a.base)
	return a.write(resp)
}

func (a *App) runRemote(ctx context.Context) error {
	src, err := a.readSource()
	if err != nil {
		return err
	}
	c, err := client.New(a.config.Remote, a.settings.Server.TranslateTimeout)
	if err != nil {
		return err
	}
	a.logger.Info("🛰️ Sending source to remote translator", "url", a.config.Remote)
	resp, err := c.Convert(ctx, api.ConversionRequest{SourceCode: src, PLCType: a.config.PLCType})
	if err != nil {
		return fmt.Errorf("remote translation failed: %w", err)
	}
	return a.write(resp)
}

func (a *App) write(resp api.ConversionResponse) error {
	if err := report.Write(a.outW, a.config.Format, resp); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if len(resp.Errors) > 0 {
		return ErrTranslation
	}
	return nil
}

func (a *App) runBatch(ctx context.Context) error {
	a.logger.Info("🚀 Translating directory", "root", a.config.Source, "workers", a.config.Workers)
	sum, err := batch.Run(ctx, a.config.Source, batch.Options{
		Workers: a.config.Workers,
		OutDir:  a.config.OutDir,
		Format:  a.config.Format,
		Base:    a.base,
	})
	if err != nil {
		return fmt.Errorf("batch translation failed: %w", err)
	}
	sum.WriteTable(a.outW)
	a.logger.Info("🏁 Batch finished.", "files", len(sum.Results), "failed", sum.Failed())

	for _, r := range sum.Results {
		if r.Err != nil || len(r.Response.Errors) > 0 {
			return ErrTranslation
		}
	}
	return nil
}
