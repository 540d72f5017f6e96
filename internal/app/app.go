package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/stladder/internal/config"
	"github.com/vk/stladder/internal/ctxlog"
	"github.com/vk/stladder/internal/translator"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	in       io.Reader
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	settings *config.Model
	base     translator.Options
}

// NewApp is the constructor for the main application. Documents are written
// to outW and logs to logW. A settings file that cannot be loaded is a fatal
// startup error and panics.
func NewApp(in io.Reader, outW, logW io.Writer, appConfig *Config, loader config.Loader) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	var paths []string
	if appConfig.ConfigPath != "" {
		paths = append(paths, appConfig.ConfigPath)
	}
	settings, err := loader.Load(ctx, paths...)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded.", "paths", paths)

	// Flags win over the settings file.
	if appConfig.PLCType != "" {
		settings.Translate.DefaultFamily = appConfig.PLCType
	}
	if appConfig.UnwrapPrograms {
		settings.Translate.UnwrapPrograms = true
	}
	if appConfig.Port > 0 {
		settings.Server.Port = appConfig.Port
	}

	base, err := settings.TranslatorOptions()
	if err != nil {
		panic(fmt.Errorf("failed to build translator options: %w", err))
	}
	logger.Debug("Translator options ready.", "family", base.TargetFamily, "rules", len(settings.Rules), "unwrap_programs", base.UnwrapPrograms)

	return &App{
		in:       in,
		outW:     outW,
		logger:   logger,
		config:   appConfig,
		settings: settings,
		base:     base,
	}
}

// Settings returns the merged settings. This is primarily for testing.
func (a *App) Settings() *config.Model {
	return a.settings
}
