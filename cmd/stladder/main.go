package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tebeka/atexit"

	"github.com/vk/stladder/internal/app"
	"github.com/vk/stladder/internal/cli"
	"github.com/vk/stladder/internal/hcl"
)

// main is the entrypoint for the stladder application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdin, os.Stdout, os.Stderr, os.Args[1:])
	stop()

	// atexit runs registered handlers, such as the REPL history flush.
	atexit.Exit(exitCode(err, os.Stderr))
}

// exitCode reports err and maps it to the process exit code.
func exitCode(err error, errW io.Writer) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, app.ErrTranslation) {
		return cli.CodeTranslation
	}
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		fmt.Fprintln(errW, exitErr.Message)
		return exitErr.Code
	}
	fmt.Fprintln(errW, err)
	return 1
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, in io.Reader, outW, errW io.Writer, args []string) (err error) {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// The app panics on critical config errors, so we recover here to provide
	// a clean exit message to the user.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	loader := hcl.NewLoader()
	stladderApp := app.NewApp(in, outW, errW, appConfig, loader)

	return stladderApp.Run(ctx)
}
