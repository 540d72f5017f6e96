package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"

	"github.com/vk/stladder/internal/app"
	"github.com/vk/stladder/internal/report"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Exit codes.
const (
	CodeTranslation = 1
	CodeUsage       = 2
)

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("stladder", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
stladder - translate IEC 61131-3 Structured Text into ladder diagrams.

Usage:
  stladder [options] SOURCE
  stladder -serve [-port N]
  stladder -repl

Arguments:
  SOURCE
    A .st file, '-' for standard input, or a directory of .st files.

Options:
`)
		flagSet.PrintDefaults()
	}

	formatFlag := flagSet.String("format", string(report.FormatText), "Output format: text, table, json, csv, report or il.")
	plcFlag := flagSet.String("plc", "", "Target PLC family tag (default from settings, else mitsubishi).")
	configFlag := flagSet.String("config", "", "Path to an HCL settings file or directory.")
	serveFlag := flagSet.Bool("serve", false, "Run the HTTP and socket.io translation server.")
	portFlag := flagSet.Int("port", 0, "Server port; 0 uses the settings file (default 8000).")
	replFlag := flagSet.Bool("repl", false, "Start the interactive prompt.")
	remoteFlag := flagSet.String("remote", "", "Translate SOURCE on a server: http(s)://host:port or ws(s)://host:port.")
	outFlag := flagSet.String("out", "", "Directory for per-file batch output.")
	workersFlag := flagSet.Int("workers", runtime.NumCPU(), "Number of concurrent workers in batch mode.")
	unwrapFlag := flagSet.Bool("unwrap-programs", false, "Translate PROGRAM bodies instead of skipping them.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: CodeUsage, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: CodeUsage, Message: fmt.Sprintf("expected one SOURCE, got %d", flagSet.NArg())}
	}
	source := flagSet.Arg(0)
	if source == "" && !*serveFlag && !*replFlag {
		slog.Debug("No source provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	format, err := report.ParseFormat(*formatFlag)
	if err != nil {
		return nil, false, &ExitError{Code: CodeUsage, Message: err.Error()}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: CodeUsage, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: CodeUsage, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		Source:         source,
		ConfigPath:     *configFlag,
		Format:         format,
		PLCType:        strings.TrimSpace(*plcFlag),
		Serve:          *serveFlag,
		Port:           *portFlag,
		REPL:           *replFlag,
		Remote:         *remoteFlag,
		OutDir:         *outFlag,
		Workers:        *workersFlag,
		UnwrapPrograms: *unwrapFlag,
		LogFormat:      logFormat,
		LogLevel:       logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: CodeUsage, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "mode", config.Mode())
	return config, false, nil
}
