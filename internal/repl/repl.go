package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/peterh/liner"
	"github.com/tebeka/atexit"

	"github.com/vk/stladder/internal/ctxlog"
	"github.com/vk/stladder/internal/parser"
	"github.com/vk/stladder/internal/translator"
)

const (
	promptMain  = "st> "
	promptCont  = "... "
	historyFile = ".stladder_history"
)

// Prompter reads one line; *liner.State implements it.
type Prompter interface {
	Prompt(prompt string) (string, error)
}

// ReadChunk reads lines until the text has no open block. A line starting
// with ':' on the first prompt is returned on its own. ok is false at end of
// input.
func ReadChunk(p Prompter) (chunk string, ok bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := p.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			// Hand back a half-typed block so it is not lost silently.
			return b.String(), b.Len() > 0
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() == 0 && strings.HasPrefix(strings.TrimSpace(line), ":") {
			return line, true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if parser.OpenBlocks(b.String()) == 0 {
			return b.String(), true
		}
	}
}

// Loop feeds chunks from p into a new session until :quit or end of input.
func Loop(ctx context.Context, p Prompter, opts translator.Options, out io.Writer, record func(string)) {
	s := NewSession(opts, out)
	for {
		chunk, ok := ReadChunk(p)
		if !ok {
			return
		}
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		if record != nil {
			record(chunk)
		}
		if s.Handle(ctx, chunk) {
			return
		}
	}
}

// Run starts the interactive prompt on the terminal. History is loaded from
// and saved to ~/.stladder_history, also when the process leaves through
// atexit.Exit.
func Run(ctx context.Context, opts translator.Options, out io.Writer) error {
	logger := ctxlog.FromContext(ctx)

	ln := liner.NewLiner()
	ln.SetCtrlCAborts(true)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
	}
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	var once sync.Once
	closeLiner := func() {
		once.Do(func() {
			if histPath != "" {
				if f, err := os.Create(histPath); err == nil {
					_, _ = ln.WriteHistory(f)
					_ = f.Close()
				} else {
					logger.Warn("Could not save history.", "path", histPath, "error", err)
				}
			}
			ln.Close()
		})
	}
	atexit.Register(closeLiner)
	defer closeLiner()

	fmt.Fprintln(out, "stladder interactive mode. Type :help for commands.")
	Loop(ctx, ln, opts, out, func(chunk string) {
		ln.AppendHistory(strings.ReplaceAll(chunk, "\n", " "))
	})
	return nil
}
