package repl

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/vk/stladder/internal/api"
	"github.com/vk/stladder/internal/ctxlog"
	"github.com/vk/stladder/internal/report"
	"github.com/vk/stladder/internal/translator"
)

const helpText = `Enter Structured Text; blocks are translated once every IF, CASE and VAR is closed.
  :map     show the device map
  :source  show the session source
  :reset   start a new session
  :quit    leave
`

// Session is the state of one interactive session.
type Session struct {
	opts   translator.Options
	out    io.Writer
	source []string
	last   api.ConversionResponse
}

// NewSession returns an empty session printing to out.
func NewSession(opts translator.Options, out io.Writer) *Session {
	s := &Session{opts: opts, out: out}
	s.reset()
	return s
}

func (s *Session) reset() {
	s.source = nil
	s.last = api.ConversionResponse{DeviceMap: api.DeviceMap(nil)}
}

// Source is the accepted session text.
func (s *Session) Source() string {
	return strings.Join(s.source, "\n")
}

// Handle processes one complete chunk: a command or a block of source. It
// reports whether the session should end.
func (s *Session) Handle(ctx context.Context, chunk string) (quit bool) {
	trimmed := strings.TrimSpace(chunk)
	switch {
	case trimmed == "":
		return false
	case strings.HasPrefix(trimmed, ":"):
		return s.command(trimmed)
	}

	candidate := append(slices.Clone(s.source), chunk)
	resp := api.Convert(ctx, api.ConversionRequest{SourceCode: strings.Join(candidate, "\n")}, s.opts)

	newErrors := fresh(resp.Errors, s.last.Errors)
	if len(newErrors) > 0 {
		for _, e := range newErrors {
			fmt.Fprintf(s.out, "error: %s\n", e)
		}
		fmt.Fprintln(s.out, "input discarded")
		ctxlog.FromContext(ctx).Debug("Rejected chunk.", "errors", len(newErrors))
		return false
	}

	added := resp
	added.LadderData.Rungs = resp.LadderData.Rungs[min(len(s.last.LadderData.Rungs), len(resp.LadderData.Rungs)):]
	added.Errors = nil
	added.Warnings = fresh(resp.Warnings, s.last.Warnings)
	if err := report.Ladder(s.out, added); err != nil {
		ctxlog.FromContext(ctx).Error("Failed to print rungs.", "error", err)
	}

	s.source = candidate
	s.last = resp
	return false
}

func (s *Session) command(cmd string) bool {
	switch strings.ToLower(cmd) {
	case ":quit", ":q", ":exit":
		return true
	case ":reset":
		s.reset()
		fmt.Fprintln(s.out, "session cleared")
	case ":map":
		report.Devices(s.out, s.last)
	case ":source":
		if len(s.source) == 0 {
			fmt.Fprintln(s.out, "session is empty")
			break
		}
		for i, line := range strings.Split(s.Source(), "\n") {
			fmt.Fprintf(s.out, "%4d  %s\n", i+1, line)
		}
	case ":help":
		fmt.Fprint(s.out, helpText)
	default:
		fmt.Fprintf(s.out, "unknown command %s. Type :help for the list.\n", cmd)
	}
	return false
}

// fresh returns the messages of now that are not in before.
func fresh(now, before []string) []string {
	seen := make(map[string]int, len(before))
	for _, b := range before {
		seen[b]++
	}
	var out []string
	for _, n := range now {
		if seen[n] > 0 {
			seen[n]--
			continue
		}
		out = append(out, n)
	}
	return out
}
