// Package translator wires the translation pipeline: normalization, parsing,
// device allocation and rung synthesis. A Translator owns the state of exactly
// one translation and cannot be reused; concurrent callers each build their
// own.
package translator

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/vk/stladder/internal/ctxlog"
	"github.com/vk/stladder/internal/device"
	"github.com/vk/stladder/internal/diag"
	"github.com/vk/stladder/internal/ladder"
	"github.com/vk/stladder/internal/parser"
	"github.com/vk/stladder/internal/source"
)

var (
	// ErrInvalidInput is returned for source text that is not valid UTF-8.
	ErrInvalidInput = errors.New("source is not valid UTF-8")
	// ErrAlreadyUsed is returned when Translate is called a second time.
	ErrAlreadyUsed = errors.New("translator already used")
)

// DefaultFamily is the target PLC family when none is given.
const DefaultFamily = "mitsubishi"

// Options configure a translation. The zero value uses the built-in
// classification rules and layout.
type Options struct {
	// TargetFamily is an opaque tag echoed into the program metadata.
	TargetFamily string
	Layout       ladder.Layout
	Classifier   device.Classifier
	// UnwrapPrograms translates PROGRAM bodies instead of skipping them.
	UnwrapPrograms bool
	// Now stamps the program metadata; time.Now when nil.
	Now func() time.Time
}

// Result is the plain-data outcome of one translation.
type Result struct {
	Program     ladder.Program
	Devices     device.Map
	Symbols     []device.Symbol
	Diagnostics diag.Report
}

// Translator runs the pipeline once.
type Translator struct {
	opts  Options
	table *device.Table
	diags *diag.Collector
	used  atomic.Bool
}

// New returns a Translator with a fresh symbol table and diagnostics.
func New(opts Options) *Translator {
	if opts.TargetFamily == "" {
		opts.TargetFamily = DefaultFamily
	}
	if opts.Layout == (ladder.Layout{}) {
		opts.Layout = ladder.DefaultLayout()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Translator{
		opts:  opts,
		table: device.NewTable(opts.Classifier),
		diags: &diag.Collector{},
	}
}

// Translate converts src. Problems in the PLC source are reported in the
// result's diagnostics; the only errors are ErrInvalidInput and
// ErrAlreadyUsed. ctx only carries the logger.
func (t *Translator) Translate(ctx context.Context, src string) (*Result, error) {
	if !t.used.CompareAndSwap(false, true) {
		return nil, ErrAlreadyUsed
	}
	if !utf8.ValidString(src) {
		return nil, ErrInvalidInput
	}
	logger := ctxlog.FromContext(ctx).With("component", "translator")

	lines := source.Normalize(src)
	logger.Debug("Normalized source.", "lines", len(lines))

	stmts := parser.Parse(lines, t.table, t.diags, parser.Options{UnwrapPrograms: t.opts.UnwrapPrograms})
	logger.Debug("Parsed statements.", "statements", len(stmts), "declared", t.table.Len())

	rungs := ladder.NewSynthesizer(t.table, t.diags, t.opts.Layout).Synthesize(stmts)

	res := &Result{
		Program: ladder.Program{
			Rungs: rungs,
			Metadata: ladder.Metadata{
				TargetPLCFamily: t.opts.TargetFamily,
				GeneratedAt:     t.opts.Now(),
			},
		},
		Devices:     t.table.Map(),
		Symbols:     t.table.Symbols(),
		Diagnostics: t.diags.Report(),
	}
	logger.Debug("Translation finished.",
		"rungs", len(rungs),
		"devices", res.Devices.Len(),
		"errors", len(res.Diagnostics.Errors),
		"warnings", len(res.Diagnostics.Warnings),
	)
	return res, nil
}

// Translate is shorthand for New(opts).Translate(ctx, src).
func Translate(ctx context.Context, src string, opts Options) (*Result, error) {
	return New(opts).Translate(ctx, src)
}
