// Package batch translates every .st file under a directory with a bounded
// pool of workers. Each file gets its own Translator.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vk/stladder/internal/api"
	"github.com/vk/stladder/internal/ctxlog"
	"github.com/vk/stladder/internal/fsutil"
	"github.com/vk/stladder/internal/report"
	"github.com/vk/stladder/internal/translator"
)

// SourceExtension selects the files a batch picks up.
const SourceExtension = ".st"

// Options configure a batch run.
type Options struct {
	// Workers bounds concurrent translations; values below 1 mean one.
	Workers int
	// OutDir receives one output file per source, mirroring the source tree.
	// Nothing is written when it is empty.
	OutDir string
	Format report.Format
	Base   translator.Options
}

// FileResult is the outcome for one source file.
type FileResult struct {
	Path string
	// Output is the written file, empty when OutDir is not set.
	Output   string
	Response api.ConversionResponse
	// Err is set when the file could not be read or written.
	Err error
}

// Failed reports whether the file could not be processed or translated
// with errors.
func (r FileResult) Failed() bool {
	return r.Err != nil || !r.Response.Success
}

// Summary lists the results in source path order.
type Summary struct {
	Root    string
	Results []FileResult
	Elapsed time.Duration
}

// Failed counts the failed files.
func (s *Summary) Failed() int {
	n := 0
	for _, r := range s.Results {
		if r.Failed() {
			n++
		}
	}
	return n
}

// Run translates every source file under root. Problems with single files
// are recorded in their result; the returned error is only set when the tree
// cannot be listed or ctx is cancelled.
func Run(ctx context.Context, root string, opts Options) (*Summary, error) {
	logger := ctxlog.FromContext(ctx).With("component", "batch", "root", root)
	start := time.Now()

	files, err := fsutil.FindFilesByExtension(root, SourceExtension)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	if opts.Format == "" {
		opts.Format = report.FormatJSON
	}
	workers := max(opts.Workers, 1)
	logger.Debug("Batch started.", "files", len(files), "workers", workers)

	base := root
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		base = filepath.Dir(root)
	}

	results := make([]FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = translateFile(gctx, base, path, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sum := &Summary{Root: root, Results: results, Elapsed: time.Since(start)}
	logger.Debug("Batch finished.", "files", len(results), "failed", sum.Failed(), "elapsed", sum.Elapsed)
	return sum, nil
}

func translateFile(ctx context.Context, base, path string, opts Options) FileResult {
	logger := ctxlog.FromContext(ctx).With("file", path)
	res := FileResult{Path: path}

	src, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("reading source: %w", err)
		logger.Warn("Could not read source.", "error", err)
		return res
	}
	res.Response = api.Convert(ctx, api.ConversionRequest{SourceCode: string(src)}, opts.Base)
	logger.Debug("Translated file.", "success", res.Response.Success, "rungs", len(res.Response.LadderData.Rungs))

	if opts.OutDir == "" {
		return res
	}
	out, err := outputPath(base, path, opts.OutDir, opts.Format.Extension())
	if err != nil {
		res.Err = err
		return res
	}
	if err := writeOutput(out, opts.Format, res.Response); err != nil {
		res.Err = err
		logger.Warn("Could not write output.", "output", out, "error", err)
		return res
	}
	res.Output = out
	return res
}

// outputPath mirrors path below outDir with its extension replaced.
func outputPath(base, path, outDir, ext string) (string, error) {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return "", fmt.Errorf("locating %s below %s: %w", path, base, err)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + ext
	return filepath.Join(outDir, rel), nil
}

func writeOutput(out string, f report.Format, resp api.ConversionResponse) error {
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	file, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	if err := report.Write(file, f, resp); err != nil {
		file.Close()
		return fmt.Errorf("writing %s: %w", out, err)
	}
	return file.Close()
}
