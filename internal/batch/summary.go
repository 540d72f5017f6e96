package batch

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
)

// WriteTable renders one row per file with its rung and diagnostic counts.
func (s *Summary) WriteTable(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Batch %s", s.Root))
	t.AppendHeader(table.Row{"File", "Result", "Rungs", "Errors", "Warnings", "Output"})
	for _, r := range s.Results {
		name := r.Path
		if rel, err := filepath.Rel(s.Root, r.Path); err == nil && rel != "." {
			name = rel
		}
		result := "ok"
		switch {
		case r.Err != nil:
			result = r.Err.Error()
		case !r.Response.Success:
			result = "errors"
		}
		t.AppendRow(table.Row{
			name,
			result,
			len(r.Response.LadderData.Rungs),
			len(r.Response.Errors),
			len(r.Response.Warnings),
			r.Output,
		})
	}
	t.AppendFooter(table.Row{"Total", fmt.Sprintf("%d failed", s.Failed()), "", "", "", fmt.Sprintf("%.3fs", s.Elapsed.Seconds())})
	t.Render()
}
