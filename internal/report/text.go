package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/vk/stladder/internal/api"
	"github.com/vk/stladder/internal/device"
)

// Text writes the conversion report: summary, device statistics, device
// details, rung details, then errors and warnings.
func Text(w io.Writer, resp api.ConversionResponse) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "ST -> Ladder conversion report\n")
	fmt.Fprintf(bw, "Generated: %s\n", resp.LadderData.Metadata.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(bw, "PLC type: %s\n", resp.LadderData.Metadata.PLCType)
	fmt.Fprintf(bw, "Processing time: %.3fs\n", resp.ProcessingTime)
	fmt.Fprintf(bw, "Result: %s\n\n", successWord(resp.Success))

	elements := 0
	for _, r := range resp.LadderData.Rungs {
		elements += len(r.Elements)
	}
	fmt.Fprintf(bw, "=== Summary ===\n")
	fmt.Fprintf(bw, "Rungs: %d\n", len(resp.LadderData.Rungs))
	fmt.Fprintf(bw, "Elements: %d\n\n", elements)

	fmt.Fprintf(bw, "=== Device statistics ===\n")
	for _, c := range device.Classes {
		fmt.Fprintf(bw, "%s: %d\n", c, len(resp.DeviceMap[c.Key()]))
	}
	bw.WriteString("\n")

	rows := deviceRows(resp)
	if len(rows) > 0 {
		fmt.Fprintf(bw, "=== Device details ===\n")
		var current device.Class = -1
		for _, r := range rows {
			if r.Class != current {
				if current >= 0 {
					bw.WriteString("\n")
				}
				fmt.Fprintf(bw, "[%s]\n", r.Class)
				current = r.Class
			}
			fmt.Fprintf(bw, "  %s: %s\n", r.Address, r.Variable)
		}
		bw.WriteString("\n")
	}

	if len(resp.LadderData.Rungs) > 0 {
		fmt.Fprintf(bw, "=== Rung details ===\n")
		for _, r := range resp.LadderData.Rungs {
			fmt.Fprintf(bw, "Rung %d (line %d):\n", r.Number, r.Line)
			for i, e := range r.Elements {
				fmt.Fprintf(bw, "  %d. %s\n", i+1, elementLabel(e))
			}
			bw.WriteString("\n")
		}
	}

	writeList(bw, "Errors", resp.Errors)
	writeList(bw, "Warnings", resp.Warnings)
	return bw.Flush()
}

func writeList(w *bufio.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "=== %s ===\n", title)
	for i, it := range items {
		fmt.Fprintf(w, "%d. %s\n", i+1, it)
	}
	w.WriteString("\n")
}

func successWord(ok bool) string {
	if ok {
		return "success"
	}
	return "failed"
}

// elementLabel is e.g. "contact X0 (Start)", "contact /X1 (Stop)" or
// "coil Y0 (Motor := TRUE)".
func elementLabel(e api.Element) string {
	addr := e.Address
	if e.IsNormallyOpen != nil && !*e.IsNormallyOpen {
		addr = "/" + addr
	}
	return fmt.Sprintf("%s %s (%s)", e.Type, addr, e.Description)
}

// Ladder writes an ASCII view of every rung followed by the diagnostics.
// Parallel contacts of one column are shown as [ X0 | X1 ].
func Ladder(w io.Writer, resp api.ConversionResponse) error {
	bw := bufio.NewWriter(w)
	for _, r := range resp.LadderData.Rungs {
		var (
			cells []string
			coil  api.Element
		)
		for _, col := range columns(r) {
			names := make([]string, len(col))
			for i, e := range col {
				names[i] = contactName(e)
			}
			cells = append(cells, "[ "+strings.Join(names, " | ")+" ]")
		}
		if n := len(r.Elements); n > 0 {
			coil = r.Elements[n-1]
		}
		cells = append(cells, "( "+coil.Address+" )")
		fmt.Fprintf(bw, "%3d |--%s  %s\n", r.Number, strings.Join(cells, "--"), coil.Description)
	}
	for _, e := range resp.Errors {
		fmt.Fprintf(bw, "error: %s\n", e)
	}
	for _, wn := range resp.Warnings {
		fmt.Fprintf(bw, "warning: %s\n", wn)
	}
	return bw.Flush()
}

func contactName(e api.Element) string {
	if e.IsNormallyOpen != nil && !*e.IsNormallyOpen {
		return "/" + e.Address
	}
	return e.Address
}

// columns groups the contacts of a rung by column, in order.
func columns(r api.Rung) [][]api.Element {
	var cols [][]api.Element
	for _, e := range r.Elements {
		if e.Type != "contact" {
			continue
		}
		for len(cols) <= e.Column {
			cols = append(cols, nil)
		}
		cols[e.Column] = append(cols[e.Column], e)
	}
	return cols
}
