package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/vk/stladder/internal/api"
)

// Table writes the rungs and the device map as two go-pretty tables.
func Table(w io.Writer, resp api.ConversionResponse) error {
	rungs := table.NewWriter()
	rungs.SetOutputMirror(w)
	rungs.SetTitle(fmt.Sprintf("Rungs (%s)", resp.LadderData.Metadata.PLCType))
	rungs.AppendHeader(table.Row{"#", "Line", "Contacts", "Coil", "Description"})
	for _, r := range resp.LadderData.Rungs {
		var contacts []string
		for _, col := range columns(r) {
			names := make([]string, len(col))
			for i, e := range col {
				names[i] = contactName(e)
			}
			contacts = append(contacts, strings.Join(names, "|"))
		}
		var coil api.Element
		if n := len(r.Elements); n > 0 {
			coil = r.Elements[n-1]
		}
		rungs.AppendRow(table.Row{r.Number, r.Line, strings.Join(contacts, " "), coil.Address, coil.Description})
	}
	rungs.AppendFooter(table.Row{"", "", "", "Total", len(resp.LadderData.Rungs)})
	rungs.Render()

	Devices(w, resp)

	if len(resp.Errors)+len(resp.Warnings) > 0 {
		diags := table.NewWriter()
		diags.SetOutputMirror(w)
		diags.SetTitle("Diagnostics")
		diags.AppendHeader(table.Row{"Severity", "Message"})
		for _, e := range resp.Errors {
			diags.AppendRow(table.Row{"error", e})
		}
		for _, wn := range resp.Warnings {
			diags.AppendRow(table.Row{"warning", wn})
		}
		diags.Render()
	}
	return nil
}

// Devices writes the device map as a go-pretty table.
func Devices(w io.Writer, resp api.ConversionResponse) {
	devices := table.NewWriter()
	devices.SetOutputMirror(w)
	devices.SetTitle("Devices")
	devices.AppendHeader(table.Row{"Address", "Variable", "Class"})
	rows := deviceRows(resp)
	for _, r := range rows {
		devices.AppendRow(table.Row{r.Address, r.Variable, r.Class.String()})
	}
	devices.AppendFooter(table.Row{"", "Total", len(rows)})
	devices.Render()
}
