// Package report renders a conversion response in the formats offered by the
// CLI and by the original download panel: JSON, a CSV device list, a plain
// text conversion report, go-pretty tables, an ASCII ladder view and a
// MELSEC style instruction list.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/vk/stladder/internal/api"
	"github.com/vk/stladder/internal/device"
)

// Format names an output format.
type Format string

const (
	FormatText   Format = "text"
	FormatTable  Format = "table"
	FormatJSON   Format = "json"
	FormatCSV    Format = "csv"
	FormatReport Format = "report"
	FormatIL     Format = "il"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatTable, FormatJSON, FormatCSV, FormatReport, FormatIL}

// ErrUnknownFormat is returned by ParseFormat and Write.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(strings.TrimSpace(s)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w %q (want one of %s)", ErrUnknownFormat, s, formatList())
}

func formatList() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// Extension is the file extension used when writing f to disk.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatCSV:
		return ".csv"
	case FormatIL:
		return ".il"
	default:
		return ".txt"
	}
}

// Write renders resp in format f.
func Write(w io.Writer, f Format, resp api.ConversionResponse) error {
	switch f {
	case FormatText:
		return Ladder(w, resp)
	case FormatTable:
		return Table(w, resp)
	case FormatJSON:
		return JSON(w, resp)
	case FormatCSV:
		return CSV(w, resp)
	case FormatReport:
		return Text(w, resp)
	case FormatIL:
		return InstructionList(w, resp)
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, f)
	}
}

// JSON writes the response as indented JSON, exactly as the HTTP API does.
func JSON(w io.Writer, resp api.ConversionResponse) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// deviceRow is one entry of the device map in display order.
type deviceRow struct {
	Address  string
	Variable string
	Class    device.Class
}

// deviceRows flattens the device map by class, then by address index.
func deviceRows(resp api.ConversionResponse) []deviceRow {
	var rows []deviceRow
	for _, c := range device.Classes {
		entries := resp.DeviceMap[c.Key()]
		start := len(rows)
		for addr, name := range entries {
			rows = append(rows, deviceRow{Address: addr, Variable: name, Class: c})
		}
		part := rows[start:]
		sort.Slice(part, func(i, j int) bool {
			return addressIndex(part[i].Address) < addressIndex(part[j].Address)
		})
	}
	return rows
}

func addressIndex(addr string) int {
	n, err := strconv.Atoi(strings.TrimLeft(addr, "ABCDEFGHIJKLMNOPQRSTUVWXYZ"))
	if err != nil {
		return -1
	}
	return n
}
