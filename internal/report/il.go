package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/vk/stladder/internal/api"
)

// alwaysOn is the special relay that is ON during every scan on MELSEC
// CPUs. It drives coils that have no guard.
const alwaysOn = "SM400"

// InstructionList writes the program as MELSEC style mnemonics. A column of
// parallel contacts becomes an LD/OR block joined to the rest with ANB.
func InstructionList(w io.Writer, resp api.ConversionResponse) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "; instruction list, %s\n", resp.LadderData.Metadata.PLCType)

	for _, r := range resp.LadderData.Rungs {
		fmt.Fprintf(bw, "; rung %d, line %d\n", r.Number, r.Line)
		cols := columns(r)
		if len(cols) == 0 {
			fmt.Fprintf(bw, "LD %s\n", alwaysOn)
		}
		for i, col := range cols {
			first := i == 0
			if len(col) == 1 {
				op := "AND"
				if first {
					op = "LD"
				}
				fmt.Fprintf(bw, "%s %s\n", mnemonic(op, col[0]), col[0].Address)
				continue
			}
			for j, e := range col {
				op := "OR"
				if j == 0 {
					op = "LD"
				}
				fmt.Fprintf(bw, "%s %s\n", mnemonic(op, e), e.Address)
			}
			if !first {
				fmt.Fprintln(bw, "ANB")
			}
		}
		if n := len(r.Elements); n > 0 {
			fmt.Fprintf(bw, "OUT %s\n", r.Elements[n-1].Address)
		}
	}
	fmt.Fprintln(bw, "END")
	return bw.Flush()
}

// mnemonic appends the inverted-contact form: LDI, ANI, ORI.
func mnemonic(op string, e api.Element) string {
	if e.IsNormallyOpen == nil || *e.IsNormallyOpen {
		return op
	}
	switch op {
	case "LD":
		return "LDI"
	case "AND":
		return "ANI"
	default:
		return "ORI"
	}
}
