package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/vk/stladder/internal/api"
)

// CSV writes the device list as `address,variable,class` rows.
func CSV(w io.Writer, resp api.ConversionResponse) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"address", "variable", "class"}); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range deviceRows(resp) {
		if err := cw.Write([]string{r.Address, r.Variable, r.Class.Key()}); err != nil {
			return fmt.Errorf("writing csv row %s: %w", r.Address, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
