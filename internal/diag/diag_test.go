package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_KeepsReportOrderPerSeverity(t *testing.T) {
	// --- Arrange ---
	var c Collector

	// --- Act ---
	c.Warnf(1, "first %s", "warning")
	c.Errorf(2, "broken IF")
	c.WarnSpan(3, 7, "unsupported %s block skipped", "FUNCTION_BLOCK")
	c.Errorf(9, "broken CASE")

	// --- Assert ---
	require.True(t, c.HasErrors())
	require.Len(t, c.All(), 4)

	report := c.Report()
	assert.Equal(t, []string{"line 2: broken IF", "line 9: broken CASE"}, report.ErrorStrings())
	assert.Equal(t, []string{
		"line 1: first warning",
		"lines 3-7: unsupported FUNCTION_BLOCK block skipped",
	}, report.WarningStrings())
	assert.Equal(t, "2 errors, 2 warnings", report.Summary())
}

func TestCollector_ZeroValue(t *testing.T) {
	var c Collector

	assert.False(t, c.HasErrors())
	assert.Empty(t, c.Errors())
	assert.Empty(t, c.Warnings())
	assert.Equal(t, "0 errors, 0 warnings", c.Report().Summary())
	assert.NotNil(t, c.Report().ErrorStrings(), "display slices are never nil so they serialize as []")
}

func TestDiagnostic_String(t *testing.T) {
	testCases := []struct {
		name string
		in   Diagnostic
		want string
	}{
		{name: "no line", in: Diagnostic{Message: "input rejected"}, want: "input rejected"},
		{name: "single line", in: Diagnostic{Line: 4, Message: "x"}, want: "line 4: x"},
		{name: "span", in: Diagnostic{Line: 4, EndLine: 6, Message: "x"}, want: "lines 4-6: x"},
		{name: "degenerate span", in: Diagnostic{Line: 4, EndLine: 4, Message: "x"}, want: "line 4: x"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.in.String())
		})
	}
}

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "warning", Warning.String())
	assert.Equal(t, "error", Error.String())
	assert.Equal(t, "severity(7)", Severity(7).String())
}
