package device

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRules_Classify(t *testing.T) {
	t.Parallel()

	rules := DefaultRules()
	testCases := []struct {
		name     string
		variable string
		typ      string
		hint     Context
		want     Class
	}{
		{name: "declared bool input keyword", variable: "StartButton", typ: "BOOL", want: Input},
		{name: "declared bool X pattern", variable: "X1", typ: "BOOL", want: Input},
		{name: "declared bool output keyword", variable: "ConveyorMotor", typ: "BOOL", want: Output},
		{name: "declared bool Y pattern", variable: "Y12", typ: "bool", want: Output},
		{name: "input rule wins over output rule", variable: "EmergencyLamp", typ: "BOOL", want: Input},
		{name: "declared bool without hint", variable: "Latch", typ: "BOOL", want: Internal},
		{name: "dint", variable: "Count", typ: "DINT", want: DataRegister},
		{name: "real", variable: "Temperature", typ: "REAL", want: DataRegister},
		{name: "sized string", variable: "Label", typ: "STRING(20)", want: DataRegister},
		{name: "time", variable: "Delay", typ: "TIME", want: Timer},
		{name: "timer instance", variable: "T1", typ: "TON", want: Timer},
		{name: "counter instance", variable: "Parts", typ: "CTU", want: Counter},
		{name: "unknown declared type", variable: "Recipe", typ: "MyStruct", want: Internal},
		{name: "undeclared in condition", variable: "Mode", hint: InCondition, want: Input},
		{name: "undeclared target", variable: "Flag", hint: AsTarget, want: Internal},
		{name: "undeclared target output heuristic", variable: "Y1", hint: AsTarget, want: Output},
		{name: "undeclared target output keyword", variable: "PumpMotor", hint: AsTarget, want: Output},
		{name: "undeclared condition ignores output heuristic", variable: "PumpMotor", hint: InCondition, want: Input},
		{name: "undeclared target ignores input heuristic", variable: "SensorEcho", hint: AsTarget, want: Internal},
		{name: "undeclared target ignores X pattern", variable: "X3", hint: AsTarget, want: Internal},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, rules.Classify(tc.variable, tc.typ, tc.hint))
		})
	}
}

func TestRules_OrderDecides(t *testing.T) {
	lampFirst, err := NewRule("lamp_first", "Y", []string{"BOOL"}, []string{"lamp"}, nil)
	require.NoError(t, err)
	rules := append(Rules{lampFirst}, DefaultRules()...)

	assert.Equal(t, Output, rules.Classify("EmergencyLamp", "BOOL", AsTarget))
	assert.Equal(t, Input, DefaultRules().Classify("EmergencyLamp", "BOOL", AsTarget))
}

func TestNewRule(t *testing.T) {
	r, err := NewRule("pb", "inputs", []string{"bool"}, []string{" PB ", ""}, []string{`^I[0-9]+$`})
	require.NoError(t, err)
	assert.Equal(t, Input, r.Class)
	assert.Equal(t, []string{"BOOL"}, r.Types)
	assert.Equal(t, []string{"pb"}, r.Keywords)
	assert.True(t, r.matchesName("I4"))
	assert.True(t, r.matchesName("StartPB"))

	_, err = NewRule("bad", "Q", nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown device class "Q"`)

	_, err = NewRule("bad", "X", nil, nil, []string{"("})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pattern")
}

func TestParseClass(t *testing.T) {
	for _, s := range []string{"D", "data_registers", "data register", "DATA_REGISTER"} {
		c, err := ParseClass(s)
		require.NoError(t, err, s)
		assert.Equal(t, DataRegister, c, s)
	}
}

func TestTable_ResolveIsIdempotent(t *testing.T) {
	table := NewTable(nil)

	first := table.Resolve("Start", InCondition, 1)
	second := table.Resolve("Start", AsTarget, 9)

	assert.Equal(t, first, second)
	assert.Equal(t, "X0", first.String())
	assert.Equal(t, 1, table.Len())
	sym, ok := table.Lookup("Start")
	require.True(t, ok)
	assert.Equal(t, 1, sym.Line, "the first reference owns the symbol")
}

func TestTable_DeclareNeverReassigns(t *testing.T) {
	table := NewTable(nil)

	used := table.Resolve("Valve", AsTarget, 3)
	sym, added := table.Declare("Valve", "BOOL", 10)

	assert.False(t, added)
	assert.Equal(t, used, sym.Address)
	assert.Equal(t, "BOOL", sym.Type, "type is filled in for a previously undeclared symbol")

	again, added := table.Declare("Valve", "DINT", 11)
	assert.False(t, added)
	assert.Equal(t, "BOOL", again.Type)
	assert.Equal(t, used, again.Address)
}

func TestTable_AddressesAreSequentialPerClass(t *testing.T) {
	table := NewTable(nil)

	for i := 0; i < 5; i++ {
		table.Resolve(fmt.Sprintf("in%d", i), InCondition, i)
		table.Resolve(fmt.Sprintf("flag%d", i), AsTarget, i)
	}
	table.Declare("Count", "DINT", 1)

	m := table.Map()
	require.Len(t, m[Input], 5)
	require.Len(t, m[Internal], 5)
	for i, e := range m[Input] {
		assert.Equal(t, Address{Class: Input, Index: i}, e.Address)
	}
	for i, e := range m[Internal] {
		assert.Equal(t, Address{Class: Internal, Index: i}, e.Address)
	}
	assert.Equal(t, map[string]string{"D0": "Count"}, m.Addresses(DataRegister))
	assert.Empty(t, m[Counter])
	assert.Equal(t, 11, m.Len())
}

func TestTable_MemberAccessSharesBaseAddress(t *testing.T) {
	table := NewTable(nil)
	table.Declare("T1", "TON", 1)

	assert.Equal(t, "T0", table.Resolve("T1.Q", InCondition, 4).String())
	assert.Equal(t, "T0", table.Resolve("T1.ET", InCondition, 5).String())
	assert.Equal(t, 1, table.Len())
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "T1", BaseName("T1.Q"))
	assert.Equal(t, "Arr", BaseName("Arr[3]"))
	assert.Equal(t, "Plain", BaseName(" Plain "))
	assert.Equal(t, ".odd", BaseName(".odd"))
}

func TestAddress_String(t *testing.T) {
	assert.Equal(t, "Y3", Address{Class: Output, Index: 3}.String())
	assert.Equal(t, "C0", Address{Class: Counter}.String())
	assert.Equal(t, "?1", Address{Class: Class(42), Index: 1}.String())
}
