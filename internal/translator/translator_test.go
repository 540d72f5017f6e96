package translator

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/stladder/internal/device"
	"github.com/vk/stladder/internal/ladder"
	"github.com/vk/stladder/internal/testutil"
)

func TestTranslate_InvalidUTF8(t *testing.T) {
	_, err := Translate(context.Background(), "IF X1 THEN \xff := TRUE; END_IF", Options{})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestTranslator_RefusesSecondRun(t *testing.T) {
	tr := New(Options{})

	_, err := tr.Translate(context.Background(), "Y1 := TRUE;")
	require.NoError(t, err)

	_, err = tr.Translate(context.Background(), "Y1 := TRUE;")
	require.ErrorIs(t, err, ErrAlreadyUsed)
}

func TestTranslate_Metadata(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	res, err := Translate(context.Background(), "", Options{TargetFamily: "omron", Now: func() time.Time { return at }})
	require.NoError(t, err)
	assert.Equal(t, ladder.Metadata{TargetPLCFamily: "omron", GeneratedAt: at}, res.Program.Metadata)
	assert.Empty(t, res.Program.Rungs)
	assert.Zero(t, res.Devices.Len())

	res, err = Translate(context.Background(), "", Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultFamily, res.Program.Metadata.TargetPLCFamily)
}

func TestTranslate_CustomLayoutAndRules(t *testing.T) {
	// --- Arrange ---
	pb, err := device.NewRule("push_buttons", "X", nil, []string{"pb"}, nil)
	require.NoError(t, err)
	rules := append(device.Rules{pb}, device.DefaultRules()...)
	opts := Options{
		Layout:     ladder.Layout{OriginX: 0, Spacing: 100, RowY: 0, RowSpacing: 10},
		Classifier: rules,
	}

	// --- Act ---
	res, err := Translate(context.Background(), "IF PbGo THEN Flag := TRUE; END_IF", opts)

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, res.Program.Rungs, 1)
	els := res.Program.Rungs[0].Elements
	assert.Equal(t, ladder.Position{X: 0, Y: 0}, els[0].Position)
	assert.Equal(t, ladder.Position{X: 100, Y: 0, Column: 1}, els[1].Position)
	assert.Equal(t, map[string]string{"X0": "PbGo"}, res.Devices.Addresses(device.Input))
	assert.Equal(t, map[string]string{"M0": "Flag"}, res.Devices.Addresses(device.Internal))
}

func TestTranslate_UndeclaredClassFollowsFirstUse(t *testing.T) {
	// --- Act ---
	res, err := Translate(context.Background(), "IF MotorRunning THEN StartLatch := TRUE; END_IF", Options{})

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, res.Program.Rungs, 1)
	rung := res.Program.Rungs[0]
	assert.Equal(t, "X0", testutil.Contacts(rung))
	coil, ok := rung.Coil()
	require.True(t, ok)
	assert.Equal(t, "M0", coil.Address.String())
	assert.Equal(t, map[string]string{"X0": "MotorRunning"}, res.Devices.Addresses(device.Input))
	assert.Equal(t, map[string]string{"M0": "StartLatch"}, res.Devices.Addresses(device.Internal))
	assert.Empty(t, res.Devices.Addresses(device.Output))
}

func TestTranslate_UnwrapPrograms(t *testing.T) {
	src := "PROGRAM Main\nIF Start THEN Motor := TRUE; END_IF\nEND_PROGRAM"

	skipped, err := Translate(context.Background(), src, Options{})
	require.NoError(t, err)
	assert.Empty(t, skipped.Program.Rungs)
	assert.Len(t, skipped.Diagnostics.Warnings, 1)

	unwrapped, err := Translate(context.Background(), src, Options{UnwrapPrograms: true})
	require.NoError(t, err)
	assert.Len(t, unwrapped.Program.Rungs, 1)
	assert.Empty(t, unwrapped.Diagnostics.Warnings)
}

func TestTranslate_LogsSummary(t *testing.T) {
	var buf testutil.SafeBuffer
	ctx := testutil.LoggerContext(&buf)

	_, err := Translate(ctx, "IF A THEN B := TRUE; END_IF\nC := ;", Options{})

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Translation finished.")
	assert.Contains(t, buf.String(), "rungs=1")
	assert.Contains(t, buf.String(), "errors=1")
}

func TestTranslate_ConcurrentCallersAreIndependent(t *testing.T) {
	const n = 16
	var wg sync.WaitGroup
	results := make([]*Result, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			src := fmt.Sprintf("IF In%d THEN Out%d := TRUE; END_IF", i, i)
			res, err := Translate(context.Background(), src, Options{})
			if err == nil {
				results[i] = res
			}
		}()
	}
	wg.Wait()

	for i, res := range results {
		require.NotNil(t, res, "translation %d", i)
		assert.Equal(t, map[string]string{"X0": fmt.Sprintf("In%d", i)}, res.Devices.Addresses(device.Input))
	}
}
