package repl

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/stladder/internal/testutil"
	"github.com/vk/stladder/internal/translator"
)

// scripted replays lines and then reports end of input.
type scripted struct {
	lines   []string
	prompts []string
}

func (s *scripted) Prompt(p string) (string, error) {
	s.prompts = append(s.prompts, p)
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func TestReadChunk_WaitsForClosedBlocks(t *testing.T) {
	p := &scripted{lines: []string{"IF Start THEN", "  Motor := TRUE;", "END_IF", "Lamp := TRUE;"}}

	chunk, ok := ReadChunk(p)

	require.True(t, ok)
	assert.Equal(t, "IF Start THEN\n  Motor := TRUE;\nEND_IF", chunk)
	assert.Equal(t, []string{promptMain, promptCont, promptCont}, p.prompts)

	chunk, ok = ReadChunk(p)
	require.True(t, ok)
	assert.Equal(t, "Lamp := TRUE;", chunk)

	_, ok = ReadChunk(p)
	assert.False(t, ok)
}

func TestReadChunk_CommandAndPartialBlock(t *testing.T) {
	p := &scripted{lines: []string{":map", "VAR", "  A : BOOL;"}}

	chunk, ok := ReadChunk(p)
	require.True(t, ok)
	assert.Equal(t, ":map", chunk)

	chunk, ok = ReadChunk(p)
	require.True(t, ok)
	assert.Equal(t, "VAR\n  A : BOOL;", chunk)
}

func TestSession_PrintsOnlyNewRungs(t *testing.T) {
	// --- Arrange ---
	var out bytes.Buffer
	s := NewSession(translator.Options{}, &out)
	ctx := context.Background()

	// --- Act ---
	s.Handle(ctx, "IF Start THEN Motor := TRUE; END_IF")
	first := out.String()
	out.Reset()
	s.Handle(ctx, "IF Start THEN Lamp := TRUE; END_IF")
	second := out.String()

	// --- Assert ---
	assert.Equal(t, "  1 |--[ X0 ]--( Y0 )  Motor := TRUE\n", first)
	assert.Equal(t, "  2 |--[ X0 ]--( Y1 )  Lamp := TRUE\n", second)
	assert.Equal(t, "IF Start THEN Motor := TRUE; END_IF\nIF Start THEN Lamp := TRUE; END_IF", s.Source())
}

func TestSession_DiscardsChunkWithNewErrors(t *testing.T) {
	var out bytes.Buffer
	s := NewSession(translator.Options{}, &out)
	s.Handle(context.Background(), "Flag := TRUE;")
	out.Reset()

	s.Handle(context.Background(), "Y9 := ;")

	assert.Equal(t, "error: line 2: assignment to Y9 has no value\ninput discarded\n", out.String())
	assert.Equal(t, "Flag := TRUE;", s.Source())
}

func TestSession_Commands(t *testing.T) {
	var out bytes.Buffer
	s := NewSession(translator.Options{}, &out)
	ctx := context.Background()

	s.Handle(ctx, "IF Sensor THEN Valve := TRUE; END_IF")
	out.Reset()

	assert.False(t, s.Handle(ctx, ":map"))
	assert.Contains(t, out.String(), "Sensor")
	assert.Contains(t, out.String(), "Valve")

	out.Reset()
	s.Handle(ctx, ":source")
	assert.Equal(t, "   1  IF Sensor THEN Valve := TRUE; END_IF\n", out.String())

	out.Reset()
	s.Handle(ctx, ":reset")
	s.Handle(ctx, ":source")
	assert.Equal(t, "session cleared\nsession is empty\n", out.String())

	out.Reset()
	s.Handle(ctx, ":bogus")
	assert.Contains(t, out.String(), "unknown command :bogus")

	assert.True(t, s.Handle(ctx, ":quit"))
}

func TestLoop(t *testing.T) {
	var (
		out      bytes.Buffer
		recorded []string
	)
	p := &scripted{lines: []string{"IF Start", "THEN Motor := TRUE;", "END_IF", "", ":quit", "Lamp := TRUE;"}}

	Loop(context.Background(), p, translator.Options{}, &out, func(c string) { recorded = append(recorded, c) })

	assert.Equal(t, []string{"IF Start\nTHEN Motor := TRUE;\nEND_IF", ":quit"}, recorded)
	assert.True(t, strings.HasPrefix(out.String(), "  1 |--[ X0 ]--( Y0 )"))
	assert.Equal(t, []string{"Lamp := TRUE;"}, p.lines)
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("terminal gone") }

func TestSession_LogsPrintFailure(t *testing.T) {
	// --- Arrange ---
	var logs testutil.SafeBuffer
	ctx := testutil.LoggerContext(&logs)
	s := NewSession(translator.Options{}, brokenWriter{})

	// --- Act ---
	quit := s.Handle(ctx, "Motor := TRUE;")

	// --- Assert ---
	assert.False(t, quit)
	assert.Equal(t, "Motor := TRUE;", s.Source(), "the chunk is kept even if printing failed")
	assert.Contains(t, logs.String(), "Failed to print rungs.")
	assert.Contains(t, logs.String(), "terminal gone")
}
