package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/stladder/internal/app"
	"github.com/vk/stladder/internal/cli"
	"github.com/vk/stladder/internal/testutil"
)

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	settings := testutil.WriteFile(t, "stladder.hcl", "server {\n  port = 8000\n")
	source := testutil.WriteFile(t, "main.st", "A := B;")
	args := []string{"-config", settings, source}
	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(context.Background(), strings.NewReader(""), out, &bytes.Buffer{}, args)

	// --- Assert ---
	require.Error(t, runErr, "run() should have returned an error after recovering from a panic")
	assert.Contains(t, runErr.Error(), "application startup panicked")
	assert.Contains(t, runErr.Error(), "failed to parse")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}

	err := run(context.Background(), strings.NewReader(""), out, &bytes.Buffer{}, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err)
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_Stdin(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	in := strings.NewReader("IF Start THEN\n  Motor := TRUE;\nEND_IF\n")
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), in, out, &bytes.Buffer{}, []string{"-format", "il", "-"})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "; instruction list, mitsubishi\n; rung 1, line 2\nLD X0\nOUT Y0\nEND\n", out.String())
}

func TestExitCode(t *testing.T) {
	testCases := []struct {
		name    string
		err     error
		want    int
		wantMsg string
	}{
		{name: "ok", err: nil, want: 0},
		{name: "translation errors", err: app.ErrTranslation, want: cli.CodeTranslation},
		{name: "usage", err: &cli.ExitError{Code: cli.CodeUsage, Message: "bad flag"}, want: cli.CodeUsage, wantMsg: "bad flag\n"},
		{name: "other", err: errors.New("disk on fire"), want: 1, wantMsg: "disk on fire\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			errW := &bytes.Buffer{}

			code := exitCode(tc.err, errW)

			assert.Equal(t, tc.want, code)
			assert.Equal(t, tc.wantMsg, errW.String())
		})
	}
}
