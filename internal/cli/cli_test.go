package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/stladder/internal/app"
	"github.com/vk/stladder/internal/report"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		wantExit bool
		wantCode int
		wantMsg  string
		check    func(t *testing.T, cfg *app.Config)
	}{
		{
			name: "file with options",
			args: []string{"-format", "JSON", "-plc", "keyence", "-unwrap-programs", "-workers", "3", "main.st"},
			check: func(t *testing.T, cfg *app.Config) {
				assert.Equal(t, "main.st", cfg.Source)
				assert.Equal(t, report.FormatJSON, cfg.Format)
				assert.Equal(t, "keyence", cfg.PLCType)
				assert.True(t, cfg.UnwrapPrograms)
				assert.Equal(t, 3, cfg.Workers)
				assert.Equal(t, "warn", cfg.LogLevel)
				assert.Equal(t, app.ModeFile, cfg.Mode())
			},
		},
		{
			name: "serve",
			args: []string{"-serve", "-port", "9000", "-log-level", "DEBUG"},
			check: func(t *testing.T, cfg *app.Config) {
				assert.Equal(t, app.ModeServe, cfg.Mode())
				assert.Equal(t, 9000, cfg.Port)
				assert.Equal(t, "debug", cfg.LogLevel)
			},
		},
		{
			name: "remote",
			args: []string{"-remote", "ws://localhost:8000", "-"},
			check: func(t *testing.T, cfg *app.Config) {
				assert.Equal(t, app.ModeRemote, cfg.Mode())
				assert.Equal(t, app.StdinSource, cfg.Source)
			},
		},
		{name: "help", args: []string{"-h"}, wantExit: true},
		{name: "no source", args: nil, wantExit: true},
		{name: "unknown flag", args: []string{"-nope"}, wantCode: CodeUsage, wantMsg: "flag provided but not defined"},
		{name: "bad format", args: []string{"-format", "xml", "a.st"}, wantCode: CodeUsage, wantMsg: "unknown output format"},
		{name: "two sources", args: []string{"a.st", "b.st"}, wantCode: CodeUsage, wantMsg: "expected one SOURCE, got 2"},
		{name: "bad log format", args: []string{"-log-format", "xml", "a.st"}, wantCode: CodeUsage, wantMsg: "invalid log-format"},
		{name: "bad log level", args: []string{"-log-level", "loud", "a.st"}, wantCode: CodeUsage, wantMsg: "invalid log-level"},
		{name: "conflicting modes", args: []string{"-serve", "-repl"}, wantCode: CodeUsage, wantMsg: "only one of"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := &bytes.Buffer{}

			cfg, exit, err := Parse(tc.args, out)

			if tc.wantCode != 0 {
				var exitErr *ExitError
				require.ErrorAs(t, err, &exitErr)
				assert.Equal(t, tc.wantCode, exitErr.Code)
				assert.Contains(t, exitErr.Message, tc.wantMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantExit, exit)
			if tc.wantExit {
				assert.Contains(t, out.String(), "Usage:")
				return
			}
			tc.check(t, cfg)
		})
	}
}
