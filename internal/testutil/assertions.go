package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/stladder/internal/ladder"
)

// RequireRungShape fails the test unless every rung is zero or more contacts
// followed by one coil, numbered 1..n in order.
func RequireRungShape(t testing.TB, rungs []ladder.Rung) {
	t.Helper()
	for i, r := range rungs {
		require.Equal(t, i+1, r.Number, "rung numbers are sequential")
		require.NoError(t, r.Validate())
	}
}

// Coils returns the coil descriptions of rungs in order, e.g. "Y1 := TRUE".
func Coils(rungs []ladder.Rung) []string {
	out := make([]string, 0, len(rungs))
	for _, r := range rungs {
		if c, ok := r.Coil(); ok {
			out = append(out, c.Description)
		}
	}
	return out
}

// Contacts renders the contacts of a rung, prefixing normally closed ones
// with "/", e.g. "X0 /X1".
func Contacts(r ladder.Rung) string {
	parts := make([]string, 0, len(r.Elements))
	for _, c := range r.Contacts() {
		s := c.Address.String()
		if !c.NormallyOpen {
			s = "/" + s
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}
