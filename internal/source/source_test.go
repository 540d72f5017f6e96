package source

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "trims and keeps empty lines",
			in:   "  X1 : BOOL;  \n\n\tIF X1 THEN\n",
			want: []string{"X1 : BOOL;", "", "IF X1 THEN", ""},
		},
		{
			name: "line comment",
			in:   "Y1 := TRUE; // drive the lamp\n// only a comment",
			want: []string{"Y1 := TRUE;", ""},
		},
		{
			name: "same-line block comment",
			in:   "(* header *)\nY1 := (* inline *) X1;",
			want: []string{"", "Y1 :=   X1;"},
		},
		{
			name: "block comment spanning lines keeps line count",
			in:   "A := 1; (* start\nstill comment\nend *) B := 2;",
			want: []string{"A := 1;", "", "B := 2;"},
		},
		{
			name: "comment markers inside string literals survive",
			in:   "Msg := 'http://host (*x*)';",
			want: []string{"Msg := 'http://host (*x*)';"},
		},
		{
			name: "disallowed characters and non-ascii are dropped",
			in:   "T1 : TIME := T#5s; ランプ\nY1 := X1 @ $",
			want: []string{"T1 : TIME := T5s;", "Y1 := X1"},
		},
		{
			name: "CRLF line endings",
			in:   "A := 1;\r\nB := 2;\r\n",
			want: []string{"A := 1;", "B := 2;", ""},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Normalize(tc.in)

			if diff := cmp.Diff(tc.want, texts(got)); diff != "" {
				t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalize_LineNumbersAreOneBasedAndContiguous(t *testing.T) {
	lines := Normalize("a\n(* x *)\nb")

	require.Len(t, lines, 3)
	for i, l := range lines {
		assert.Equal(t, i+1, l.Number)
	}
	assert.True(t, lines[1].Empty())
	assert.False(t, lines[2].Empty())
}

func TestNormalize_UnterminatedBlockCommentSwallowsRest(t *testing.T) {
	lines := Normalize("A := 1;\n(* never closed\nB := 2;")

	assert.Equal(t, []string{"A := 1;", "", ""}, texts(lines))
}
