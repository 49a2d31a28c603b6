// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textclean

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "ঢাকা বাংলাদেশের রাজধানী।", "ঢাকা বাংলাদেশের রাজধানী।"},
		{"newlines collapsed", "ঢাকা\nবাংলাদেশের\nরাজধানী", "ঢাকা বাংলাদেশের রাজধানী"},
		{"trimmed", "  \n ঢাকা \n ", "ঢাকা"},
		{"footnote removed", "ঢাকা[১] শহর", "ঢাকা শহর"},
		{"several footnotes", "এক[১][২] দুই[৩]।", "এক দুই।"},
		{"edit marker", "ইতিহাস[সম্পাদনা]", "ইতিহাস"},
		{"leading span trimmed", "[১] ঢাকা", "ঢাকা"},
		{"trailing span trimmed", "ঢাকা [note]", "ঢাকা"},
		{"nested pairs first close", "a[[b]c]d", "ac]d"},
		{"unmatched open kept", "ঢাকা [অসম্পূর্ণ", "ঢাকা [অসম্পূর্ণ"},
		{"close before open", "a] b [c", "a] b [c"},
		{"span then unmatched", "a[1] b [c", "a b [c"},
		{"stray close only", "a]b", "a]b"},
		{"empty", "", ""},
		{"only span", "[১]", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.input))
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"ঢাকা [১] শহর",
		"a [1]\n[2] b",
		"x [a] [b",
		"[x]\n\n[y]  z  ",
		"a[[b]c]d",
		"]][[",
		"\n[\n]\n",
		"নদী[ক] ও [খ]পাহাড়[",
	}
	for _, in := range inputs {
		once := Clean(in)
		assert.Equal(t, once, Clean(once), "Clean not idempotent for %q", in)
	}
}

func TestCleanNoOpenBeforeClose(t *testing.T) {
	inputs := []string{
		"a [1] b [2] c",
		"[[[]]]",
		"x ] [ y ] z [",
		"[a\n]b[c]",
	}
	for _, in := range inputs {
		out := Clean(in)
		open := strings.IndexByte(out, '[')
		if open >= 0 {
			assert.NotContains(t, out[open:], "]", "Clean(%q) = %q leaves a bracket pair", in, out)
		}
	}
}

func TestCleanTerminatesOnUnbalanced(t *testing.T) {
	in := strings.Repeat("[", 1000) + "text" + strings.Repeat("]", 3)
	out := Clean(in)
	assert.NotContains(t, out, "text")
}
