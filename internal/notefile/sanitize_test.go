package notefile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "reserved characters", in: `a<b>c:d"e/f\g|h?i*j`, want: "a_b_c_d_e_f_g_h_i_j"},
		{name: "plain title unchanged", in: "Weekly Plan", want: "Weekly Plan"},
		{name: "unicode kept", in: "会议记录 2024", want: "会议记录 2024"},
		{name: "no length limit", in: strings.Repeat("x", 300), want: strings.Repeat("x", 300)},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitizeStrict(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "allowed punctuation", in: "Plan (v2) [draft], ok!?", want: "Plan (v2) [draft], ok!?"},
		{name: "cjk punctuation", in: "笔记：第一章，开始。", want: "笔记：第一章，开始。"},
		{name: "symbols replaced", in: "a/b*c#d", want: "a_b_c_d"},
		{name: "whitespace collapsed and trimmed", in: "  a \t\n  b  ", want: "a b"},
		{name: "emoji replaced", in: "idea 💡", want: "idea _"},
		{name: "only spaces", in: "   ", want: ""},
		{name: "decomposed accents composed", in: "Cafe\u0301", want: "Caf\u00e9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeStrict(tt.in))
		})
	}
}

func TestSanitizeStrict_Truncates(t *testing.T) {
	got := SanitizeStrict(strings.Repeat("文", 150))
	assert.Equal(t, MaxStrictLength, len([]rune(got)))

	// A space at the cut point is trimmed.
	got = SanitizeStrict(strings.Repeat("a", 99) + " bcd")
	assert.Equal(t, strings.Repeat("a", 99), got)
}

func TestSanitizeStrict_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"hello world",
		"  many    spaces  ",
		`weird <>:"/\|?* name`,
		"Café résumé",
		"日本語のタイトル／スラッシュ",
		strings.Repeat("ab ", 60),
		strings.Repeat("a", 99) + " b",
		"tab\tand\nnewline",
		"combining ́ alone",
		"🙂🙃 emoji only",
	}

	for _, in := range inputs {
		once := SanitizeStrict(in)
		assert.Equal(t, once, SanitizeStrict(once), "input %q", in)
	}
}
