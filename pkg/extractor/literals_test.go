package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeEscapes(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{`plain`, "plain"},
		{`a\nb`, "a\nb"},
		{`tab\there`, "tab\there"},
		{`it\'s`, "it's"},
		{`\"q\"`, `"q"`},
		{`back\\slash`, `back\slash`},
		{`\x41`, "A"},
		{`\u00e9`, "\u00e9"},
		{`\u{1F600}`, "\U0001F600"},
		{`\uD83D\uDE00`, "\U0001F600"},
		{"line\\\ncontinued", "linecontinued"},
		{`\q`, "q"},
		{`\xZZ`, "xZZ"},
		{`trailing\`, `trailing\`},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, decodeEscapes(tc.input))
		})
	}
}

func TestNumberLiteral(t *testing.T) {
	testCases := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"16", 16, true},
		{".5", 0.5, true},
		{"1e3", 1000, true},
		{"1_000", 1000, true},
		{"0x10", 16, true},
		{"0o17", 15, true},
		{"017", 15, true},
		{"08", 8, true},
		{"10n", 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			v, ok := numberLiteral(tc.input)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.expected, v)
			}
		})
	}
}

func TestTrimJS(t *testing.T) {
	assert.Equal(t, "Hi", trimJS("\n\t Hi  "))
	assert.Equal(t, "Hi", trimJS("\uFEFFHi\u00a0"))
	assert.Equal(t, "", trimJS("   "))
}
