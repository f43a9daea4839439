package uri

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHex(t *testing.T) {
	assert.Equal(t, [2]byte{'F', 'F'}, hex(0xFF))
	assert.Equal(t, [2]byte{'3', '1'}, hex(0x31))
}

func TestUnhex(t *testing.T) {
	assert.Equal(t, byte(0xFF), unhex([2]byte{'F', 'F'}))
	assert.Equal(t, byte(0xFF), unhex([2]byte{'f', 'f'}))
	assert.Equal(t, byte(0x31), unhex([2]byte{'3', '1'}))
}

func TestShouldEscape(t *testing.T) {
	testcases := []struct {
		input    byte
		mode     encodeMode
		expected bool
	}{
		{input: '3', mode: encodeForm, expected: false},
		{input: '~', mode: encodeForm, expected: false},
		{input: '/', mode: encodeForm, expected: true},
		{input: '&', mode: encodeForm, expected: true},
		{input: '+', mode: encodeForm, expected: true},

		{input: '/', mode: encodePath, expected: false},
		{input: '?', mode: encodePath, expected: true},
		{input: '+', mode: encodePath, expected: true},
		{input: '%', mode: encodePath, expected: true},
	}
	for _, tc := range testcases {
		t.Run(fmt.Sprintf("%d %c", tc.mode, tc.input), func(t *testing.T) {
			assert.Equal(t, tc.expected, shouldEscape(tc.input, tc.mode))
		})
	}
}

func TestEscape(t *testing.T) {
	testcases := []struct {
		desc     string
		input    string
		escape   func(string) string
		expected string
	}{
		{
			desc:     "form",
			input:    "a b&c=d",
			escape:   Escape,
			expected: "a+b%26c%3Dd",
		},
		{
			desc:     "form non-ascii",
			input:    "한글",
			escape:   Escape,
			expected: "%ED%95%9C%EA%B8%80",
		},
		{
			desc:     "path",
			input:    "/graphs/my graph#1",
			escape:   EscapePath,
			expected: "/graphs/my%20graph%231",
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.escape(tc.input))
		})
	}
}

func TestUnescape(t *testing.T) {
	testcases := []struct {
		desc     string
		input    string
		expected string
	}{
		{
			desc:     "normal escaped",
			input:    "hey %5Bthere%5D",
			expected: "hey [there]",
		},
		{
			desc:     "normal escaped (lowercase)",
			input:    "hey %5bthere%5d",
			expected: "hey [there]",
		},
		{
			desc:     "plus is space",
			input:    "a+b",
			expected: "a b",
		},
		{
			desc:     "malformed (not enough length)",
			input:    "hey %5bthere%5",
			expected: "hey [there%5",
		},
		{
			desc:     "malformed (non-hex)",
			input:    "hey %5bthere%5Z",
			expected: "hey [there%5Z",
		},
		{
			desc:     "lone percent",
			input:    "100%",
			expected: "100%",
		},
		{
			desc:     "nothing to decode",
			input:    "/plain/path",
			expected: "/plain/path",
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, Unescape(tc.input))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"?&= %",
		"a=1&b=2",
		"100% sure?",
		"+plus+",
		"\x00\xff\x7f",
		"/graphs/한글 name",
	}

	for _, input := range inputs {
		t.Run(fmt.Sprintf("%q", input), func(t *testing.T) {
			assert.Equal(t, input, Unescape(Escape(input)))
			assert.Equal(t, input, Unescape(EscapePath(input)))
		})
	}
}
