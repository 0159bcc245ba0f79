package delivery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	const size = 1000

	cases := []struct {
		name   string
		header string
		want   *byteRange
	}{
		{"absent header serves full asset", "", nil},
		{"first hundred bytes", "bytes=0-99", &byteRange{0, 99}},
		{"open ended from offset", "bytes=500-", &byteRange{500, 999}},
		{"suffix form", "bytes=-100", &byteRange{900, 999}},
		{"suffix longer than asset clamps", "bytes=-5000", &byteRange{0, 999}},
		{"end clamped to asset size", "bytes=900-1999", &byteRange{900, 999}},
		{"single byte", "bytes=42-42", &byteRange{42, 42}},
		{"last byte exactly", "bytes=999-999", &byteRange{999, 999}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseRange(tc.header, size)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseRange_MalformedIgnored(t *testing.T) {
	// RFC 7233: a malformed Range header is ignored, not an error.
	const size = 1000

	for _, header := range []string{
		"bytes=abc-def",
		"items=0-99",
		"bytes=0-99,200-299",
		"bytes=99-0",
		"bytes=-1-5",
		"bytes=12",
	} {
		got, err := parseRange(header, size)
		assert.NoError(t, err, "header %q", header)
		assert.Nil(t, got, "header %q", header)
	}
}

func TestParseRange_Unsatisfiable(t *testing.T) {
	const size = 1000

	for _, header := range []string{
		"bytes=1000-",
		"bytes=2000-2100",
		"bytes=-0",
	} {
		_, err := parseRange(header, size)
		assert.ErrorIs(t, err, errUnsatisfiable, "header %q", header)
	}
}

func TestByteRangeLength(t *testing.T) {
	assert.Equal(t, int64(100), byteRange{0, 99}.length())
	assert.Equal(t, int64(1), byteRange{42, 42}.length())
}
