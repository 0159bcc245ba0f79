package delivery

import (
	"errors"
	"strconv"
	"strings"
)

// errUnsatisfiable marks a syntactically valid range that lies beyond the asset.
var errUnsatisfiable = errors.New("range not satisfiable")

// byteRange is an inclusive byte interval within an asset.
type byteRange struct {
	start int64
	end   int64
}

func (r byteRange) length() int64 { return r.end - r.start + 1 }

// parseRange parses a single-range Range header against the asset size.
// Returns (nil, nil) when the header is absent or malformed — per RFC 7233 a
// malformed Range is ignored and the full asset served. Returns
// errUnsatisfiable when the range starts at or beyond the asset size.
// Supported forms: "bytes=start-end", "bytes=start-", "bytes=-suffix".
func parseRange(header string, size int64) (*byteRange, error) {
	if header == "" {
		return nil, nil
	}
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok || strings.Contains(spec, ",") {
		// Multi-range requests are not supported; serve the full asset.
		return nil, nil
	}
	startStr, endStr, ok := strings.Cut(strings.TrimSpace(spec), "-")
	if !ok {
		return nil, nil
	}

	if startStr == "" {
		// Suffix form: last N bytes.
		n, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || n <= 0 {
			return nil, errUnsatisfiable
		}
		if n > size {
			n = size
		}
		return &byteRange{start: size - n, end: size - 1}, nil
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return nil, nil
	}
	if start >= size {
		return nil, errUnsatisfiable
	}

	end := size - 1
	if endStr != "" {
		e, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || e < start {
			return nil, nil
		}
		if e < end {
			end = e
		}
	}
	return &byteRange{start: start, end: end}, nil
}
