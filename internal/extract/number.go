package extract

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/IshaanNene/flathunt/internal/listing"
	"github.com/IshaanNene/flathunt/internal/types"
)

// ParseNumber parses a price-style number where a comma is the decimal
// separator and truncates it to an integer: "1234,50" -> 1234.
//
// Thousands separators are not stripped here; callers remove spaces first.
// "1.234,50" is rejected.
func ParseNumber(s string) (int, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	f, err := strconv.ParseFloat(normalized, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", types.ErrBadNumber, s)
	}
	return int(f), nil
}

// dropFirst removes the first n characters of s.
func dropFirst(s string, n int) string {
	for i := 0; i < n && s != ""; i++ {
		_, size := utf8.DecodeRuneInString(s)
		s = s[size:]
	}
	return s
}

// dropLast removes the last n characters of s, typically a unit suffix such as "zł" or "m²".
func dropLast(s string, n int) string {
	for i := 0; i < n && s != ""; i++ {
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
	}
	return s
}

func removeSpaces(s string) string {
	return strings.ReplaceAll(s, " ", "")
}

// parseSuffixed parses a value like "2 500 zł": unit dropped, spaces removed.
func parseSuffixed(s string) (int, error) {
	return ParseNumber(removeSpaces(dropLast(s, 2)))
}

// orUnknown turns a failed optional parse into the Unknown sentinel.
func orUnknown(v int, err error) int {
	if err != nil {
		return listing.Unknown
	}
	return v
}
