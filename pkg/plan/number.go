package plan

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// maxCount caps sanitized counts so that int conversion never overflows.
const maxCount = math.MaxInt32

// toNumber converts an arbitrary decoded value the way a loosely typed
// form field would be read: numbers as-is, booleans as 0/1, nil as 0, and
// strings parsed after trimming whitespace (blank strings are 0). Anything
// else yields NaN.
func toNumber(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case bool:
		if n {
			return 1
		}
		return 0
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	case json.Number:
		return parseNumber(string(n))
	case string:
		return parseNumber(n)
	default:
		return math.NaN()
	}
}

// parseNumber reads decimal and exponent notation, plus unsigned 0x, 0o and
// 0b integer literals. Digit separators are not accepted.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if strings.ContainsRune(s, '_') {
		return math.NaN()
	}
	if len(s) > 2 && s[0] == '0' && strings.ContainsRune("xXoObB", rune(s[1])) {
		return parseRadix(s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func parseRadix(s string) float64 {
	n, err := strconv.ParseUint(s, 0, 64)
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxUint64
	}
	if err != nil {
		return math.NaN()
	}
	return float64(n)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// CountOf sanitizes a quantity of unknown provenance into a usable count.
// Non-numeric, non-finite and negative values yield 0; fractional values are
// floored. This is the single place where malformed numbers are forgiven.
func CountOf(v any) int {
	f := toNumber(v)
	if !isFinite(f) || f < 0 {
		return 0
	}
	if f > maxCount {
		return maxCount
	}
	return int(math.Floor(f))
}
