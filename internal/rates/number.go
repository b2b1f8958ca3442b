// Package rates validates carrier rows against a template and turns them
// into normalized rate records.
package rates

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var errNotNumber = errors.New("not a number")

// ParseNumber parses a rate-sheet number. Surrounding whitespace, a leading
// dollar sign and comma thousands separators are accepted.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimSpace(s[1:])
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || strings.HasPrefix(s, "-") {
		return 0, errNotNumber
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotNumber
	}
	if neg {
		v = -v
	}
	return v, nil
}

// parseInt truncates a parsed number to an integer. Unparseable input
// yields ok=false.
func parseInt(s string) (int, bool) {
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return n, true
	}
	v, err := ParseNumber(s)
	if err != nil || v > math.MaxInt32 || v < math.MinInt32 {
		return 0, false
	}
	return int(v), true
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
