package helpers

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// ModChoose returns one of the candidate values based on the dividend.
//
// The first positional argument is the dividend, the rest are candidates.
// Candidates cycle as the dividend grows: for n candidates, dividend d picks
// candidate (d mod n)+1. Named arguments are ignored.
func ModChoose(args Args) (interface{}, error) {
	argc := args.Argc()
	if argc < 2 {
		return nil, &ArityError{
			Helper: NameModChoose,
			Want:   "at least 2 (the dividend and one value)",
			Got:    argc,
		}
	}

	dividend, err := ParseDividend(args.Arg(0))
	if err != nil {
		return nil, err
	}

	divisor := int64(argc - 1)
	idx := euclideanMod(dividend, divisor) + 1

	return args.Positional[idx], nil
}

// ParseDividend converts a modChoose dividend to an integer.
//
// Integers are used as-is, finite floats are truncated toward zero and
// strings must hold an optionally signed base-10 integer, optionally followed
// by a fractional part that is dropped.
func ParseDividend(v interface{}) (int64, error) {
	switch t := v.(type) {
	case nil, bool:
		return 0, &DividendError{Value: v}
	case float32:
		return truncate(float64(t), v)
	case float64:
		return truncate(t, v)
	case string:
		return parseDecimal(t, v)
	case json.Number:
		return parseDecimal(string(t), v)
	}

	n, err := cast.ToInt64E(v)
	if err != nil {
		return 0, &DividendError{Value: v}
	}
	return n, nil
}

func truncate(f float64, orig interface{}) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, &DividendError{Value: orig}
	}
	return int64(f), nil
}

func parseDecimal(s string, orig interface{}) (int64, error) {
	s = strings.TrimSpace(s)
	whole, frac, _ := strings.Cut(s, ".")
	if !isDigits(frac) {
		return 0, &DividendError{Value: orig}
	}

	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, &DividendError{Value: orig}
	}
	return n, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// euclideanMod keeps the result in [0, n) for negative dividends
func euclideanMod(d, n int64) int64 {
	r := d % n
	if r < 0 {
		r += n
	}
	return r
}
