package ir

import (
	"math"
	"strconv"
	"strings"
)

// FormatFloat renders f the way the gatherer's Python serializer does:
// the shortest representation that round trips, always with a fraction or
// exponent, switching to exponent form below 1e-4 and from 1e16 on.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if f == 0 {
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}
	exp := strconv.FormatFloat(f, 'e', -1, 64)
	i := strings.IndexByte(exp, 'e')
	e, _ := strconv.Atoi(exp[i+1:])
	if e < -4 || e >= 16 {
		return exp
	}
	v := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(v, '.') {
		v += ".0"
	}
	return v
}
