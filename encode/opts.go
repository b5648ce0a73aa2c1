package encode

import "github.com/signadot/gatherconv/format"

type EncodeOption func(*EncState)

func EncodeFormat(f format.Format) EncodeOption {
	return func(es *EncState) { es.format = f }
}

// EncodeIndent sets the number of spaces per nesting level. A negative
// value encodes JSON on a single line.
func EncodeIndent(n int) EncodeOption {
	return func(es *EncState) { es.indent = n }
}

// EncodeSortKeys controls whether object keys are written sorted or in
// insertion order.
func EncodeSortKeys(v bool) EncodeOption {
	return func(es *EncState) { es.sortKeys = v }
}

// EncodeASCII controls whether non-ASCII characters in JSON strings are
// written as \u escapes.
func EncodeASCII(v bool) EncodeOption {
	return func(es *EncState) { es.ascii = v }
}

func EncodeColors(c *Colors) EncodeOption {
	return func(es *EncState) {
		if c == nil {
			es.Color = nil
			return
		}
		es.Color = c.Color
	}
}
