package encode

import (
	"bytes"
	"strings"

	"github.com/signadot/gatherconv/ir"
)

// MustString encodes node as compact JSON, panicking on error.
func MustString(node *ir.Node) string {
	buf := bytes.NewBuffer(nil)
	if err := Encode(node, buf, EncodeIndent(-1), EncodeSortKeys(false)); err != nil {
		panic(err)
	}
	return strings.TrimSpace(buf.String())
}
