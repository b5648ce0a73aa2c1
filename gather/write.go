package gather

import (
	"bytes"
	"fmt"
	"io"

	"github.com/signadot/gatherconv/encode"
	"github.com/signadot/gatherconv/ir"
)

// Render encodes node completely in memory, so that nothing needs to be
// written when encoding fails.
func Render(node *ir.Node, opts ...encode.EncodeOption) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode.Encode(node, &buf, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Emit writes rendered output to w.
func Emit(w io.Writer, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}
	return nil
}
