package encode

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/signadot/gatherconv/format"
	"github.com/signadot/gatherconv/ir"
)

var ErrEncoding = errors.New("encoding error")

type EncState struct {
	depth, indent int
	sortKeys      bool
	ascii         bool

	format format.Format

	Color func(ir.Type, ColorAttr, string) string
}

func newEncState() *EncState {
	return &EncState{
		indent:   4,
		sortKeys: true,
		ascii:    true,
		format:   format.JSONFormat,
	}
}

// Encode writes node to w followed by a newline. By default the output is
// JSON with keys sorted, 4 space indentation and non-ASCII escaped.
func Encode(node *ir.Node, w io.Writer, opts ...EncodeOption) error {
	es := newEncState()
	for _, opt := range opts {
		opt(es)
	}
	switch es.format {
	case format.JSONFormat:
	case format.YAMLFormat:
		return encodeYAML(node, w, es)
	default:
		return fmt.Errorf("%w: cannot encode %s", ErrEncoding, es.format)
	}
	if err := encode(node, w, es); err != nil {
		return err
	}
	return writeString(w, "\n")
}

func writeString(w io.Writer, s string) error {
	_, err := w.Write([]byte(s))
	return err
}

func writeNL(w io.Writer, es *EncState) error {
	if es.indent < 0 {
		return nil
	}
	return writeString(w, "\n"+strings.Repeat(" ", es.indent*es.depth))
}

func writeSep(w io.Writer, es *EncState, cType ir.Type, sep string) error {
	if es.indent < 0 && sep == "," {
		sep = ", "
	}
	return writeString(w, applyColor(es, cType, SepColor, sep))
}

func applyColor(es *EncState, nodeType ir.Type, attr ColorAttr, v string) string {
	if es.Color == nil {
		return v
	}
	return es.Color(nodeType, attr, v)
}

func encode(node *ir.Node, w io.Writer, es *EncState) error {
	switch node.Type {
	case ir.ObjectType:
		return encodeObject(node, w, es)
	case ir.ArrayType:
		return encodeArray(node, w, es)
	case ir.StringType:
		v := quoteString(node.String, es.ascii)
		return writeString(w, applyColor(es, ir.StringType, ValueColor, v))
	case ir.NumberType:
		v, err := numberText(node)
		if err != nil {
			return err
		}
		return writeString(w, applyColor(es, ir.NumberType, ValueColor, v))
	case ir.BoolType:
		v := strconv.FormatBool(node.Bool)
		return writeString(w, applyColor(es, ir.BoolType, ValueColor, v))
	case ir.NullType:
		return writeString(w, applyColor(es, ir.NullType, ValueColor, "null"))
	default:
		return fmt.Errorf("%w: unknown node type %s", ErrEncoding, node.Type)
	}
}

func numberText(node *ir.Node) (string, error) {
	switch {
	case node.Int64 != nil:
		return strconv.FormatInt(*node.Int64, 10), nil
	case node.Float64 != nil:
		return ir.FormatFloat(*node.Float64), nil
	case node.Number != "":
		return node.Number, nil
	}
	return "", fmt.Errorf("%w: number node without a value", ErrEncoding)
}

// fieldOrder returns the indices of node's fields in output order.
func fieldOrder(node *ir.Node, es *EncState) []int {
	order := make([]int, len(node.Fields))
	for i := range order {
		order[i] = i
	}
	if es.sortKeys {
		slices.SortStableFunc(order, func(a, b int) int {
			return strings.Compare(node.Fields[a].String, node.Fields[b].String)
		})
	}
	return order
}

func encodeObject(node *ir.Node, w io.Writer, es *EncState) error {
	if len(node.Fields) == 0 {
		return writeSep(w, es, ir.ObjectType, "{}")
	}
	if err := writeSep(w, es, ir.ObjectType, "{"); err != nil {
		return err
	}
	es.depth++
	for j, i := range fieldOrder(node, es) {
		if j > 0 {
			if err := writeSep(w, es, ir.ObjectType, ","); err != nil {
				return err
			}
		}
		if err := writeNL(w, es); err != nil {
			return err
		}
		key := quoteString(node.Fields[i].String, es.ascii)
		if err := writeString(w, applyColor(es, ir.ObjectType, FieldColor, key)); err != nil {
			return err
		}
		if err := writeSep(w, es, ir.ObjectType, ": "); err != nil {
			return err
		}
		if err := encode(node.Values[i], w, es); err != nil {
			return err
		}
	}
	es.depth--
	if err := writeNL(w, es); err != nil {
		return err
	}
	return writeSep(w, es, ir.ObjectType, "}")
}

func encodeArray(node *ir.Node, w io.Writer, es *EncState) error {
	if len(node.Values) == 0 {
		return writeSep(w, es, ir.ArrayType, "[]")
	}
	if err := writeSep(w, es, ir.ArrayType, "["); err != nil {
		return err
	}
	es.depth++
	for i, v := range node.Values {
		if i > 0 {
			if err := writeSep(w, es, ir.ArrayType, ","); err != nil {
				return err
			}
		}
		if err := writeNL(w, es); err != nil {
			return err
		}
		if err := encode(v, w, es); err != nil {
			return err
		}
	}
	es.depth--
	if err := writeNL(w, es); err != nil {
		return err
	}
	return writeSep(w, es, ir.ArrayType, "]")
}

const hexDigits = "0123456789abcdef"

// quoteString quotes v as a JSON string using the escapes of the
// gatherer's Python serializer.
func quoteString(v string, ascii bool) string {
	var sb strings.Builder
	sb.Grow(len(v) + 2)
	sb.WriteByte('"')
	for _, r := range v {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		default:
			switch {
			case r < 0x20:
				writeUEscape(&sb, r)
			case !ascii:
				sb.WriteRune(r)
			case r < 0x7f:
				sb.WriteRune(r)
			case r > 0xffff:
				r -= 0x10000
				writeUEscape(&sb, 0xd800|(r>>10)&0x3ff)
				writeUEscape(&sb, 0xdc00|r&0x3ff)
			case r == utf8.RuneError:
				writeUEscape(&sb, 0xfffd)
			default:
				writeUEscape(&sb, r)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func writeUEscape(sb *strings.Builder, r rune) {
	sb.WriteString(`\u`)
	sb.WriteByte(hexDigits[(r>>12)&0xf])
	sb.WriteByte(hexDigits[(r>>8)&0xf])
	sb.WriteByte(hexDigits[(r>>4)&0xf])
	sb.WriteByte(hexDigits[r&0xf])
}
