package encode

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/signadot/gatherconv/ir"
)

func encodeYAML(node *ir.Node, w io.Writer, es *EncState) error {
	v, err := yamlValue(node, es)
	if err != nil {
		return err
	}
	indent := es.indent
	if indent <= 0 {
		indent = 2
	}
	d, err := yaml.MarshalWithOptions(v, yaml.Indent(indent))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	_, err = w.Write(d)
	return err
}

func yamlValue(node *ir.Node, es *EncState) (any, error) {
	switch node.Type {
	case ir.ObjectType:
		ms := make(yaml.MapSlice, 0, len(node.Fields))
		for i := range node.Fields {
			v, err := yamlValue(node.Values[i], es)
			if err != nil {
				return nil, err
			}
			ms = append(ms, yaml.MapItem{Key: node.Fields[i].String, Value: v})
		}
		if es.sortKeys {
			slices.SortStableFunc(ms, func(a, b yaml.MapItem) int {
				return strings.Compare(a.Key.(string), b.Key.(string))
			})
		}
		return ms, nil
	case ir.ArrayType:
		vs := make([]any, len(node.Values))
		for i, elt := range node.Values {
			v, err := yamlValue(elt, es)
			if err != nil {
				return nil, err
			}
			vs[i] = v
		}
		return vs, nil
	case ir.StringType:
		return node.String, nil
	case ir.BoolType:
		return node.Bool, nil
	case ir.NullType:
		return nil, nil
	case ir.NumberType:
		switch {
		case node.Int64 != nil:
			return *node.Int64, nil
		case node.Float64 != nil:
			return *node.Float64, nil
		case node.Number != "":
			if u, err := strconv.ParseUint(node.Number, 10, 64); err == nil {
				return u, nil
			}
			return node.Number, nil
		}
		return nil, fmt.Errorf("%w: number node without a value", ErrEncoding)
	default:
		return nil, fmt.Errorf("%w: unknown node type %s", ErrEncoding, node.Type)
	}
}
