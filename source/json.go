package source

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/signadot/gatherconv/ir"
	"github.com/valyala/fastjson"
)

func decodeJSON(data []byte) (*ir.Node, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, err
	}
	return fromJSON(v)
}

func fromJSON(v *fastjson.Value) (*ir.Node, error) {
	switch v.Type() {
	case fastjson.TypeObject:
		o, err := v.Object()
		if err != nil {
			return nil, err
		}
		var (
			kvs  = make([]ir.KeyVal, 0, o.Len())
			vErr error
		)
		o.Visit(func(key []byte, elt *fastjson.Value) {
			if vErr != nil {
				return
			}
			n, err := fromJSON(elt)
			if err != nil {
				vErr = err
				return
			}
			kvs = append(kvs, ir.KeyVal{Key: string(key), Val: n})
		})
		if vErr != nil {
			return nil, vErr
		}
		return ir.FromKeyVals(kvs), nil
	case fastjson.TypeArray:
		a, err := v.Array()
		if err != nil {
			return nil, err
		}
		vals := make([]*ir.Node, len(a))
		for i, elt := range a {
			n, err := fromJSON(elt)
			if err != nil {
				return nil, err
			}
			vals[i] = n
		}
		return ir.FromSlice(vals), nil
	case fastjson.TypeString:
		s, err := v.StringBytes()
		if err != nil {
			return nil, err
		}
		return ir.FromString(string(s)), nil
	case fastjson.TypeNumber:
		return numberNode(string(v.MarshalTo(nil)))
	case fastjson.TypeTrue:
		return ir.FromBool(true), nil
	case fastjson.TypeFalse:
		return ir.FromBool(false), nil
	case fastjson.TypeNull:
		return ir.Null(), nil
	}
	return nil, fmt.Errorf("unexpected json value %s", v.Type())
}

// numberNode keeps integers exact, falling back to decimal text for those
// beyond 64 bits.
func numberNode(text string) (*ir.Node, error) {
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return ir.FromInt(i), nil
	}
	if b, ok := new(big.Int).SetString(text, 10); ok {
		return ir.FromNumber(b.String()), nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("bad number %q: %w", text, err)
	}
	return ir.FromFloat(f), nil
}
