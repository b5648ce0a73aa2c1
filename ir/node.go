package ir

type Node struct {
	Type   Type
	Fields []*Node
	Values []*Node

	String  string
	Bool    bool
	Number  string
	Float64 *float64
	Int64   *int64
}

func FromString(v string) *Node {
	return &Node{Type: StringType, String: v}
}

func FromInt(v int64) *Node {
	return &Node{
		Type:  NumberType,
		Int64: &v,
	}
}

func FromFloat(f float64) *Node {
	return &Node{
		Type:    NumberType,
		Float64: &f,
	}
}

// FromNumber returns a number node holding the decimal text v, used for
// integers which do not fit in 64 bits.
func FromNumber(v string) *Node {
	return &Node{
		Type:   NumberType,
		Number: v,
	}
}

func FromBool(v bool) *Node {
	return &Node{
		Type: BoolType,
		Bool: v,
	}
}

func Null() *Node {
	return &Node{Type: NullType}
}

type KeyVal struct {
	Key string
	Val *Node
}

// FromKeyVals creates an object node with fields in the order of kvs.
// Later duplicates of a key replace the earlier value in place.
func FromKeyVals(kvs []KeyVal) *Node {
	res := &Node{Type: ObjectType}
	res.Fields = make([]*Node, 0, len(kvs))
	res.Values = make([]*Node, 0, len(kvs))
	for _, kv := range kvs {
		res.Set(kv.Key, kv.Val)
	}
	return res
}

func FromSlice(ySlice []*Node) *Node {
	res := &Node{
		Type: ArrayType,
	}
	res.Values = make([]*Node, len(ySlice))
	copy(res.Values, ySlice)
	return res
}

// Get returns the value of field in the object y, or nil if y is not an
// object or has no such field.
func Get(y *Node, field string) *Node {
	if y == nil || y.Type != ObjectType {
		return nil
	}
	i := y.index(field)
	if i < 0 {
		return nil
	}
	return y.Values[i]
}

func (y *Node) index(field string) int {
	for i, f := range y.Fields {
		if f.String == field {
			return i
		}
	}
	return -1
}

// Set assigns v to field of the object y. An existing field keeps its
// position, a new field is appended.
func (y *Node) Set(field string, v *Node) {
	if i := y.index(field); i >= 0 {
		y.Values[i] = v
		return
	}
	y.Fields = append(y.Fields, FromString(field))
	y.Values = append(y.Values, v)
}

// Append adds v to the end of the array y.
func (y *Node) Append(v ...*Node) {
	y.Values = append(y.Values, v...)
}

// Keys returns the field names of the object y in order.
func (y *Node) Keys() []string {
	res := make([]string, len(y.Fields))
	for i, f := range y.Fields {
		res[i] = f.String
	}
	return res
}

func (y *Node) Visit(f func(y *Node, isPost bool) (bool, error)) error {
	dive, err := f(y, false)
	if err != nil {
		return err
	}
	if dive {
		for _, yy := range y.Values {
			if err := yy.Visit(f); err != nil {
				return err
			}
		}
	}
	if _, err := f(y, true); err != nil {
		return err
	}
	return nil
}

// CheckCycles reports ErrCycle if a container in y contains itself.
// Containers reached by more than one path are fine.
func CheckCycles(y *Node) error {
	onPath := map[*Node]bool{}
	done := map[*Node]bool{}
	return y.Visit(func(y *Node, isPost bool) (bool, error) {
		if y.Type.IsLeaf() {
			return false, nil
		}
		if isPost {
			delete(onPath, y)
			done[y] = true
			return false, nil
		}
		if onPath[y] {
			return false, ErrCycle
		}
		if done[y] {
			return false, nil
		}
		onPath[y] = true
		return true, nil
	})
}
