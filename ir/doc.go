// Package ir provides the intermediate representation decoded input is held
// in between loading and encoding.
//
// # Overview
//
// Every input format (legacy pickle, versioned JSON and YAML documents) is
// decoded to a tree of *ir.Node values, and the encoders work only on that
// tree. The IR carries no position information and no format specific
// metadata.
//
// # Node Types
//
// The Type field indicates the node's type:
//
//   - NullType: null value
//   - BoolType: boolean (true/false)
//   - NumberType: numeric value (int64, float64, or decimal text)
//   - StringType: string value
//   - ArrayType: ordered list of nodes
//   - ObjectType: key-value pairs (fields and values)
//
// # Objects
//
// For ObjectType nodes, Fields[i] is the key for the value at Values[i], so
// there will always be the same number of fields as values. Fields are
// StringType nodes and each key occurs once.
//
// Field order is the order in which keys were inserted, which for decoded
// input is the order of the source document. Encoders may sort keys on
// output; the IR itself never does.
//
// Decoded trees may share nodes (pickle memo references) but never contain
// cycles; see [CheckCycles].
//
// # Numbers
//
// Number values are placed under:
//   - Int64: if it is an integer (64-bit signed)
//   - Float64: if it is a floating point number (64-bit IEEE float)
//   - Number: decimal text for integers which do not fit in Int64
//
// # Creating Nodes
//
//	obj := ir.FromKeyVals([]ir.KeyVal{
//	    {Key: "nickname", Val: ir.FromString("alpha")},
//	    {Key: "timestamp", Val: ir.FromInt(1000)},
//	})
//	obj.Set("stats", ir.FromKeyVals(nil))
//
// # Related Packages
//
//   - github.com/signadot/gatherconv/pickle - Decodes legacy pickles to IR
//   - github.com/signadot/gatherconv/source - Loads input files to IR
//   - github.com/signadot/gatherconv/encode - Encodes IR nodes to text
package ir
