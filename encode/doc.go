// Package encode writes IR nodes as JSON or YAML text.
//
// JSON output matches the layout of Python's json module configured with
// sorted keys and an indent: items are separated by ",\n", keys by ": ",
// empty containers are written as [] and {}, and non-ASCII characters are
// escaped as \uXXXX unless [EncodeASCII] is false.
//
// # Usage
//
//	err := encode.Encode(node, os.Stdout)
//
//	// insertion order, YAML
//	err := encode.Encode(node, w,
//	    encode.EncodeFormat(format.YAMLFormat),
//	    encode.EncodeSortKeys(false))
//
// # Related Packages
//
//   - github.com/signadot/gatherconv/ir - IR representation
//   - github.com/signadot/gatherconv/format - output formats
package encode
