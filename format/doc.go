// Package format names the document formats gatherconv reads and writes.
//
// # Usage
//
//	f, err := format.ParseFormat("yaml")
//
//	// detect from a file name, compression suffixes are ignored
//	f = format.FromPath("stats.pickle.gz") // format.PickleFormat
//
// Pickle is an input-only format. JSON and YAML are accepted both as
// versioned input documents and as output formats.
//
// # Related Packages
//
//   - github.com/signadot/gatherconv/source - Load input files
//   - github.com/signadot/gatherconv/encode - Encode IR to text
package format
