// Package source loads the stats gatherer's server mapping from disk.
//
// The input is either the legacy pickle written by the gatherer or a
// versioned sidecar document in JSON or YAML:
//
//	{"version": 1, "servers": {"<server id>": {...}}}
//
// gzip and zstd compressed inputs are decompressed before the format is
// detected. Format detection uses, in order, an explicit [WithFormat]
// option, the file suffix, and the leading bytes of the content.
package source
