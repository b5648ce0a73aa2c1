// Package gather converts the stats gatherer's server mapping into the
// output document
//
//	{"servers": [{"nickname": ..., "timestamp": ..., "data": {"stats": ..., "counters": ...}}]}
//
// with one record per server in mapping order. A record lacking any of
// nickname, timestamp, stats.stats or stats.counters fails the conversion
// with a [*FieldMissingError] unless [WithLenient] is given.
package gather
