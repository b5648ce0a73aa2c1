package format

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

type Format int

const (
	// UnknownFormat means the format is to be detected from content.
	UnknownFormat Format = iota
	PickleFormat
	JSONFormat
	YAMLFormat
)

var ErrBadFormat = errors.New("bad format")

func ParseFormat(v string) (Format, error) {
	f, ok := map[string]Format{
		"p":      PickleFormat,
		"pickle": PickleFormat,
		"pkl":    PickleFormat,
		"j":      JSONFormat,
		"json":   JSONFormat,
		"y":      YAMLFormat,
		"yaml":   YAMLFormat,
		"yml":    YAMLFormat,
	}[v]
	if ok {
		return f, nil
	}
	return UnknownFormat, fmt.Errorf("%w: %q", ErrBadFormat, v)
}

func (f Format) String() string {
	d, err := f.MarshalText()
	if err != nil {
		return err.Error()
	}
	return string(d)
}

func (f Format) MarshalText() ([]byte, error) {
	switch f {
	case UnknownFormat:
		return []byte("unknown"), nil
	case PickleFormat:
		return []byte("pickle"), nil
	case JSONFormat:
		return []byte("json"), nil
	case YAMLFormat:
		return []byte("yaml"), nil
	default:
		return nil, fmt.Errorf("<err: %d is not a format>", f)
	}
}

func (f *Format) UnmarshalText(d []byte) error {
	pf, err := ParseFormat(string(d))
	if err != nil {
		return err
	}
	*f = pf
	return nil
}

func (f Format) IsPickle() bool { return f == PickleFormat }
func (f Format) IsJSON() bool   { return f == JSONFormat }
func (f Format) IsYAML() bool   { return f == YAMLFormat }

// IsOutput reports whether documents can be encoded in f.
func (f Format) IsOutput() bool {
	return f == JSONFormat || f == YAMLFormat
}

// compression suffixes which are skipped when looking for the format suffix.
var compressedSuffixes = []string{".gz", ".zst", ".zstd"}

// FromPath returns the format implied by the suffix of path, ignoring a
// trailing compression suffix. UnknownFormat is returned when no known
// suffix is present.
func FromPath(path string) Format {
	base := strings.ToLower(filepath.Base(path))
	for _, cs := range compressedSuffixes {
		if strings.HasSuffix(base, cs) {
			base = strings.TrimSuffix(base, cs)
			break
		}
	}
	ext := filepath.Ext(base)
	if ext == "" {
		return UnknownFormat
	}
	f, err := ParseFormat(ext[1:])
	if err != nil {
		return UnknownFormat
	}
	return f
}

// AllFormats returns all supported input formats in preference order.
func AllFormats() []Format {
	return []Format{PickleFormat, JSONFormat, YAMLFormat}
}
