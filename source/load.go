package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/signadot/gatherconv/debug"
	"github.com/signadot/gatherconv/format"
	"github.com/signadot/gatherconv/ir"
	"github.com/signadot/gatherconv/pickle"
)

// SchemaVersion is the version of the sidecar document written by
// migrate and accepted by Load.
const SchemaVersion = 1

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Load reads the file at path and returns the server mapping it holds,
// with fields in source order.
func Load(ctx context.Context, path string, opts ...LoadOption) (*ir.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputNotFound, err)
	}
	defer f.Close()
	return Read(ctx, f, path, opts...)
}

// Read is like Load but reads from r. name is used for suffix based
// format detection and messages.
func Read(ctx context.Context, r io.Reader, name string, opts ...LoadOption) (*ir.Node, error) {
	ls := &loadState{}
	for _, opt := range opts {
		opt(ls)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: could not read %s: %w", ErrInputNotFound, name, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err = decompress(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDeserialize, name, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrDeserialize, name)
	}
	f := ls.format
	if f == format.UnknownFormat {
		f = format.FromPath(name)
	}
	if f == format.UnknownFormat {
		f = Sniff(data)
	}
	if debug.Source() {
		debug.Logf("source %s: %d bytes as %s\n", name, len(data), f)
	}
	node, err := decode(data, f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDeserialize, name, err)
	}
	return node, nil
}

func decompress(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		return io.ReadAll(gz)
	case bytes.HasPrefix(data, zstdMagic):
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(data, nil)
	}
	return data, nil
}

// Sniff guesses the format of data from its first bytes.
func Sniff(data []byte) format.Format {
	t := bytes.TrimLeft(data, " \t\r\n")
	switch {
	case len(t) > 0 && t[0] == '{':
		return format.JSONFormat
	case pickle.Sniff(data):
		return format.PickleFormat
	}
	return format.YAMLFormat
}

func decode(data []byte, f format.Format) (*ir.Node, error) {
	switch f {
	case format.PickleFormat:
		node, err := pickle.Decode(data)
		if err != nil {
			return nil, err
		}
		if node.Type != ir.ObjectType {
			return nil, fmt.Errorf("expected a mapping at the root, got %s", node.Type)
		}
		return node, nil
	case format.JSONFormat:
		doc, err := decodeJSON(data)
		if err != nil {
			return nil, err
		}
		return unwrap(doc)
	case format.YAMLFormat:
		doc, err := decodeYAML(data)
		if err != nil {
			return nil, err
		}
		return unwrap(doc)
	}
	return nil, fmt.Errorf("unsupported input format %s", f)
}

// unwrap checks a sidecar document and returns its servers mapping.
func unwrap(doc *ir.Node) (*ir.Node, error) {
	if doc.Type != ir.ObjectType {
		return nil, fmt.Errorf("expected a mapping at the root, got %s", doc.Type)
	}
	v := ir.Get(doc, "version")
	if v == nil {
		return nil, fmt.Errorf("missing version")
	}
	if v.Type != ir.NumberType || v.Int64 == nil || *v.Int64 != SchemaVersion {
		return nil, fmt.Errorf("unsupported version %s, want %d", versionText(v), SchemaVersion)
	}
	servers := ir.Get(doc, "servers")
	if servers == nil {
		return nil, fmt.Errorf("missing servers")
	}
	if servers.Type != ir.ObjectType {
		return nil, fmt.Errorf("servers must be a mapping, got %s", servers.Type)
	}
	return servers, nil
}

// Sidecar wraps a server mapping in a versioned document.
func Sidecar(servers *ir.Node) *ir.Node {
	return ir.FromKeyVals([]ir.KeyVal{
		{Key: "version", Val: ir.FromInt(SchemaVersion)},
		{Key: "servers", Val: servers},
	})
}

func versionText(v *ir.Node) string {
	switch {
	case v.Int64 != nil:
		return fmt.Sprint(*v.Int64)
	case v.Float64 != nil:
		return ir.FormatFloat(*v.Float64)
	case v.Type == ir.StringType:
		return fmt.Sprintf("%q", v.String)
	case v.Number != "":
		return v.Number
	}
	return v.Type.String()
}
