package pickle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/gatherconv/ir"
)

func decodeFile(t *testing.T, name string) (*Decoder, *ir.Node) {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", name))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	dec := NewDecoder(f)
	node, err := dec.Decode()
	if err != nil {
		t.Fatalf("decode %s: %v", name, err)
	}
	return dec, node
}

func TestDecodeGathererPickles(t *testing.T) {
	for _, name := range []string{"py2_p0.pickle", "py2_p2.pickle"} {
		t.Run(name, func(t *testing.T) {
			_, root := decodeFile(t, name)
			wantKeys := []string{
				"xgru5adv7a2mbea4lbtms5m7zmm3kl4b",
				"lmtv5hmvwvpqwwhwdz7ctg6feyxq2qib",
			}
			if diff := cmp.Diff(wantKeys, root.Keys()); diff != "" {
				t.Fatalf("server keys (-want +got):\n%s", diff)
			}
			first := ir.Get(root, wantKeys[0])
			if ts := ir.Get(first, "timestamp"); ts == nil || ts.Float64 == nil || *ts.Float64 != 1286835480.123 {
				t.Errorf("timestamp: got %v", ts)
			}
			stats := ir.Get(ir.Get(first, "stats"), "stats")
			if v := ir.Get(stats, "storage_server.latencies.get.mean"); v == nil || v.Type != ir.NullType {
				t.Errorf("expected null latency, got %v", v)
			}
			if v := ir.Get(stats, "storage_server.disk_total"); v == nil || v.Int64 == nil || *v.Int64 != 1000000000000 {
				t.Errorf("disk_total: got %v", v)
			}
			counters := ir.Get(ir.Get(first, "stats"), "counters")
			if v := ir.Get(counters, "downloader.bytes_downloaded"); v == nil || v.Int64 == nil || *v.Int64 != 99999 {
				t.Errorf("bytes_downloaded: got %v", v)
			}

			second := ir.Get(root, wantKeys[1])
			if nick := ir.Get(second, "nickname"); nick == nil || nick.String != "nøde-2 \"q\"" {
				t.Errorf("nickname: got %v", nick)
			}
			stats = ir.Get(ir.Get(second, "stats"), "stats")
			if v := ir.Get(stats, "storage_server.allocated"); v == nil || v.Number != "1180591620717411303424" {
				t.Errorf("allocated: got %v", v)
			}
			if v := ir.Get(stats, "chk_upload_helper.active_uploads"); v == nil || *v.Int64 != -2 {
				t.Errorf("active_uploads: got %v", v)
			}
			want := []any{"a", "€", []any{1, 2.0}}
			if diff := cmp.Diff(want, ir.ToAny(ir.Get(stats, "tags"))); diff != "" {
				t.Errorf("tags (-want +got):\n%s", diff)
			}
			counters = ir.Get(ir.Get(second, "stats"), "counters")
			if v := ir.Get(counters, "mutable.files_published"); v == nil || v.Type != ir.BoolType || !v.Bool {
				t.Errorf("files_published: got %v", v)
			}
		})
	}
}

func TestDecodeKeepsInsertionOrder(t *testing.T) {
	want := map[string]any{
		"b": map[string]any{
			"nickname":  "beta",
			"timestamp": 2000,
			"stats": map[string]any{
				"stats":    map[string]any{"cpu": 7},
				"counters": map[string]any{"reqs": 1},
			},
		},
		"a": map[string]any{
			"nickname":  "alpha",
			"timestamp": 1000,
			"stats": map[string]any{
				"stats":    map[string]any{"cpu": 5},
				"counters": map[string]any{"reqs": 10},
			},
		},
	}
	for p := 0; p <= HighestProtocol; p++ {
		t.Run(fmt.Sprintf("protocol %d", p), func(t *testing.T) {
			dec, root := decodeFile(t, fmt.Sprintf("ba_p%d.pickle", p))
			if diff := cmp.Diff([]string{"b", "a"}, root.Keys()); diff != "" {
				t.Errorf("keys (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(want, ir.ToAny(root)); diff != "" {
				t.Errorf("value (-want +got):\n%s", diff)
			}
			wantProto := p
			if p < 2 {
				wantProto = 0
			}
			if dec.Proto() != wantProto {
				t.Errorf("proto: got %d want %d", dec.Proto(), wantProto)
			}
			b := ir.Get(root, "b")
			if diff := cmp.Diff([]string{"nickname", "timestamp", "stats"}, b.Keys()); diff != "" {
				t.Errorf("record keys (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeSharedReference(t *testing.T) {
	_, root := decodeFile(t, "shared.pickle")
	x, y := ir.Get(root, "x"), ir.Get(root, "y")
	if x == nil || x != y {
		t.Fatalf("expected memoized dict to be shared, got %p and %p", x, y)
	}
}

func TestDecodeCycle(t *testing.T) {
	d, err := os.ReadFile(filepath.Join("testdata", "cycle.pickle"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = Decode(d)
	if !errors.Is(err, ErrMalformed) || !errors.Is(err, ir.ErrCycle) {
		t.Errorf("expected a circular reference error, got %v", err)
	}
}

func TestDecodeHugeLengthShortInput(t *testing.T) {
	in := []byte("\x80\x02T\xff\xff\xff\x3fabc")
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err := Decode(in)
	runtime.ReadMemStats(&after)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if grown := after.TotalAlloc - before.TotalAlloc; grown > 16<<20 {
		t.Errorf("decoding a short input allocated %d bytes", grown)
	}
}

func TestDecodeUnsupported(t *testing.T) {
	for _, name := range []string{"object.pickle", "bytes.pickle", "set.pickle"} {
		d, err := os.ReadFile(filepath.Join("testdata", name))
		if err != nil {
			t.Fatal(err)
		}
		_, err = Decode(d)
		if !errors.Is(err, ErrUnsupported) {
			t.Errorf("%s: expected ErrUnsupported, got %v", name, err)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"empty", "", ErrMalformed},
		{"no stop", "}", ErrMalformed},
		{"stop on empty stack", ".", ErrMalformed},
		{"stop above mark", "(.", ErrMalformed},
		{"setitems without mark", "\x80\x02}K\x01K\x02u.", ErrMalformed},
		{"dict odd items", "(K\x01d.", ErrMalformed},
		{"append to dict", "}K\x01a.", ErrMalformed},
		{"setitem on list", "]K\x01K\x02s.", ErrMalformed},
		{"missing memo", "h\x05.", ErrMalformed},
		{"unquoted string", "Sabc\n.", ErrMalformed},
		{"truncated binunicode", "X\x05\x00\x00\x00ab", ErrMalformed},
		{"bad utf8", "U\x02\xc3\x28.", ErrMalformed},
		{"unknown opcode", "\xff", ErrMalformed},
		{"future protocol", "\x80\x09.", ErrUnsupported},
		{"tuple key", "})K\x01s.", ErrUnsupported},
		{"global", "c__builtin__\nobject\n.", ErrUnsupported},
		{"self containing list", "\x80\x02]q\x00h\x00a.", ErrMalformed},
		{"huge binunicode", "X\xff\xff\xff\x3fab", ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.in))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestDecodeScalars(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want any
	}{
		{"int true", "I01\n.", true},
		{"int false", "I00\n.", false},
		{"int", "I-42\n.", -42},
		{"big int", "I123456789012345678901234567890\n.", "123456789012345678901234567890"},
		{"long", "L-5L\n.", -5},
		{"float", "F1.5\n.", 1.5},
		{"binfloat", "G?\xf8\x00\x00\x00\x00\x00\x00.", 1.5},
		{"binint", "J\xff\xff\xff\xff.", -1},
		{"binint1", "K\xff.", 255},
		{"binint2", "M\x00\x01.", 256},
		{"long1 zero", "\x8a\x00.", 0},
		{"long1 negative", "\x8a\x01\xff.", -1},
		{"long1 2^64", "\x8a\x09\x00\x00\x00\x00\x00\x00\x00\x00\x01.", "18446744073709551616"},
		{"none", "N.", nil},
		{"newtrue", "\x80\x02\x88.", true},
		{"string escapes", "S'a\\'b\\n'\n.", "a'b\n"},
		{"string double quoted", "S\"it's\"\n.", "it's"},
		{"string hex utf8", "S'\\xc3\\xa9'\n.", "é"},
		{"string octal", "S'\\101\\102'\n.", "AB"},
		{"unicode escape", "V\\u20ac and \\U0001f600\n.", "€ and 😀"},
		{"unicode latin1", "Vn\xf8de\n.", "nøde"},
		{"short binunicode", "\x8c\x03abc.", "abc"},
		{"binstring", "T\x02\x00\x00\x00hi.", "hi"},
		{"tuple2", "K\x01K\x02\x86.", []any{1, 2}},
		{"list appends", "](K\x01K\x02e.", []any{1, 2}},
		{"list append", "]K\x07a.", []any{7}},
		{"mark list", "(K\x01K\x02l.", []any{1, 2}},
		{"int key", "}K\x01K\x02s.", map[string]any{"1": 2}},
		{"none key", "}NK\x02s.", map[string]any{"null": 2}},
		{"bool key", "}\x88K\x02s.", map[string]any{"true": 2}},
		{"float key", "}G?\xf8\x00\x00\x00\x00\x00\x00K\x02s.", map[string]any{"1.5": 2}},
		{"pop mark", "K\x01(K\x02K\x031.", 1},
		{"pop", "K\x01K\x020.", 1},
		{"dup", "K\x012\x86.", []any{1, 1}},
		{"memoize", "\x80\x04\x8c\x01x\x94h\x00\x86.", []any{"x", "x"}},
		{"frame", "\x80\x04\x95\x02\x00\x00\x00\x00\x00\x00\x00K\x01.", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := Decode([]byte(tt.in))
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, ir.ToAny(node)); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestDictKeyReplacesInPlace(t *testing.T) {
	// {"a": 1, "b": 2} then d["a"] = 3
	node, err := Decode([]byte("}(\x8c\x01aK\x01\x8c\x01bK\x02u\x8c\x01aK\x03s."))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, node.Keys()); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}
	if v := ir.Get(node, "a"); *v.Int64 != 3 {
		t.Errorf("a: got %d", *v.Int64)
	}
}

func TestSniff(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"\x80\x02}q\x00.", true},
		{"\x80\x07", false},
		{"(dp0\n", true},
		{"}q\x00(", true},
		{"{\"version\": 1}", false},
		{"version: 1", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := Sniff([]byte(tt.in)); got != tt.want {
			t.Errorf("Sniff(%q) = %t, want %t", tt.in, got, tt.want)
		}
	}
}
