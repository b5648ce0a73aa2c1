package format

import (
	"errors"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"p", PickleFormat},
		{"pickle", PickleFormat},
		{"pkl", PickleFormat},
		{"j", JSONFormat},
		{"json", JSONFormat},
		{"y", YAMLFormat},
		{"yml", YAMLFormat},
		{"yaml", YAMLFormat},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil {
			t.Errorf("ParseFormat(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
	if _, err := ParseFormat("toml"); !errors.Is(err, ErrBadFormat) {
		t.Errorf("expected ErrBadFormat, got %v", err)
	}
}

func TestFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"/home/u/.gatherer/stats.pickle", PickleFormat},
		{"stats.PKL", PickleFormat},
		{"stats.pickle.gz", PickleFormat},
		{"servers.json.zst", JSONFormat},
		{"servers.json", JSONFormat},
		{"servers.yml", YAMLFormat},
		{"servers.yaml.zstd", YAMLFormat},
		{"stats", UnknownFormat},
		{"stats.gz", UnknownFormat},
		{"stats.txt", UnknownFormat},
	}
	for _, tt := range tests {
		if got := FromPath(tt.path); got != tt.want {
			t.Errorf("FromPath(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}
}

func TestTextRoundTrip(t *testing.T) {
	for _, f := range AllFormats() {
		d, err := f.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var g Format
		if err := g.UnmarshalText(d); err != nil {
			t.Fatal(err)
		}
		if g != f {
			t.Errorf("got %s want %s", g, f)
		}
	}
	if PickleFormat.IsOutput() {
		t.Error("pickle should not be an output format")
	}
}
