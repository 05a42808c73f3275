package sourcemap

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestVLQRoundTrip(t *testing.T) {
	cases := []int{0, 1, -1, 15, -15, 16, 1000, -1000, 123456}
	for _, v := range cases {
		var b strings.Builder
		writeVLQ(&b, v)
		got, next := DecodeVLQ(b.String(), 0)
		if got != v {
			t.Fatalf("value %d: round-tripped to %d", v, got)
		}
		if next != len(b.String()) {
			t.Fatalf("value %d: consumed %d of %d bytes", v, next, len(b.String()))
		}
	}
}

func TestSerializeBasic(t *testing.T) {
	b := New("out.js")
	srcIdx := b.AddSource("in.tsz")
	nameIdx := b.AddName("x")

	b.AddMapping(Mapping{GeneratedLine: 0, GeneratedColumn: 0, SourceIndex: srcIdx, OriginalLine: 0, OriginalColumn: 0})
	b.AddMapping(Mapping{GeneratedLine: 0, GeneratedColumn: 4, SourceIndex: srcIdx, OriginalLine: 0, OriginalColumn: 4, NameIndex: nameIdx, HasName: true})
	b.AddMapping(Mapping{GeneratedLine: 1, GeneratedColumn: 0, SourceIndex: srcIdx, OriginalLine: 1, OriginalColumn: 0})

	out, err := b.Serialize()
	if err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		Version  int      `json:"version"`
		File     string   `json:"file"`
		Sources  []string `json:"sources"`
		Names    []string `json:"names"`
		Mappings string   `json:"mappings"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Version != 3 {
		t.Fatalf("version = %d, want 3", decoded.Version)
	}
	if decoded.File != "out.js" {
		t.Fatalf("file = %q", decoded.File)
	}
	if len(decoded.Sources) != 1 || decoded.Sources[0] != "in.tsz" {
		t.Fatalf("sources = %v", decoded.Sources)
	}
	if len(decoded.Names) != 1 || decoded.Names[0] != "x" {
		t.Fatalf("names = %v", decoded.Names)
	}
	if decoded.Mappings == "" {
		t.Fatal("expected non-empty mappings")
	}
}

func TestSerializeEmpty(t *testing.T) {
	b := New("out.js")
	out, err := b.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Mappings string   `json:"mappings"`
		Sources  []string `json:"sources"`
		Names    []string `json:"names"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Mappings != "" {
		t.Fatalf("mappings = %q, want empty", decoded.Mappings)
	}
	if decoded.Sources == nil || decoded.Names == nil {
		t.Fatal("expected empty-but-non-null sources/names arrays")
	}
}

func TestAddSourceDedups(t *testing.T) {
	b := New("out.js")
	i1 := b.AddSource("a.tsz")
	i2 := b.AddSource("b.tsz")
	i3 := b.AddSource("a.tsz")
	if i1 != i3 {
		t.Fatalf("expected dedup: %d != %d", i1, i3)
	}
	if i1 == i2 {
		t.Fatal("expected distinct indices for distinct sources")
	}
}
