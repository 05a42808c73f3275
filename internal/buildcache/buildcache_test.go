package buildcache

import (
	"path/filepath"
	"testing"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.sqlite")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestStoreAndLookupHit(t *testing.T) {
	c := openTestCache(t)
	hash := ContentHash([]byte("const x = 1;"))
	entry := Entry{
		ContentHash: hash,
		Diagnostics: []Diagnostic{
			{Code: "TSZ2322", File: "a.tsz", StartLine: 3, StartColumn: 5, Message: "not assignable"},
		},
	}
	if err := c.Store("a.tsz", entry); err != nil {
		t.Fatalf("store: %v", err)
	}

	got, hit, err := c.Lookup("a.tsz", hash)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !hit {
		t.Fatal("expected cache hit")
	}
	if len(got.Diagnostics) != 1 || got.Diagnostics[0] != entry.Diagnostics[0] {
		t.Fatalf("got %+v", got.Diagnostics)
	}
}

func TestLookupMissOnHashChange(t *testing.T) {
	c := openTestCache(t)
	oldHash := ContentHash([]byte("const x = 1;"))
	c.Store("a.tsz", Entry{ContentHash: oldHash})

	newHash := ContentHash([]byte("const x = 2;"))
	_, hit, err := c.Lookup("a.tsz", newHash)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if hit {
		t.Fatal("expected miss after content changed")
	}
}

func TestLookupMissUnknownPath(t *testing.T) {
	c := openTestCache(t)
	_, hit, err := c.Lookup("never-stored.tsz", "deadbeef")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if hit {
		t.Fatal("expected miss for unknown path")
	}
}

func TestStoreOverwrites(t *testing.T) {
	c := openTestCache(t)
	hashA := ContentHash([]byte("a"))
	hashB := ContentHash([]byte("b"))
	c.Store("a.tsz", Entry{ContentHash: hashA, Diagnostics: []Diagnostic{{Code: "X1"}}})
	c.Store("a.tsz", Entry{ContentHash: hashB, Diagnostics: []Diagnostic{{Code: "X2"}}})

	got, hit, err := c.Lookup("a.tsz", hashB)
	if err != nil || !hit {
		t.Fatalf("lookup: hit=%v err=%v", hit, err)
	}
	if len(got.Diagnostics) != 1 || got.Diagnostics[0].Code != "X2" {
		t.Fatalf("got %+v", got.Diagnostics)
	}
}

func TestInvalidate(t *testing.T) {
	c := openTestCache(t)
	hash := ContentHash([]byte("a"))
	c.Store("a.tsz", Entry{ContentHash: hash})
	if err := c.Invalidate("a.tsz"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, hit, err := c.Lookup("a.tsz", hash)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if hit {
		t.Fatal("expected miss after invalidate")
	}
}

func TestEncodeDecodeMultipleDiagnostics(t *testing.T) {
	diags := []Diagnostic{
		{Code: "TSZ2322", File: "a.tsz", StartLine: 1, StartColumn: 1, Message: "first"},
		{Code: "TSZ2339", File: "a.tsz", StartLine: 2, StartColumn: 9, Message: "second, with unicode: café"},
	}
	encoded := encodeDiagnostics(diags)
	decoded, err := decodeDiagnostics(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != len(diags) {
		t.Fatalf("got %d diagnostics, want %d", len(decoded), len(diags))
	}
	for i := range diags {
		if decoded[i] != diags[i] {
			t.Fatalf("entry %d: got %+v, want %+v", i, decoded[i], diags[i])
		}
	}
}

func TestEncodeDecodeEmpty(t *testing.T) {
	decoded, err := decodeDiagnostics(encodeDiagnostics(nil))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != 0 {
		t.Fatalf("got %d diagnostics, want 0", len(decoded))
	}
}
