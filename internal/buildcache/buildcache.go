// Package buildcache is the persistent incremental-compilation cache spec
// 4.7a describes: across process runs, skip re-checking a file whose
// content hash hasn't changed since the last run. Keyed by (file path,
// sha256 content hash), storing a protowire-encoded blob of the file's
// diagnostics so restoring a hit doesn't need the full type graph back in
// memory. Backed by modernc.org/sqlite (pure-Go, no cgo) via database/sql,
// the same driver the rest of the pack's storage-layer examples reach for
// when they need an embedded persistent store.
package buildcache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	_ "modernc.org/sqlite"
)

// Diagnostic is the minimal persisted shape of one cached diagnostic; it
// mirrors internal/diagnostics.DiagnosticError's fields without importing
// that package, keeping the cache's on-disk schema decoupled from the
// in-memory diagnostic representation.
type Diagnostic struct {
	Code        string
	File        string
	StartLine   int
	StartColumn int
	Message     string
}

// Entry is one cached file's result.
type Entry struct {
	ContentHash string
	Diagnostics []Diagnostic
}

// Cache wraps a sqlite-backed key/value store of Entry values.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite database at path and
// ensures its schema exists.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("buildcache: open %s: %w", path, err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS file_cache (
		path TEXT PRIMARY KEY,
		content_hash TEXT NOT NULL,
		payload BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("buildcache: create schema: %w", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// ContentHash hashes a file's contents for cache-key comparison.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Lookup returns the cached entry for path if its stored content hash
// matches contentHash, i.e. the file hasn't changed since it was cached.
func (c *Cache) Lookup(path, contentHash string) (Entry, bool, error) {
	var storedHash string
	var payload []byte
	err := c.db.QueryRow(`SELECT content_hash, payload FROM file_cache WHERE path = ?`, path).Scan(&storedHash, &payload)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("buildcache: lookup %s: %w", path, err)
	}
	if storedHash != contentHash {
		return Entry{}, false, nil
	}
	diags, err := decodeDiagnostics(payload)
	if err != nil {
		return Entry{}, false, fmt.Errorf("buildcache: decode %s: %w", path, err)
	}
	return Entry{ContentHash: storedHash, Diagnostics: diags}, true, nil
}

// Store persists path's result, replacing any prior entry.
func (c *Cache) Store(path string, entry Entry) error {
	payload := encodeDiagnostics(entry.Diagnostics)
	_, err := c.db.Exec(`INSERT INTO file_cache (path, content_hash, payload) VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET content_hash = excluded.content_hash, payload = excluded.payload`,
		path, entry.ContentHash, payload)
	if err != nil {
		return fmt.Errorf("buildcache: store %s: %w", path, err)
	}
	return nil
}

// Invalidate drops path's cached entry.
func (c *Cache) Invalidate(path string) error {
	_, err := c.db.Exec(`DELETE FROM file_cache WHERE path = ?`, path)
	if err != nil {
		return fmt.Errorf("buildcache: invalidate %s: %w", path, err)
	}
	return nil
}

// Wire field numbers for the hand-rolled protowire encoding below. One
// message per diagnostic, length-delimited, concatenated back to back;
// full protobuf descriptors are unnecessary for a cache payload only this
// package ever reads.
const (
	fieldCode        = 1
	fieldFile        = 2
	fieldStartLine   = 3
	fieldStartColumn = 4
	fieldMessage     = 5
)

func encodeDiagnostics(diags []Diagnostic) []byte {
	var out []byte
	for _, d := range diags {
		var msg []byte
		msg = protowire.AppendTag(msg, fieldCode, protowire.BytesType)
		msg = protowire.AppendString(msg, d.Code)
		msg = protowire.AppendTag(msg, fieldFile, protowire.BytesType)
		msg = protowire.AppendString(msg, d.File)
		msg = protowire.AppendTag(msg, fieldStartLine, protowire.VarintType)
		msg = protowire.AppendVarint(msg, uint64(int64(d.StartLine)))
		msg = protowire.AppendTag(msg, fieldStartColumn, protowire.VarintType)
		msg = protowire.AppendVarint(msg, uint64(int64(d.StartColumn)))
		msg = protowire.AppendTag(msg, fieldMessage, protowire.BytesType)
		msg = protowire.AppendString(msg, d.Message)

		out = protowire.AppendTag(out, 1, protowire.BytesType)
		out = protowire.AppendBytes(out, msg)
	}
	return out
}

func decodeDiagnostics(data []byte) ([]Diagnostic, error) {
	var diags []Diagnostic
	for len(data) > 0 {
		_, wireType, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		if wireType != protowire.BytesType {
			return nil, fmt.Errorf("buildcache: unexpected wire type %d", wireType)
		}
		msgBytes, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]

		d, err := decodeDiagnostic(msgBytes)
		if err != nil {
			return nil, err
		}
		diags = append(diags, d)
	}
	return diags, nil
}

func decodeDiagnostic(data []byte) (Diagnostic, error) {
	var d Diagnostic
	for len(data) > 0 {
		num, wireType, n := protowire.ConsumeTag(data)
		if n < 0 {
			return d, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case fieldCode, fieldFile, fieldMessage:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return d, protowire.ParseError(n)
			}
			data = data[n:]
			switch num {
			case fieldCode:
				d.Code = string(v)
			case fieldFile:
				d.File = string(v)
			case fieldMessage:
				d.Message = string(v)
			}
		case fieldStartLine, fieldStartColumn:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return d, protowire.ParseError(n)
			}
			data = data[n:]
			switch num {
			case fieldStartLine:
				d.StartLine = int(int64(v))
			case fieldStartColumn:
				d.StartColumn = int(int64(v))
			}
		default:
			_, n := protowire.ConsumeFieldValue(num, wireType, data)
			if n < 0 {
				return d, protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return d, nil
}
