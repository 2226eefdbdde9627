// Package cache implements the persistent, content-addressed result cache.
//
// Each entry is one blob file in the cache directory, named by the hex
// SHA-256 content key. Reads never fail: a missing, truncated, or
// corrupted entry is a miss. Writes replace entries wholesale. Swallowed
// read errors are routed to an optional diagnostic logger instead of
// being discarded.
//
// The cache is per-process: sharing one directory across processes needs
// external advisory locking, which this package does not provide.
package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	// fileExt is appended to every entry file name.
	fileExt = ".qest"
)

// magic identifies a cache blob file.
var magic = []byte("QEC1")

// Key derives the stable content key over the given canonical byte parts.
// Identical inputs produce identical keys; any changed byte changes the key.
func Key(parts ...[]byte) string {
	h := sha256.New()
	var n [8]byte
	for _, p := range parts {
		// Length-prefix every part so part boundaries are unambiguous.
		binary.LittleEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Cache is a content-addressed blob store over one directory.
type Cache struct {
	dir  string
	diag *slog.Logger
}

// DefaultDir returns the per-user default cache directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "qopt-cache")
	}
	return filepath.Join(home, ".qopt", "cache")
}

// New opens (creating if needed) a cache rooted at dir. An empty dir uses
// DefaultDir. The diagnostic logger receives swallowed read errors; nil
// disables diagnostics.
func New(dir string, diag *slog.Logger) (*Cache, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache directory %s: %w", dir, err)
	}
	if diag == nil {
		diag = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Cache{dir: dir, diag: diag}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+fileExt)
}

// Get returns the stored value for key. Absent and corrupt entries both
// report a miss; Get never returns an error.
func (c *Cache) Get(key string) ([]byte, bool) {
	raw, err := os.ReadFile(c.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			c.diag.Warn("cache read failed, treating as miss", "key", key, "error", err)
		}
		return nil, false
	}

	value, err := decodeBlob(raw)
	if err != nil {
		c.diag.Warn("cache entry corrupted, treating as miss", "key", key, "error", err)
		return nil, false
	}
	return value, true
}

// Set serializes and persists value under key, replacing any prior entry.
// The write goes through a temp file and rename so readers never observe
// a partially written entry.
func (c *Cache) Set(key string, value []byte) error {
	tmp, err := os.CreateTemp(c.dir, key+".tmp*")
	if err != nil {
		return fmt.Errorf("creating cache temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(encodeBlob(value)); err != nil {
		tmp.Close()
		return fmt.Errorf("writing cache entry %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing cache entry %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		return fmt.Errorf("installing cache entry %s: %w", key, err)
	}
	return nil
}

// Purge deletes all entries. Idempotent on an already-empty cache.
func (c *Cache) Purge() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("listing cache directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing cache entry %s: %w", e.Name(), err)
		}
	}
	return nil
}

// encodeBlob frames a value as magic || len || value || sha256(value).
func encodeBlob(value []byte) []byte {
	buf := make([]byte, 0, len(magic)+8+len(value)+sha256.Size)
	buf = append(buf, magic...)
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(len(value)))
	buf = append(buf, n[:]...)
	buf = append(buf, value...)
	sum := sha256.Sum256(value)
	return append(buf, sum[:]...)
}

// decodeBlob validates the frame and returns the value.
func decodeBlob(raw []byte) ([]byte, error) {
	header := len(magic) + 8
	if len(raw) < header+sha256.Size {
		return nil, fmt.Errorf("blob too short: %d bytes", len(raw))
	}
	if !bytes.Equal(raw[:len(magic)], magic) {
		return nil, fmt.Errorf("bad magic bytes")
	}
	size := binary.LittleEndian.Uint64(raw[len(magic):header])
	if uint64(len(raw)) != uint64(header)+size+sha256.Size {
		return nil, fmt.Errorf("blob length %d does not match declared size %d", len(raw), size)
	}
	value := raw[header : header+int(size)]
	var stored [sha256.Size]byte
	copy(stored[:], raw[header+int(size):])
	if sha256.Sum256(value) != stored {
		return nil, fmt.Errorf("checksum mismatch")
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}
