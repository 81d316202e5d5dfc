// Package cache persists synthesized guidance audio in a local SQLite
// database, keyed by content fingerprint and compressed with zstd.
// Audio for a given fingerprint never changes, so entries are written
// once and replayed across sessions.
package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"github.com/systomic777/alex-workout/guide"
)

const currentVersion = 1

// Store is the on-disk audio store. A single connection is shared and
// serialized; cue payloads are small and writes are rare after the
// first bulk population.
type Store struct {
	db      *sql.DB
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// Open opens (or creates) the store at dbPath and runs migrations.
// Compression level follows the zstd scale (1 fastest, 3 default).
func Open(dbPath string, compressionLevel int) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	if compressionLevel <= 0 {
		compressionLevel = 3
	}
	encoder, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(compressionLevel)))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	s := &Store{db: db, encoder: encoder, decoder: decoder}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// OpenMemory creates an in-memory store for testing.
func OpenMemory() (*Store, error) {
	return Open(":memory:", 1)
}

func (s *Store) Close() error {
	s.encoder.Close()
	s.decoder.Close()
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version >= currentVersion {
		return nil
	}
	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}
	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS guidance (
		key        TEXT PRIMARY KEY,
		mime       TEXT NOT NULL,
		audio      BLOB NOT NULL,
		created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// Put stores an audio payload under its fingerprint. An existing entry
// is left untouched; identical fingerprints imply identical audio, so
// the first write wins.
func (s *Store) Put(key string, audio guide.Audio) error {
	compressed := s.encoder.EncodeAll(audio.Data, nil)
	_, err := s.db.Exec(
		"INSERT INTO guidance (key, mime, audio) VALUES (?, ?, ?) ON CONFLICT(key) DO NOTHING",
		key, audio.MIME, compressed)
	if err != nil {
		return fmt.Errorf("store audio %s: %w", key, err)
	}
	return nil
}

// Get loads the audio payload for a fingerprint. A missing entry
// returns ErrNotCached.
func (s *Store) Get(key string) (guide.Audio, error) {
	var mime string
	var compressed []byte
	err := s.db.QueryRow("SELECT mime, audio FROM guidance WHERE key = ?", key).
		Scan(&mime, &compressed)
	if errors.Is(err, sql.ErrNoRows) {
		return guide.Audio{}, fmt.Errorf("%w: %s", guide.ErrNotCached, key)
	}
	if err != nil {
		return guide.Audio{}, fmt.Errorf("load audio %s: %w", key, err)
	}
	data, err := s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return guide.Audio{}, fmt.Errorf("decompress audio %s: %w", key, err)
	}
	audio := guide.Audio{MIME: mime, Data: data}
	if mime == guide.MIMEPCM {
		audio.Rate = guide.SampleRate
	}
	return audio, nil
}

// Has reports whether a fingerprint is stored.
func (s *Store) Has(key string) (bool, error) {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM guidance WHERE key = ?", key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Keys returns the set of stored fingerprints.
func (s *Store) Keys() (map[string]bool, error) {
	rows, err := s.db.Query("SELECT key FROM guidance")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	keys := make(map[string]bool)
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys[k] = true
	}
	return keys, rows.Err()
}

// Delete removes one entry. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	_, err := s.db.Exec("DELETE FROM guidance WHERE key = ?", key)
	return err
}

// Clear removes every entry.
func (s *Store) Clear() error {
	_, err := s.db.Exec("DELETE FROM guidance")
	return err
}

// Len returns the number of stored entries.
func (s *Store) Len() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM guidance").Scan(&n)
	return n, err
}

// TotalSize returns the compressed payload bytes on disk.
func (s *Store) TotalSize() (int64, error) {
	var n sql.NullInt64
	err := s.db.QueryRow("SELECT SUM(LENGTH(audio)) FROM guidance").Scan(&n)
	return n.Int64, err
}
