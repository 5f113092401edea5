// Package cachestore memoizes compiled programs keyed by a canonical patch
// hash, so repeated compiles of an unchanged patch during interactive
// editing skip recompilation entirely. It does not replace hot-swap
// (runtime.Component.Swap) — it only avoids redoing compiler work when the
// canonical hash is unchanged (SPEC_FULL.md §5).
package cachestore

import (
	"bytes"
	"database/sql"
	"encoding/gob"
	"errors"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sarchlab/patchflow/compiler"
)

// ErrNotFound is returned by Get when no entry matches the given hash.
var ErrNotFound = errors.New("cachestore: no entry for hash")

func init() {
	// TypedConst.Value is interface{} underneath; gob needs every concrete
	// literal shape ScalarConst/SigConst/FieldConst can intern registered
	// up front. Block/lens authors introducing a new literal shape must add
	// a matching gob.Register here.
	gob.Register(float64(0))
	gob.Register(false)
	gob.Register([2]float64{})
	gob.Register([3]float64{})
	gob.Register([4]float64{})
}

// Store persists CompiledProgram blobs keyed by canonical patch hash across
// process restarts, backed by either sqlite (default, local editing) or
// mysql (shared team cache).
type Store struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) a local sqlite-backed store.
func OpenSQLite(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	return open(db)
}

// OpenMySQL opens a shared mysql-backed store using a standard DSN.
func OpenMySQL(dsn string) (*Store, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	return open(db)
}

func open(db *sql.DB) (*Store, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS compiled_programs (
		patch_hash TEXT PRIMARY KEY,
		payload    BLOB NOT NULL,
		created_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Put stores a CompiledProgram under its canonical patch hash, overwriting
// any previous entry for that hash.
func (s *Store) Put(patchHash string, program *compiler.CompiledProgram) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(program); err != nil {
		return err
	}
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO compiled_programs (patch_hash, payload, created_at) VALUES (?, ?, ?)`,
		patchHash, buf.Bytes(), time.Now().Unix(),
	)
	return err
}

// Get retrieves the CompiledProgram stored for a canonical patch hash, or
// ErrNotFound if the hash was never cached. A later Put under the same hash
// replaces the entry, so Get returns the most recent one; invalidation is
// the caller's responsibility: it must compute a new hash whenever the
// canonical patch changes.
func (s *Store) Get(patchHash string) (*compiler.CompiledProgram, error) {
	row := s.db.QueryRow(`SELECT payload FROM compiled_programs WHERE patch_hash = ?`, patchHash)
	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var program compiler.CompiledProgram
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&program); err != nil {
		return nil, err
	}
	return &program, nil
}
