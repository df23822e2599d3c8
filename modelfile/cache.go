package modelfile

import (
	"bytes"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"lukechampine.com/blake3"

	"github.com/ArtRand/cPecan/cpecanerr"
)

// Cache persists parsed model tables in a SQLite database keyed by a
// blake3 hash of the source file's bytes, so repeated runs against the
// same model file skip re-parsing it.
type Cache struct {
	db *sql.DB
}

// OpenCache opens (creating if necessary) a SQLite-backed model cache at
// path.
func OpenCache(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening model cache %s: %v", cpecanerr.ErrBadInput, path, err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS kmer_params (
	digest TEXT NOT NULL,
	kmer TEXT NOT NULL,
	level_mean REAL NOT NULL,
	level_sd REAL NOT NULL,
	noise_mean REAL NOT NULL,
	noise_sd REAL NOT NULL,
	noise_lambda REAL NOT NULL,
	PRIMARY KEY (digest, kmer)
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: creating model cache schema: %v", cpecanerr.ErrBadInput, err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error { return c.db.Close() }

// digestFile returns the hex-encoded blake3 hash of path's contents.
func digestFile(path string) (string, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("%w: reading model file %s: %v", cpecanerr.ErrBadInput, path, err)
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), data, nil
}

// Load returns path's parsed kmer table, from cache if a row already exists
// for this file's content hash, parsing and populating the cache otherwise.
func (c *Cache) Load(path string) (Table, error) {
	digest, data, err := digestFile(path)
	if err != nil {
		return nil, err
	}

	table, err := c.loadDigest(digest)
	if err != nil {
		return nil, err
	}
	if table != nil {
		return table, nil
	}

	table, err = Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if err := c.store(digest, table); err != nil {
		return nil, err
	}
	return table, nil
}

func (c *Cache) loadDigest(digest string) (Table, error) {
	rows, err := c.db.Query(
		`SELECT kmer, level_mean, level_sd, noise_mean, noise_sd, noise_lambda FROM kmer_params WHERE digest = ?`,
		digest,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: querying model cache: %v", cpecanerr.ErrBadInput, err)
	}
	defer rows.Close()

	table := make(Table)
	for rows.Next() {
		var kmer string
		var p KmerParams
		if err := rows.Scan(&kmer, &p.LevelMean, &p.LevelSD, &p.NoiseMean, &p.NoiseSD, &p.NoiseLambda); err != nil {
			return nil, fmt.Errorf("%w: scanning model cache row: %v", cpecanerr.ErrBadInput, err)
		}
		table[kmer] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading model cache rows: %v", cpecanerr.ErrBadInput, err)
	}
	if len(table) == 0 {
		return nil, nil
	}
	return table, nil
}

func (c *Cache) store(digest string, table Table) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: beginning model cache transaction: %v", cpecanerr.ErrBadInput, err)
	}
	stmt, err := tx.Prepare(
		`INSERT OR REPLACE INTO kmer_params (digest, kmer, level_mean, level_sd, noise_mean, noise_sd, noise_lambda)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("%w: preparing model cache insert: %v", cpecanerr.ErrBadInput, err)
	}
	defer stmt.Close()

	for kmer, p := range table {
		if _, err := stmt.Exec(digest, kmer, p.LevelMean, p.LevelSD, p.NoiseMean, p.NoiseSD, p.NoiseLambda); err != nil {
			tx.Rollback()
			return fmt.Errorf("%w: inserting model cache row: %v", cpecanerr.ErrBadInput, err)
		}
	}
	return tx.Commit()
}
