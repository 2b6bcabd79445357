/*
Copyright © 2026 sodagql contributors

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
	"github.com/klauspost/compress/zstd"

	_ "modernc.org/sqlite"

	"sodagql.dev/builder/internal/discovery"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	analyzer_id  TEXT NOT NULL,
	evaluator_id TEXT NOT NULL,
	file_path    TEXT NOT NULL,
	payload      BLOB NOT NULL,
	PRIMARY KEY (analyzer_id, evaluator_id, file_path)
);
`

// DefaultCacheDir resolves the builder's disk cache directory via XDG,
// matching the teacher's own cache-directory resolution convention.
func DefaultCacheDir() (string, error) {
	return xdg.CacheFile(filepath.Join("sodagql", "discovery-cache.db"))
}

// SQLiteCache is a pure-Go (no cgo), disk-backed DiscoveryCache. Payloads
// are JSON-encoded then zstd-compressed before being written as a BLOB.
type SQLiteCache struct {
	db  *sql.DB
	mu  sync.Mutex
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// OpenSQLiteCache opens (creating if necessary) a disk-backed cache at path.
func OpenSQLiteCache(path string) (*SQLiteCache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("cache: failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: failed to open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: failed to initialize schema: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: failed to initialize compressor: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: failed to initialize decompressor: %w", err)
	}

	return &SQLiteCache{db: db, enc: enc, dec: dec}, nil
}

func (c *SQLiteCache) Close() error {
	c.dec.Close()
	return c.db.Close()
}

func (c *SQLiteCache) Load(ns Namespace, filePath string) (discovery.Snapshot, bool, error) {
	return c.load(ns, filePath)
}

func (c *SQLiteCache) Peek(ns Namespace, filePath string) (discovery.Snapshot, bool) {
	snap, ok, err := c.load(ns, filePath)
	if err != nil {
		return discovery.Snapshot{}, false
	}
	return snap, ok
}

func (c *SQLiteCache) load(ns Namespace, filePath string) (discovery.Snapshot, bool, error) {
	var payload []byte
	row := c.db.QueryRow(
		`SELECT payload FROM snapshots WHERE analyzer_id = ? AND evaluator_id = ? AND file_path = ?`,
		ns.AnalyzerId, ns.EvaluatorId, filePath,
	)
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return discovery.Snapshot{}, false, nil
		}
		return discovery.Snapshot{}, false, fmt.Errorf("cache: load %s: %w", filePath, err)
	}

	c.mu.Lock()
	raw, err := c.dec.DecodeAll(payload, nil)
	c.mu.Unlock()
	if err != nil {
		return discovery.Snapshot{}, false, fmt.Errorf("cache: decompress %s: %w", filePath, err)
	}

	var snap discovery.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return discovery.Snapshot{}, false, fmt.Errorf("cache: decode %s: %w", filePath, err)
	}
	return snap, true, nil
}

func (c *SQLiteCache) Store(ns Namespace, filePath string, snap discovery.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", filePath, err)
	}

	c.mu.Lock()
	compressed := c.enc.EncodeAll(raw, nil)
	c.mu.Unlock()

	_, err = c.db.Exec(
		`INSERT INTO snapshots (analyzer_id, evaluator_id, file_path, payload) VALUES (?, ?, ?, ?)
		 ON CONFLICT (analyzer_id, evaluator_id, file_path) DO UPDATE SET payload = excluded.payload`,
		ns.AnalyzerId, ns.EvaluatorId, filePath, compressed,
	)
	if err != nil {
		return fmt.Errorf("cache: store %s: %w", filePath, err)
	}
	return nil
}

func (c *SQLiteCache) Delete(ns Namespace, filePath string) error {
	_, err := c.db.Exec(
		`DELETE FROM snapshots WHERE analyzer_id = ? AND evaluator_id = ? AND file_path = ?`,
		ns.AnalyzerId, ns.EvaluatorId, filePath,
	)
	return err
}

func (c *SQLiteCache) Entries(ns Namespace) ([]string, error) {
	rows, err := c.db.Query(
		`SELECT file_path FROM snapshots WHERE analyzer_id = ? AND evaluator_id = ?`,
		ns.AnalyzerId, ns.EvaluatorId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (c *SQLiteCache) Clear(ns Namespace) error {
	_, err := c.db.Exec(
		`DELETE FROM snapshots WHERE analyzer_id = ? AND evaluator_id = ?`,
		ns.AnalyzerId, ns.EvaluatorId,
	)
	return err
}

func (c *SQLiteCache) Size(ns Namespace) (int, error) {
	var n int
	row := c.db.QueryRow(
		`SELECT COUNT(*) FROM snapshots WHERE analyzer_id = ? AND evaluator_id = ?`,
		ns.AnalyzerId, ns.EvaluatorId,
	)
	err := row.Scan(&n)
	return n, err
}
