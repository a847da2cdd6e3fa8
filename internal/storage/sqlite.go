package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mattn/go-sqlite3"

	"github.com/starford/rosarium/internal/apperr"
	"github.com/starford/rosarium/internal/models"
)

const stateSchemaSQL = `
CREATE TABLE IF NOT EXISTS state (
	bucket  TEXT PRIMARY KEY,
	payload BLOB NOT NULL
);`

// Buckets mirror the top-level snapshot fields.
var sqliteBuckets = []string{fieldSpecimens, fieldEvents, fieldSettings}

// SQLite implements Provider as one JSON payload per bucket in a state table.
type SQLite struct {
	conn  *sql.DB
	path  string
	quota int64
	mu    sync.Mutex
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(path string, quota int64) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("storage: mkdir: %w", err)
	}
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("storage: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	if _, err := conn.Exec(stateSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: apply schema: %w", err)
	}
	return &SQLite{conn: conn, path: path, quota: quota}, nil
}

// Path returns the database path.
func (s *SQLite) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

// Load reassembles the snapshot from its buckets.
func (s *SQLite) Load(ctx context.Context) (*models.Snapshot, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return nil, fmt.Errorf("storage: select state: %w", err)
	}
	defer rows.Close()

	doc := make(map[string]json.RawMessage, len(sqliteBuckets))
	for rows.Next() {
		var (
			bucket  string
			payload []byte
		)
		if err := rows.Scan(&bucket, &payload); err != nil {
			return nil, fmt.Errorf("storage: scan: %w", err)
		}
		doc[bucket] = payload
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: rows: %w", err)
	}
	if len(doc) == 0 {
		return nil, apperr.ErrNotFound
	}
	return decodeFields(doc)
}

// Save writes every bucket in one transaction.
func (s *SQLite) Save(ctx context.Context, snap *models.Snapshot) (retErr error) {
	snap = normalize(snap)
	payloads := make(map[string][]byte, len(sqliteBuckets))
	total := 0
	for _, bucket := range sqliteBuckets {
		var (
			data []byte
			err  error
		)
		switch bucket {
		case fieldSpecimens:
			data, err = json.Marshal(snap.Specimens)
		case fieldEvents:
			data, err = json.Marshal(snap.Events)
		case fieldSettings:
			data, err = json.Marshal(snap.Settings)
		}
		if err != nil {
			return fmt.Errorf("storage: encode %s: %w", bucket, err)
		}
		payloads[bucket] = data
		total += len(data)
	}
	if err := checkQuota(total, s.quota); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin: %w", mapSQLiteErr(err))
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range sqliteBuckets {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO state(bucket, payload) VALUES(?, ?)
			 ON CONFLICT(bucket) DO UPDATE SET payload = excluded.payload`,
			bucket, payloads[bucket]); err != nil {
			return fmt.Errorf("storage: upsert %s: %w", bucket, mapSQLiteErr(err))
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit: %w", mapSQLiteErr(err))
	}
	snapshotBytes.WithLabelValues(DriverSQLite).Set(float64(total))
	return nil
}

// mapSQLiteErr tags SQLITE_FULL with apperr.ErrQuotaExceeded.
func mapSQLiteErr(err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrFull {
		return fmt.Errorf("%w: %w", apperr.ErrQuotaExceeded, err)
	}
	return mapDiskErr(err)
}
