package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"media-gallery/internal/logging"
	"media-gallery/internal/metrics"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// FileName is the database file created inside DATABASE_DIR.
const FileName = "gallery.db"

// Database manages all database operations for the gallery.
type Database struct {
	db     *sql.DB // readers
	wdb    *sql.DB // single writer, transactions begin IMMEDIATE
	dbPath string
	mu     sync.Mutex // serializes writers inside this process
}

// New creates a new Database instance.
// dbPath is the full path to the database FILE, and its parent directory
// must already exist and be writable.
func New(ctx context.Context, dbPath string) (*Database, error) {
	logging.Info("Database path: %s", dbPath)

	if err := diagnoseDatabasePermissions(dbPath); err != nil {
		logging.Warn("Database permission diagnostics: %v", err)
	}

	// busy_timeout helps prevent "database is locked" errors when the
	// ingester and the server share the file
	base := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on", dbPath)

	wdb, err := open(ctx, base+"&_txlock=immediate")
	if err != nil {
		return nil, err
	}
	wdb.SetMaxOpenConns(1)

	db, err := open(ctx, base)
	if err != nil {
		closeQuietly(wdb)
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{db: db, wdb: wdb, dbPath: dbPath}

	if err := d.initialize(ctx); err != nil {
		closeQuietly(db)
		closeQuietly(wdb)
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logging.Info("Database initialized successfully at %s", dbPath)
	return d, nil
}

func open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		closeQuietly(db)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func closeQuietly(db *sql.DB) {
	if err := db.Close(); err != nil {
		logging.Error("failed to close database: %v", err)
	}
}

const schema = `
	CREATE TABLE IF NOT EXISTS gallery_items (
		id TEXT PRIMARY KEY,
		slug TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL CHECK (type IN ('main', 'students', 'success')),
		width INTEGER NOT NULL CHECK (width > 0),
		height INTEGER NOT NULL CHECK (height > 0),
		blur_data TEXT NOT NULL,
		source_path TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_gallery_items_listing ON gallery_items(type, created_at DESC, slug);

	CREATE TABLE IF NOT EXISTS gallery_assets (
		item_id TEXT NOT NULL REFERENCES gallery_items(id) ON DELETE CASCADE,
		fmt TEXT NOT NULL CHECK (fmt IN ('avif', 'webp', 'jpg', 'video')),
		width_px INTEGER NOT NULL CHECK (width_px > 0),
		url TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_gallery_assets_item ON gallery_assets(item_id);

	CREATE TABLE IF NOT EXISTS gallery_i18n (
		item_id TEXT NOT NULL REFERENCES gallery_items(id) ON DELETE CASCADE,
		locale TEXT NOT NULL,
		field TEXT NOT NULL CHECK (field IN ('title', 'alt', 'description')),
		value TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (item_id, locale, field)
	);

	CREATE TABLE IF NOT EXISTS tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		slug TEXT NOT NULL UNIQUE,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE TABLE IF NOT EXISTS tag_i18n (
		tag_id INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		locale TEXT NOT NULL,
		name TEXT NOT NULL,
		PRIMARY KEY (tag_id, locale)
	);

	CREATE TABLE IF NOT EXISTS gallery_item_tags (
		item_id TEXT NOT NULL REFERENCES gallery_items(id) ON DELETE CASCADE,
		tag_id INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		PRIMARY KEY (item_id, tag_id)
	);

	CREATE INDEX IF NOT EXISTS idx_gallery_item_tags_tag ON gallery_item_tags(tag_id);
`

func (d *Database) initialize(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, err := d.wdb.ExecContext(ctx, schema)
	return err
}

// Close closes both connection pools.
func (d *Database) Close() error {
	return errors.Join(d.db.Close(), d.wdb.Close())
}

// Path returns the database file path.
func (d *Database) Path() string {
	return d.dbPath
}

// Ping checks that the database answers queries.
func (d *Database) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return d.db.PingContext(ctx)
}

// beginWrite starts a write transaction. The caller must pass the returned
// start time and final error to endWrite.
func (d *Database) beginWrite(ctx context.Context) (*sql.Tx, time.Time, error) {
	d.mu.Lock()
	start := time.Now()
	tx, err := d.wdb.BeginTx(ctx, nil)
	if err != nil {
		d.mu.Unlock()
		return nil, start, err
	}
	return tx, start, nil
}

// endWrite commits or rolls back a transaction started by beginWrite.
func (d *Database) endWrite(tx *sql.Tx, start time.Time, err error) error {
	defer d.mu.Unlock()

	duration := time.Since(start).Seconds()

	if err != nil {
		metrics.DBTransactionDuration.WithLabelValues("rollback").Observe(duration)
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback also failed: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		metrics.DBTransactionDuration.WithLabelValues("rollback").Observe(duration)
		return err
	}
	metrics.DBTransactionDuration.WithLabelValues("commit").Observe(duration)
	return nil
}

// recordQuery records database query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// UpdateDBMetrics updates database connection metrics
func (d *Database) UpdateDBMetrics() {
	stats := d.db.Stats()
	metrics.DBConnectionsOpen.Set(float64(stats.OpenConnections + d.wdb.Stats().OpenConnections))
}

// diagnoseDatabasePermissions checks database directory and file permissions
func diagnoseDatabasePermissions(dbPath string) error {
	dir := filepath.Dir(dbPath)

	dirInfo, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot stat database directory: %w", err)
	}

	logging.Debug("Database directory: %s (mode: %v)", dir, dirInfo.Mode())

	testFile := filepath.Join(dir, ".perm-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return fmt.Errorf("database directory not writable: %w", err)
	}
	_ = os.Remove(testFile)

	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		logging.Debug("Database file exists: %s (mode: %v, size: %d bytes)", p, info.Mode(), info.Size())
		if info.Mode().Perm()&0o200 == 0 {
			logging.Warn("%s is read-only! Mode: %v - this will cause write failures", filepath.Base(p), info.Mode())
			if chmodErr := os.Chmod(p, 0o600); chmodErr != nil {
				logging.Error("Failed to fix permissions on %s: %v", p, chmodErr)
			} else {
				logging.Info("Fixed permissions on %s", p)
			}
		}
	}

	return nil
}
