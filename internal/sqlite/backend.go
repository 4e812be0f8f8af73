package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/forage/internal/events"
	"github.com/mesh-intelligence/forage/pkg/types"
)

// Compile-time interface check.
var _ types.Store = (*Backend)(nil)

// Backend implements types.Store using SQLite as the query engine and
// forageables.jsonl as the source of truth. Each Attach builds a private
// SQLite file from JSONL, so several processes can share one data dir, and
// reloads it when another process rewrites the JSONL file.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	dataDir  string
	dbPath   string
	db       *sql.DB
	bus      *events.Bus
	dao      *forageablesTable
	logger   *slog.Logger

	watcher       *fsnotify.Watcher
	lastPersisted [sha256.Size]byte // digest of the JSONL content last read or written

	syncStrategy  string
	batchSize     int
	batchInterval time.Duration
	pendingWrites []pendingWrite // protected by batchMu
	batchTimer    *time.Timer    // protected by batchMu
	batchMu       sync.Mutex
}

// pendingWrite records a change whose JSONL persistence was deferred by the
// on_close or batch sync strategy.
type pendingWrite struct {
	operation events.Op
	id        int64
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger used by the backend and its event bus.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		logger: slog.Default().With("component", "store"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach validates config, creates DataDir if needed, rebuilds the SQLite
// database from forageables.jsonl and starts the change bus.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, fmt.Sprintf(databaseFilePattern, uuid.NewString()))

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			closeAndRemove(db, dbPath)
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	jsonlPath := filepath.Join(dataDir, forageablesJSONL)
	if err := ensureJSONL(jsonlPath); err != nil {
		closeAndRemove(db, dbPath)
		return err
	}
	digest, err := fileDigest(jsonlPath)
	if err != nil {
		closeAndRemove(db, dbPath)
		return err
	}
	loaded, err := loadForageablesJSONL(db, dataDir, false)
	if err != nil {
		closeAndRemove(db, dbPath)
		return fmt.Errorf("load JSONL: %w", err)
	}

	b.db = db
	b.dbPath = dbPath
	b.lastPersisted = digest
	b.config = config
	b.dataDir = dataDir
	b.bus = events.NewBus(events.WithLogger(b.logger.With("component", "events")))
	b.dao = &forageablesTable{backend: b}

	b.syncStrategy = config.SQLiteConfig.GetSyncStrategy()
	b.batchSize = config.SQLiteConfig.GetBatchSize()
	b.batchInterval = config.SQLiteConfig.GetBatchInterval()
	b.pendingWrites = nil
	if b.syncStrategy == types.SyncBatch {
		b.startBatchTimer()
	}

	b.attached = true
	b.startWatcher()
	b.logger.Debug("store attached",
		"data_dir", dataDir,
		"loaded", loaded,
		"sync_strategy", b.syncStrategy,
	)
	return nil
}

// DAO returns the forageables access interface.
func (b *Backend) DAO() (types.ForageableDAO, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	return b.dao, nil
}

// Health pings the database and runs a trivial query.
func (b *Backend) Health(ctx context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	if err := b.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	var result int
	if err := b.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if result != 1 {
		return fmt.Errorf("unexpected query result: %d", result)
	}
	return nil
}

// Detach flushes deferred JSONL writes, closes the change bus (ending every
// live stream) and closes the database. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	b.stopBatchTimer()
	if err := b.flushPendingWritesLocked(); err != nil {
		return fmt.Errorf("flush pending writes: %w", err)
	}

	b.stopWatcher()
	b.bus.Close()
	if err := closeAndRemove(b.db, b.dbPath); err != nil {
		return err
	}
	b.db = nil
	b.attached = false
	b.logger.Debug("store detached", "data_dir", b.dataDir)
	return nil
}

// changed publishes a change event and persists the table according to the
// sync strategy. The caller must hold b.mu for writing.
func (b *Backend) changed(ctx context.Context, op events.Op, id int64) error {
	if err := b.bus.Publish(context.WithoutCancel(ctx), events.Event{
		Table: tableForageables,
		Op:    op,
		ID:    id,
	}); err != nil {
		b.logger.Warn("publishing change", "op", op, "id", id, "error", err)
	}

	if b.shouldPersistImmediately() {
		return b.persistForageablesJSONL()
	}
	b.queueWrite(op, id)
	return nil
}

// persistForageablesJSONL rewrites forageables.jsonl from the table contents.
func (b *Backend) persistForageablesJSONL() error {
	rows, err := b.db.Query("SELECT " + forageableColumns + " FROM forageables ORDER BY id")
	if err != nil {
		return fmt.Errorf("querying forageables for persist: %w", err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		f, err := scanForageable(rows)
		if err != nil {
			return err
		}
		data, err := json.Marshal(toForageableJSON(*f))
		if err != nil {
			return fmt.Errorf("marshaling forageable %d: %w", f.ID, err)
		}
		records = append(records, data)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating forageables: %w", err)
	}

	if err := writeJSONL(filepath.Join(b.dataDir, forageablesJSONL), records); err != nil {
		return fmt.Errorf("persisting %s: %w", forageablesJSONL, err)
	}
	b.lastPersisted = recordsDigest(records)
	return nil
}

// Sync strategy methods

// shouldPersistImmediately returns true for the immediate strategy.
func (b *Backend) shouldPersistImmediately() bool {
	return b.syncStrategy == types.SyncImmediate || b.syncStrategy == ""
}

// queueWrite records a deferred write. For the batch strategy the queue is
// flushed once it reaches batchSize. The caller must hold b.mu.
func (b *Backend) queueWrite(op events.Op, id int64) {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	b.pendingWrites = append(b.pendingWrites, pendingWrite{operation: op, id: id})

	if b.syncStrategy == types.SyncBatch && len(b.pendingWrites) >= b.batchSize {
		if err := b.flushPendingWritesBatchLocked(); err != nil {
			b.logger.Warn("batch flush failed", "error", err)
		}
	}
}

// flushPendingWritesLocked persists pending writes. The caller must hold b.mu.
func (b *Backend) flushPendingWritesLocked() error {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	return b.flushPendingWritesBatchLocked()
}

// flushPendingWritesBatchLocked rewrites the JSONL file once for every queued
// write, since each rewrite captures the whole table. The caller must hold
// b.batchMu.
func (b *Backend) flushPendingWritesBatchLocked() error {
	if len(b.pendingWrites) == 0 {
		return nil
	}
	if err := b.persistForageablesJSONL(); err != nil {
		return err
	}
	b.logger.Debug("flushed pending writes", "count", len(b.pendingWrites))
	b.pendingWrites = nil
	return nil
}

// startBatchTimer starts the periodic flush for the batch strategy.
func (b *Backend) startBatchTimer() {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	if b.batchTimer != nil {
		return
	}

	b.batchTimer = time.AfterFunc(b.batchInterval, func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if !b.attached {
			return
		}
		if err := b.flushPendingWritesLocked(); err != nil {
			b.logger.Warn("interval flush failed", "error", err)
		}

		b.batchMu.Lock()
		if b.batchTimer != nil {
			b.batchTimer.Reset(b.batchInterval)
		}
		b.batchMu.Unlock()
	})
}

// stopBatchTimer stops the batch interval timer if running.
func (b *Backend) stopBatchTimer() {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	if b.batchTimer != nil {
		b.batchTimer.Stop()
		b.batchTimer = nil
	}
}
