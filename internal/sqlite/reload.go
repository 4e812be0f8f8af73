package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/mesh-intelligence/forage/internal/events"
)

// startWatcher watches the data dir for rewrites of forageables.jsonl by
// other processes. Failure to watch is logged; the store still works but
// only sees its own writes. The caller must hold b.mu for writing.
func (b *Backend) startWatcher() {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		b.logger.Warn("creating data dir watcher", "error", err)
		return
	}
	// Watch the directory: writeJSONL replaces the file by rename, which
	// would drop a watch held on the file itself.
	if err := w.Add(b.dataDir); err != nil {
		w.Close()
		b.logger.Warn("watching data dir", "data_dir", b.dataDir, "error", err)
		return
	}
	b.watcher = w
	go b.watchLoop(w)
}

// stopWatcher closes the watcher, which ends watchLoop. The caller must hold
// b.mu for writing.
func (b *Backend) stopWatcher() {
	if b.watcher == nil {
		return
	}
	if err := b.watcher.Close(); err != nil {
		b.logger.Debug("closing data dir watcher", "error", err)
	}
	b.watcher = nil
}

func (b *Backend) watchLoop(w *fsnotify.Watcher) {
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != forageablesJSONL {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			b.reloadIfChanged(w)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			b.logger.Warn("data dir watcher", "error", err)
		}
	}
}

// reloadIfChanged rebuilds the forageables table from JSONL when the file
// differs from what this Backend last read or wrote, then publishes OpLoad.
// Unflushed local writes take precedence: the reload is skipped and the
// next flush overwrites the file.
func (b *Backend) reloadIfChanged(w *fsnotify.Watcher) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached || b.watcher != w {
		return
	}

	digest, err := fileDigest(filepath.Join(b.dataDir, forageablesJSONL))
	if err != nil {
		b.logger.Warn("reading changed JSONL", "error", err)
		return
	}
	if digest == b.lastPersisted {
		return
	}
	if b.hasPendingWrites() {
		b.logger.Warn("JSONL changed externally with local writes pending; keeping local state")
		return
	}

	loaded, err := loadForageablesJSONL(b.db, b.dataDir, true)
	if err != nil {
		b.logger.Warn("reloading JSONL", "error", err)
		return
	}
	b.lastPersisted = digest
	b.logger.Debug("reloaded after external change", "loaded", loaded)

	if err := b.bus.Publish(context.Background(), events.Event{
		Table: tableForageables,
		Op:    events.OpLoad,
	}); err != nil {
		b.logger.Warn("publishing reload", "error", err)
	}
}

func (b *Backend) hasPendingWrites() bool {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()
	return len(b.pendingWrites) > 0
}

// fileDigest hashes the file at path. A missing file hashes as empty.
func fileDigest(path string) ([sha256.Size]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return [sha256.Size]byte{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return sha256.Sum256(data), nil
}

// recordsDigest hashes records exactly as encodeJSONL lays them out.
func recordsDigest(records []json.RawMessage) [sha256.Size]byte {
	h := sha256.New()
	for _, rec := range records {
		h.Write(rec)
		h.Write([]byte{'\n'})
	}
	var sum [sha256.Size]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// closeAndRemove closes db and deletes its file along with the WAL and
// shared-memory files.
func closeAndRemove(db *sql.DB, dbPath string) error {
	if err := db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing database file: %w", err)
		}
	}
	return nil
}
