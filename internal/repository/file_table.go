package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"pet-market/internal/codec"

	"github.com/google/renameio/v2"
	"go.uber.org/zap"
)

// Data file names inside the storage directory
const (
	UsersFile         = "users.txt"
	InventoriesFile   = "inventories.txt"
	ProductsFile      = "products.txt"
	ListingsFile      = "listings.txt"
	PurchasesFile     = "purchases.txt"
	CodesFile         = "codes.txt"
	SavesFile         = "saves.txt"
	AnnouncementsFile = "announcements.txt"
	ActivityLogFile   = "activity_log.txt"
)

const filePerm = 0o644

// fileTable is a keyed, ordered in-memory copy of one data file.
// Every mutation rewrites the whole file and is committed in memory only
// after the rewrite succeeded.
type fileTable[T any] struct {
	mu     sync.RWMutex
	path   string
	format *codec.Format[T]
	key    func(T) string
	logger *zap.Logger

	items map[string]T
	order []string
}

func newFileTable[T any](path string, format *codec.Format[T], key func(T) string, logger *zap.Logger) *fileTable[T] {
	return &fileTable[T]{
		path:   path,
		format: format,
		key:    key,
		logger: logger.With(zap.String("file", path)),
		items:  make(map[string]T),
	}
}

// load replaces the in-memory state with the file contents
func (t *fileTable[T]) load(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	records, err := readRecords(t.path, t.format, t.logger)
	if err != nil {
		return err
	}

	t.items = make(map[string]T, len(records))
	t.order = t.order[:0]
	for _, rec := range records {
		k := t.key(rec)
		if _, dup := t.items[k]; dup {
			t.logger.Warn("Duplicate key in data file, keeping the later record", zap.String("key", k))
		} else {
			t.order = append(t.order, k)
		}
		t.items[k] = rec
	}

	t.logger.Debug("Loaded records", zap.Int("count", len(t.items)))
	return nil
}

func (t *fileTable[T]) list() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]T, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, t.items[k])
	}
	return out
}

func (t *fileTable[T]) get(key string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rec, ok := t.items[key]
	return rec, ok
}

func (t *fileTable[T]) count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}

// put inserts or replaces a record
func (t *fileTable[T]) put(ctx context.Context, rec T) error {
	return t.store(ctx, rec, nil)
}

// insert adds a record only when the key is free
func (t *fileTable[T]) insert(ctx context.Context, rec T, conflict error) error {
	return t.store(ctx, rec, conflict)
}

func (t *fileTable[T]) store(ctx context.Context, rec T, conflict error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	k := t.key(rec)
	if _, exists := t.items[k]; exists && conflict != nil {
		return conflict
	}
	return t.commit(k, rec)
}

// update rewrites an existing record through apply. The lookup and the
// rewrite happen under one lock; a missing key returns missing.
func (t *fileTable[T]) update(ctx context.Context, key string, missing error, apply func(T) T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	current, ok := t.items[key]
	if !ok {
		return missing
	}
	rec := apply(current)
	if t.key(rec) != key {
		return fmt.Errorf("update changed key %q to %q", key, t.key(rec))
	}
	return t.commit(key, rec)
}

// commit writes the table with rec stored under k and, on success, applies
// the change in memory. Caller holds the write lock.
func (t *fileTable[T]) commit(k string, rec T) error {
	_, exists := t.items[k]

	records := make([]T, 0, len(t.order)+1)
	for _, existing := range t.order {
		if existing == k {
			records = append(records, rec)
			continue
		}
		records = append(records, t.items[existing])
	}
	if !exists {
		records = append(records, rec)
	}

	if err := t.write(records); err != nil {
		return err
	}

	if !exists {
		t.order = append(t.order, k)
	}
	t.items[k] = rec
	return nil
}

// remove deletes a record; the file is rewritten only if something was removed
func (t *fileTable[T]) remove(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.items[key]; !ok {
		return false, nil
	}

	records := make([]T, 0, len(t.order))
	nextOrder := make([]string, 0, len(t.order))
	for _, k := range t.order {
		if k == key {
			continue
		}
		records = append(records, t.items[k])
		nextOrder = append(nextOrder, k)
	}

	if err := t.write(records); err != nil {
		return false, err
	}

	delete(t.items, key)
	t.order = nextOrder
	return true, nil
}

func (t *fileTable[T]) write(records []T) error {
	if err := writeFileAtomic(t.path, t.format.Marshal(records)); err != nil {
		t.logger.Error("Failed to persist data file, in-memory state left unchanged", zap.Error(err))
		return err
	}
	return nil
}

// readRecords decodes a data file; a missing file yields no records
func readRecords[T any](path string, format *codec.Format[T], logger *zap.Logger) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Info("Data file not found, starting empty")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	records, err := format.ReadAll(f, func(e *codec.CorruptLineError) {
		logger.Warn("Skipping corrupt record",
			zap.Int("line", e.Line),
			zap.String("reason", e.Reason),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return records, nil
}

// writeFileAtomic replaces path via a temp file and rename, so a crash never
// leaves a truncated file behind
func writeFileAtomic(path string, data []byte) error {
	if err := renameio.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
