package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"pet-market/internal/codec"
	"pet-market/internal/domain"

	"go.uber.org/zap"
)

// ProductCount is one row of the best-seller ranking
type ProductCount struct {
	ProductID string
	Count     int
}

// PurchaseLedger defines the interface for the append-only purchase log.
// Nothing is cached: every query scans the file.
type PurchaseLedger interface {
	Append(ctx context.Context, purchase domain.Purchase) error
	List(ctx context.Context) ([]domain.Purchase, error)
	ByUser(ctx context.Context, username string) ([]domain.Purchase, error)
	TopProducts(ctx context.Context, n int) ([]ProductCount, error)
}

type purchaseLedger struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

// NewPurchaseLedger creates a ledger backed by purchases.txt in dir
func NewPurchaseLedger(dir string, logger *zap.Logger) PurchaseLedger {
	path := filepath.Join(dir, PurchasesFile)
	return &purchaseLedger{
		path:   path,
		logger: logger.With(zap.String("file", path)),
	}
}

// Append writes one record at the end of the file, creating it with a
// header when needed
func (l *purchaseLedger) Append(ctx context.Context, purchase domain.Purchase) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, statErr := os.Stat(l.path)
	isNew := errors.Is(statErr, fs.ErrNotExist)

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		l.logger.Error("Failed to open purchase ledger", zap.Error(err))
		return fmt.Errorf("failed to open purchase ledger: %w", err)
	}
	defer f.Close()

	line := codec.Purchases.Encode(purchase) + "\n"
	if isNew {
		line = codec.Purchases.Header() + "\n" + line
	}

	if _, err := f.WriteString(line); err != nil {
		l.logger.Error("Failed to append purchase", zap.Error(err))
		return fmt.Errorf("failed to append purchase: %w", err)
	}
	return nil
}

// List returns every purchase in the order it was recorded
func (l *purchaseLedger) List(ctx context.Context) ([]domain.Purchase, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return readRecords(l.path, codec.Purchases, l.logger)
}

// ByUser returns the purchases made by one user
func (l *purchaseLedger) ByUser(ctx context.Context, username string) ([]domain.Purchase, error) {
	all, err := l.List(ctx)
	if err != nil {
		return nil, err
	}

	var out []domain.Purchase
	for _, p := range all {
		if p.Username == username {
			out = append(out, p)
		}
	}
	return out, nil
}

// TopProducts returns up to n products by purchase count, highest first.
// Products are ranked through n running slots in order of their first
// purchase; only a strictly higher count displaces a slot, so on equal
// counts the product bought first ranks higher.
func (l *purchaseLedger) TopProducts(ctx context.Context, n int) ([]ProductCount, error) {
	if n <= 0 {
		return nil, nil
	}

	all, err := l.List(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	var firstSeen []string
	for _, p := range all {
		if _, ok := counts[p.ProductID]; !ok {
			firstSeen = append(firstSeen, p.ProductID)
		}
		counts[p.ProductID]++
	}

	return rankTop(firstSeen, counts, n), nil
}

func rankTop(ids []string, counts map[string]int, n int) []ProductCount {
	slots := make([]ProductCount, 0, n)
	for _, id := range ids {
		entry := ProductCount{ProductID: id, Count: counts[id]}

		pos := len(slots)
		for i, s := range slots {
			if entry.Count > s.Count {
				pos = i
				break
			}
		}
		if pos >= n {
			continue
		}

		if len(slots) < n {
			slots = append(slots, ProductCount{})
		}
		copy(slots[pos+1:], slots[pos:len(slots)-1])
		slots[pos] = entry
	}
	return slots
}
