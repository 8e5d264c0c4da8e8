package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// AnnouncementRepository holds the single announcement shown to every player
type AnnouncementRepository interface {
	Load(ctx context.Context) error
	Get(ctx context.Context) string
	Set(ctx context.Context, text string) error
}

type announcementRepository struct {
	mu     sync.RWMutex
	path   string
	logger *zap.Logger
	text   string
}

// NewAnnouncementRepository creates a store backed by announcements.txt in dir
func NewAnnouncementRepository(dir string, logger *zap.Logger) AnnouncementRepository {
	path := filepath.Join(dir, AnnouncementsFile)
	return &announcementRepository{
		path:   path,
		logger: logger.With(zap.String("file", path)),
	}
}

func (r *announcementRepository) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.text = ""
			return nil
		}
		return fmt.Errorf("failed to read announcement: %w", err)
	}

	r.text = string(data)
	return nil
}

func (r *announcementRepository) Get(ctx context.Context) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.text
}

// Set overwrites the announcement
func (r *announcementRepository) Set(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := writeFileAtomic(r.path, []byte(text)); err != nil {
		r.logger.Error("Failed to persist announcement", zap.Error(err))
		return err
	}
	r.text = text
	return nil
}
