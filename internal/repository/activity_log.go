package repository

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	activityTimeLayout = "2006-01-02 15:04:05"
	activitySeparator  = " | "
	systemActor        = "system"
)

// ActivityEntry is one parsed line of the activity log
type ActivityEntry struct {
	Time     time.Time
	Username string
	Message  string
}

// ActivityLog is the human-readable audit trail of completed flows.
// Lines look like "[2006-01-02 15:04:05] | alice | bought Sparkle Fox".
type ActivityLog struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	writer *zap.Logger
}

// NewActivityLog opens activity_log.txt in dir for appending
func NewActivityLog(dir string, opts ...zap.Option) (*ActivityLog, error) {
	path := filepath.Join(dir, ActivityLogFile)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return nil, fmt.Errorf("failed to open activity log: %w", err)
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:    "time",
		NameKey:    "user",
		MessageKey: "message",
		LineEnding: zapcore.DefaultLineEnding,
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString("[" + t.Format(activityTimeLayout) + "]")
		},
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: activitySeparator,
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(f),
		zapcore.InfoLevel,
	)

	return &ActivityLog{
		path:   path,
		file:   f,
		writer: zap.New(core, opts...),
	}, nil
}

// Record appends one entry for username
func (a *ActivityLog) Record(ctx context.Context, username, message string) error {
	if username == "" {
		username = systemActor
	}
	// entries are single lines
	message = strings.ReplaceAll(message, "\n", " ")

	a.mu.Lock()
	defer a.mu.Unlock()

	a.writer.Named(username).Info(message)
	if err := a.writer.Sync(); err != nil {
		return fmt.Errorf("failed to write activity log: %w", err)
	}
	return nil
}

// Recent returns up to limit most recent entries for username, oldest
// first. An empty username matches every entry.
func (a *ActivityLog) Recent(ctx context.Context, username string, limit int) ([]ActivityEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.Open(a.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open activity log: %w", err)
	}
	defer f.Close()

	var entries []ActivityEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		entry, ok := parseActivityLine(scanner.Text())
		if !ok {
			continue
		}
		if username != "" && entry.Username != username {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read activity log: %w", err)
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

// Close flushes and closes the underlying file
func (a *ActivityLog) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	_ = a.writer.Sync()
	return a.file.Close()
}

func parseActivityLine(line string) (ActivityEntry, bool) {
	parts := strings.SplitN(line, activitySeparator, 3)
	if len(parts) != 3 {
		return ActivityEntry{}, false
	}

	ts := strings.TrimSuffix(strings.TrimPrefix(parts[0], "["), "]")
	t, err := time.ParseInLocation(activityTimeLayout, ts, time.Local)
	if err != nil {
		return ActivityEntry{}, false
	}

	return ActivityEntry{Time: t, Username: parts[1], Message: parts[2]}, true
}
