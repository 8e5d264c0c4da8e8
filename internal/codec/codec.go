// Package codec encodes entity records as pipe-delimited lines.
//
// Every data file starts with a "// FORMAT: ..." header. Comment lines and
// blank lines are ignored on read. Records may omit optional trailing fields,
// which lets the schema grow without rewriting old files.
package codec

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// Delimiter separates fields. It must never appear inside a field value.
	Delimiter = "|"

	commentPrefix = "//"
	headerPrefix  = "// FORMAT: "
	maxLineBytes  = 1 << 20
)

var (
	ErrCorruptLine = errors.New("corrupt record")
)

var localTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// CorruptLineError describes a line that could not be decoded
type CorruptLineError struct {
	Line   int
	Reason string
}

func (e *CorruptLineError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return e.Reason
}

func (e *CorruptLineError) Unwrap() error { return ErrCorruptLine }

// IsSkippable reports whether a line carries no record
func IsSkippable(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || strings.HasPrefix(trimmed, commentPrefix)
}

// Format describes how one entity type maps onto a delimited line
type Format[T any] struct {
	Columns   []string
	MinFields int
	encode    func(T) []string
	decode    func(*Fields) T
}

// Header returns the comment line written at the top of the file
func (f *Format[T]) Header() string {
	return headerPrefix + strings.Join(f.Columns, Delimiter)
}

// Encode renders a record as a single line without the trailing newline
func (f *Format[T]) Encode(v T) string {
	return strings.Join(f.encode(v), Delimiter)
}

// Decode parses one record line
func (f *Format[T]) Decode(line string) (T, error) {
	var zero T

	line = strings.TrimRight(line, "\r\n")
	parts := strings.Split(line, Delimiter)
	if len(parts) < f.MinFields {
		return zero, &CorruptLineError{
			Reason: fmt.Sprintf("expected at least %d fields, got %d", f.MinFields, len(parts)),
		}
	}

	fields := &Fields{vals: parts}
	v := f.decode(fields)
	if fields.err != nil {
		return zero, &CorruptLineError{Reason: fields.err.Error()}
	}
	return v, nil
}

// Marshal renders the header and every record, one per line
func (f *Format[T]) Marshal(records []T) []byte {
	var buf bytes.Buffer
	buf.WriteString(f.Header())
	buf.WriteByte('\n')
	for _, r := range records {
		buf.WriteString(f.Encode(r))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// ReadAll decodes every record from r. Corrupt lines are reported through
// onCorrupt and skipped; only I/O errors abort the read.
func (f *Format[T]) ReadAll(r io.Reader, onCorrupt func(*CorruptLineError)) ([]T, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var records []T
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if IsSkippable(line) {
			continue
		}

		rec, err := f.Decode(line)
		if err != nil {
			var cle *CorruptLineError
			if errors.As(err, &cle) {
				cle.Line = lineNo
				if onCorrupt != nil {
					onCorrupt(cle)
				}
				continue
			}
			return nil, err
		}
		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan records: %w", err)
	}

	return records, nil
}

// Fields gives typed access to the split values of one line. The first
// parse failure is remembered and reported by Decode.
type Fields struct {
	vals []string
	err  error
}

// Len returns how many fields the line actually carried
func (f *Fields) Len() int { return len(f.vals) }

// Has reports whether the optional field at i is present
func (f *Fields) Has(i int) bool { return i < len(f.vals) }

// Present reports whether the optional field at i is present and not blank
func (f *Fields) Present(i int) bool {
	return f.Has(i) && strings.TrimSpace(f.vals[i]) != ""
}

func (f *Fields) String(i int) string {
	if i >= len(f.vals) {
		return ""
	}
	return f.vals[i]
}

func (f *Fields) Int(i int, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(f.String(i)))
	if err != nil {
		f.fail(name, f.String(i))
		return 0
	}
	return n
}

// OptInt reads an optional integer, falling back to def when absent
func (f *Fields) OptInt(i int, name string, def int) int {
	if !f.Present(i) {
		return def
	}
	return f.Int(i, name)
}

func (f *Fields) Bool(i int, name string) bool {
	switch strings.ToLower(strings.TrimSpace(f.String(i))) {
	case "true":
		return true
	case "false":
		return false
	default:
		f.fail(name, f.String(i))
		return false
	}
}

// OptBool reads an optional boolean, falling back to def when absent
func (f *Fields) OptBool(i int, name string, def bool) bool {
	if !f.Present(i) {
		return def
	}
	return f.Bool(i, name)
}

func (f *Fields) Decimal(i int, name string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(f.String(i)))
	if err != nil {
		f.fail(name, f.String(i))
		return decimal.Zero
	}
	return d
}

// Time reads an ISO-8601 timestamp. Values without a zone are taken as
// local time.
func (f *Fields) Time(i int, name string) time.Time {
	raw := strings.TrimSpace(f.String(i))
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t
	}
	for _, layout := range localTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t
		}
	}
	f.fail(name, f.String(i))
	return time.Time{}
}

func (f *Fields) fail(name, raw string) {
	if f.err == nil {
		f.err = fmt.Errorf("invalid %s %q", name, raw)
	}
}

func itoa(n int) string { return strconv.Itoa(n) }

func btoa(b bool) string { return strconv.FormatBool(b) }
