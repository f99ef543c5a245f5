// Package gallery keeps the append-only JSONL log of saved generations.
package gallery

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TimeFormat is the timestamp layout used for entries.
const TimeFormat = "2006-01-02T15:04:05.000Z"

// maxLineBytes bounds a single entry when reading the log back.
const maxLineBytes = 1 << 20

// Log appends entries to a JSONL file. Separate processes may share the file;
// O_APPEND keeps each line whole and no further coordination is attempted.
type Log struct {
	path string
	file *os.File
	mu   sync.Mutex
}

// Open opens (or creates) the gallery log for appending.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("gallery: create directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("gallery: open file: %w", err)
	}
	return &Log{path: path, file: file}, nil
}

// Path returns the log file location.
func (l *Log) Path() string { return l.path }

// Record appends one entry, filling Timestamp when empty.
func (l *Log) Record(entry Entry) error {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(TimeFormat)
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("gallery: marshal entry: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("gallery: write entry: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("gallery: sync: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// ReadAll returns every entry in the log. Malformed lines are skipped.
// A missing file yields no entries.
func ReadAll(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("gallery: open: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		if e, ok := parseLine(scanner.Bytes()); ok {
			entries = append(entries, e)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("gallery: scan: %w", err)
	}
	return entries, nil
}

// Tail returns the last n entries, oldest first.
func Tail(path string, n int) ([]Entry, error) {
	entries, err := ReadAll(path)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}

func parseLine(line []byte) (Entry, bool) {
	if len(line) == 0 {
		return Entry{}, false
	}
	var e Entry
	if err := json.Unmarshal(line, &e); err != nil {
		return Entry{}, false
	}
	return e, true
}
