// Package logger provides file writers for the session log files.
package logger

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Rotator appends to a log file and periodically compacts it so it never
// holds more than twice the configured number of lines.
type Rotator struct {
	file *os.File
	path string
	tail *lineTail
	mu   sync.Mutex
}

// OpenRotator opens path for appending. A non-positive maxLines disables compaction.
func OpenRotator(path string, maxLines int) (*Rotator, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cannot open log file %s: %w", path, err)
	}

	r := &Rotator{file: file, path: path}
	if maxLines > 0 {
		r.tail = newLineTail(maxLines)
	}

	return r, nil
}

// Write implements io.Writer.
func (r *Rotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, err := r.file.Write(p)
	if err != nil || r.tail == nil {
		return n, err
	}

	for line := range bytes.SplitSeq(bytes.TrimRight(p, "\n"), []byte("\n")) {
		if len(line) == 0 {
			continue
		}

		r.tail.push(string(line))
	}

	if r.tail.since >= 2*len(r.tail.lines) {
		if err := r.compact(); err != nil {
			return n, fmt.Errorf("failed to compact log file: %w", err)
		}
	}

	return n, nil
}

// Sync flushes the file.
func (r *Rotator) Sync() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.file.Sync()
}

// Close closes the file.
func (r *Rotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.file.Close()
}

// compact replaces the file with the kept lines.
func (r *Rotator) compact() error {
	temp, err := os.CreateTemp(filepath.Dir(r.path), ".log-compact-")
	if err != nil {
		return err
	}

	tempPath := temp.Name()
	content := strings.Join(r.tail.snapshot(), "\n") + "\n"

	if _, err := temp.WriteString(content); err != nil {
		temp.Close()
		os.Remove(tempPath)

		return err
	}

	if err := temp.Close(); err != nil {
		os.Remove(tempPath)
		return err
	}

	r.file.Close()

	// Windows refuses to rename over an existing file
	os.Remove(r.path)

	if err := os.Rename(tempPath, r.path); err != nil {
		return err
	}

	file, err := os.OpenFile(r.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	r.file = file
	r.tail.since = r.tail.len()

	return nil
}
