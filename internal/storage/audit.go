package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"pnlcorr/internal/model"
)

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("audit log is closed")

// AuditLog appends request records as JSON lines to a file kept open for
// the lifetime of the server. Every record is flushed before
// PutRequestRecord returns.
type AuditLog struct {
	mu   sync.Mutex
	file *os.File
	buf  *bufio.Writer
	enc  *json.Encoder
}

// OpenAuditLog opens path for appending, creating it and its directory.
func OpenAuditLog(path string) (*AuditLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit dir: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit file: %w", err)
	}
	buf := bufio.NewWriter(file)
	return &AuditLog{file: file, buf: buf, enc: json.NewEncoder(buf)}, nil
}

// PutRequestRecord writes one line and flushes it.
func (a *AuditLog) PutRequestRecord(record model.RequestRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.file == nil {
		return ErrClosed
	}
	// Encode appends the newline.
	if err := a.enc.Encode(record); err != nil {
		return fmt.Errorf("write request record: %w", err)
	}
	if err := a.buf.Flush(); err != nil {
		return fmt.Errorf("flush audit file: %w", err)
	}
	return nil
}

// Close flushes pending output and closes the file. Later calls are no-ops.
func (a *AuditLog) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.file == nil {
		return nil
	}
	flushErr := a.buf.Flush()
	closeErr := a.file.Close()
	a.file = nil
	if flushErr != nil {
		return fmt.Errorf("flush audit file: %w", flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close audit file: %w", closeErr)
	}
	return nil
}
