package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// JSONLStore appends one JSON document per plan to a single file. The file
// stays open for writing until Close.
type JSONLStore struct {
	path string

	mu  sync.Mutex
	out *os.File
	enc *json.Encoder
}

// NewJSONLStore opens path for appending, creating it and its directory when
// missing.
func NewJSONLStore(path string) (*JSONLStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONLStore{path: path, out: out, enc: json.NewEncoder(out)}, nil
}

// Append writes rec as one line.
func (s *JSONLStore) Append(_ context.Context, rec LogRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.out == nil {
		return os.ErrClosed
	}
	return s.enc.Encode(rec)
}

// Query scans the file from the start and keeps the records matching q.
func (s *JSONLStore) Query(_ context.Context, q LogQuery) ([]LogRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = in.Close() }()
	return scanJSONL(in, q, nil)
}

// Close releases the file. Further appends fail.
func (s *JSONLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.out == nil {
		return nil
	}
	err := s.out.Close()
	s.out = nil
	return err
}
