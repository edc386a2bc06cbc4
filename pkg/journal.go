// Package pkg provides generic utilities for rcpilot.
package pkg

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrEmptyJournal is returned by Last when no record has been appended yet.
var ErrEmptyJournal = errors.New("journal is empty")

// Journal is an append-only, on-disk log of records of type T.
// Records are never rewritten or removed; reopening a journal continues
// after the last complete record.
type Journal[T any] interface {
	Len() uint64
	Path() string
	Append(item T) error
	Last() (T, error)
	Range(f func(index uint64, item T) error) error
	Close() error
}

type journalImpl[T any] struct {
	path    string
	file    *os.File
	encoder *msgpack.Encoder
	mu      sync.Mutex
	length  uint64
}

// OpenJournal opens (or creates) the journal stored at path.
func OpenJournal[T any](path string) (Journal[T], error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		slog.Error("failed to create journal directory", "path", path, "error", err)
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	length, end, err := scanRecords[T](path)
	if err != nil {
		return nil, err
	}

	if err := dropPartialTail(path, end); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		slog.Error("failed to open journal", "path", path, "error", err)
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	slog.Debug("opened journal", "path", path, "length", length)

	return &journalImpl[T]{
		path:    path,
		file:    file,
		encoder: msgpack.NewEncoder(file),
		length:  length,
	}, nil
}

// scanRecords decodes the existing file to find how many complete records
// it holds and where the last one ends. A truncated trailing record is
// ignored.
func scanRecords[T any](path string) (uint64, int64, error) {
	var count uint64

	end, err := decodeAll[T](path, func(uint64, T) error {
		count++
		return nil
	})

	return count, end, err
}

// decodeAll feeds every complete record to fn and returns the byte offset
// just past the last complete record.
func decodeAll[T any](path string, fn func(index uint64, item T) error) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}

		return 0, fmt.Errorf("failed to read journal: %w", err)
	}

	reader := bytes.NewReader(data)
	decoder := msgpack.NewDecoder(reader)

	var end int64

	for i := uint64(0); ; i++ {
		var item T

		if err := decoder.Decode(&item); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return end, nil
			}

			slog.Error("failed to decode journal record", "path", path, "index", i, "error", err)

			return end, fmt.Errorf("failed to decode record at index %d: %w", i, err)
		}

		end = int64(len(data) - reader.Len())

		if err := fn(i, item); err != nil {
			return end, err
		}
	}
}

// dropPartialTail cuts off bytes left behind by an interrupted append so new
// records start on a record boundary.
func dropPartialTail(path string, end int64) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("failed to stat journal: %w", err)
	}

	if info.Size() <= end {
		return nil
	}

	slog.Warn("dropping partial journal record", "path", path, "size", info.Size(), "end", end)

	if err := os.Truncate(path, end); err != nil {
		return fmt.Errorf("failed to truncate journal: %w", err)
	}

	return nil
}

// Append implements Journal.
func (j *journalImpl[T]) Append(item T) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return fmt.Errorf("journal %s is closed", j.path)
	}

	if err := j.encoder.Encode(item); err != nil {
		slog.Error("failed to encode record", "path", j.path, "index", j.length, "error", err)
		return fmt.Errorf("failed to encode record: %w", err)
	}

	if err := j.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync journal: %w", err)
	}

	j.length++
	slog.Debug("appended record", "path", j.path, "index", j.length-1)

	return nil
}

// Path implements Journal.
func (j *journalImpl[T]) Path() string {
	return j.path
}

// Len implements Journal.
func (j *journalImpl[T]) Len() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.length
}

// Last implements Journal.
func (j *journalImpl[T]) Last() (T, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var last T

	if j.length == 0 {
		return last, ErrEmptyJournal
	}

	_, err := decodeAll[T](j.path, func(index uint64, item T) error {
		if index < j.length {
			last = item
		}

		return nil
	})

	return last, err
}

// Range implements Journal.
func (j *journalImpl[T]) Range(fn func(index uint64, item T) error) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := decodeAll[T](j.path, func(index uint64, item T) error {
		if index >= j.length {
			return nil
		}

		return fn(index, item)
	})

	return err
}

// Close implements Journal.
func (j *journalImpl[T]) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return nil
	}

	err := j.file.Close()
	j.file = nil

	if err != nil {
		slog.Error("failed to close journal", "path", j.path, "error", err)
		return err
	}

	slog.Debug("closed journal", "path", j.path, "length", j.length)

	return nil
}
