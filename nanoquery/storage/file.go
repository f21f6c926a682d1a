package storage

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/arthur-debert/nanoquery/formats"
	"github.com/arthur-debert/nanoquery/types"
)

const (
	defaultLockTimeout   = 3 * time.Second
	defaultRetryInterval = 100 * time.Millisecond
)

// FileStorage implements Storage over a single dataset file. The codec is
// picked from the file extension; a sibling ".lock" file guards access
// across processes.
type FileStorage struct {
	filePath      string
	format        *formats.DatasetFormat
	fileLock      FileLock
	lockTimeout   time.Duration
	retryInterval time.Duration
}

// Option configures a FileStorage
type Option func(*FileStorage)

// WithLockFactory replaces the flock-based file lock
func WithLockFactory(factory FileLockFactory) Option {
	return func(s *FileStorage) {
		s.fileLock = factory.New(s.filePath + ".lock")
	}
}

// WithLockTimeout bounds how long Load and Save wait for the file lock
func WithLockTimeout(timeout time.Duration) Option {
	return func(s *FileStorage) {
		s.lockTimeout = timeout
	}
}

// WithFormat overrides the extension-based codec choice
func WithFormat(format *formats.DatasetFormat) Option {
	return func(s *FileStorage) {
		s.format = format
	}
}

// NewFileStorage creates a file storage for filePath
func NewFileStorage(filePath string, opts ...Option) (*FileStorage, error) {
	s := &FileStorage{
		filePath:      filePath,
		lockTimeout:   defaultLockTimeout,
		retryInterval: defaultRetryInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fileLock == nil {
		s.fileLock = FlockFactory{}.New(filePath + ".lock")
	}
	if s.format == nil {
		format, err := formats.ForPath(filePath)
		if err != nil {
			return nil, err
		}
		s.format = format
	}
	return s, nil
}

// Path returns the dataset file path
func (s *FileStorage) Path() string {
	return s.filePath
}

// Load implements Storage.Load. A missing or empty file is an empty dataset.
func (s *FileStorage) Load() (types.Dataset, error) {
	var d types.Dataset
	err := s.withFileLock(func() error {
		if _, err := os.Stat(s.filePath); os.IsNotExist(err) {
			d = types.Dataset{}
			return nil
		}

		data, err := os.ReadFile(s.filePath)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		// Empty file is OK
		if len(data) == 0 {
			d = types.Dataset{}
			return nil
		}

		d, err = formats.Decode(s.format, data)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", s.filePath, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Save implements Storage.Save. The file is replaced atomically.
func (s *FileStorage) Save(d types.Dataset) error {
	return s.withFileLock(func() error {
		data, err := s.format.Encode(d)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", s.format.Name, err)
		}

		// Write atomically
		tmpFile := s.filePath + ".tmp"
		if err := os.WriteFile(tmpFile, data, 0644); err != nil {
			return fmt.Errorf("failed to write temp file: %w", err)
		}

		if err := os.Rename(tmpFile, s.filePath); err != nil {
			_ = os.Remove(tmpFile)
			return fmt.Errorf("failed to rename file: %w", err)
		}
		return nil
	})
}

// Close implements Storage.Close and removes the lock file
func (s *FileStorage) Close() error {
	_ = os.Remove(s.filePath + ".lock")
	return nil
}

func (s *FileStorage) withFileLock(fn func() error) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.lockTimeout)
	defer cancel()

	locked, err := s.fileLock.TryLockContext(ctx, s.retryInterval)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("could not acquire file lock")
	}
	defer func() { _ = s.fileLock.Unlock() }()

	return fn()
}
