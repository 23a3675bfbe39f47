package storage

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
)

const stagingDirName = ".staging"

// Save outcomes, used as the metric label.
const (
	ResultWritten      = "written"
	ResultDeduplicated = "deduplicated"
)

// ErrFileNotFound is returned by Open when no file exists for a descriptor.
var ErrFileNotFound = errors.New("file not found")

// StorageError is an I/O failure inside the store.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// FileSystemStorage is the content-addressed store rooted at one directory.
type FileSystemStorage struct {
	rootDir    string
	stagingDir string
	inflight   singleflight.Group
	stored     *prometheus.CounterVec
	bytes      prometheus.Counter
}

// Option configures a FileSystemStorage.
type Option func(*FileSystemStorage)

// WithMetrics counts saves by outcome and bytes written. Either may be nil.
func WithMetrics(stored *prometheus.CounterVec, bytes prometheus.Counter) Option {
	return func(s *FileSystemStorage) {
		s.stored = stored
		s.bytes = bytes
	}
}

// NewFileSystemStorage creates the root and staging directories if needed.
func NewFileSystemStorage(rootDir string, opts ...Option) (*FileSystemStorage, error) {
	staging := filepath.Join(rootDir, stagingDirName)
	if err := os.MkdirAll(staging, 0o750); err != nil {
		return nil, &StorageError{Op: "create directory", Path: staging, Err: err}
	}
	s := &FileSystemStorage{rootDir: rootDir, stagingDir: staging}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RootDir returns the store root.
func (s *FileSystemStorage) RootDir() string {
	return s.rootDir
}

// Resolve returns the absolute location of d. It performs no I/O.
func (s *FileSystemStorage) Resolve(d Descriptor) string {
	return ResolvePath(d, s.rootDir)
}

// ResolvePath joins the descriptor path onto baseDir.
func ResolvePath(d Descriptor, baseDir string) string {
	return filepath.Join(baseDir, filepath.FromSlash(d.Path()))
}

// Save streams r into the store and returns its descriptor.
// The descriptor is returned only after the file is fully in place.
func (s *FileSystemStorage) Save(ctx context.Context, workspaceID int64, filename string, r io.Reader) (Descriptor, error) {
	tmp, err := os.CreateTemp(s.stagingDir, "upload-*")
	if err != nil {
		return Descriptor{}, &StorageError{Op: "create temp file", Path: s.stagingDir, Err: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	hasher := sha1.New()
	size, err := io.Copy(tmp, io.TeeReader(&contextReader{ctx: ctx, r: r}, hasher))
	if err != nil {
		tmp.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Descriptor{}, ctxErr
		}
		return Descriptor{}, &StorageError{Op: "write", Path: tmpPath, Err: err}
	}
	if err := tmp.Chmod(0o640); err != nil {
		tmp.Close()
		return Descriptor{}, &StorageError{Op: "chmod", Path: tmpPath, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return Descriptor{}, &StorageError{Op: "fsync", Path: tmpPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return Descriptor{}, &StorageError{Op: "close", Path: tmpPath, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return Descriptor{}, err
	}

	d := Descriptor{
		WorkspaceID: workspaceID,
		Hash:        hex.EncodeToString(hasher.Sum(nil)),
		Ext:         ExtFromFilename(filename),
	}
	target := s.Resolve(d)

	ran := false
	result, err, _ := s.inflight.Do(target, func() (interface{}, error) {
		ran = true
		return s.commit(tmpPath, target)
	})
	if err != nil {
		return Descriptor{}, err
	}

	outcome := ResultDeduplicated
	if ran {
		outcome = result.(string)
	}
	s.record(outcome, size)

	return d, nil
}

// commit moves tmpPath to target unless target already exists.
func (s *FileSystemStorage) commit(tmpPath, target string) (string, error) {
	exists, err := fileExists(target)
	if err != nil {
		return "", err
	}
	if exists {
		return ResultDeduplicated, nil
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", &StorageError{Op: "create directory", Path: dir, Err: err}
	}
	if err := os.Rename(tmpPath, target); err != nil {
		return "", &StorageError{Op: "rename", Path: target, Err: err}
	}
	return ResultWritten, nil
}

func (s *FileSystemStorage) record(outcome string, size int64) {
	if s.stored != nil {
		s.stored.WithLabelValues(outcome).Inc()
	}
	if s.bytes != nil && outcome == ResultWritten {
		s.bytes.Add(float64(size))
	}
}

// Exists reports whether the file for d is present.
func (s *FileSystemStorage) Exists(d Descriptor) (bool, error) {
	return fileExists(s.Resolve(d))
}

// Open opens the file for d. The caller must close it.
func (s *FileSystemStorage) Open(d Descriptor) (*os.File, error) {
	path := s.Resolve(d)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, d.URL())
		}
		return nil, &StorageError{Op: "open", Path: path, Err: err}
	}
	return f, nil
}

func fileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		return info.Mode().IsRegular(), nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, &StorageError{Op: "stat", Path: path, Err: err}
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
