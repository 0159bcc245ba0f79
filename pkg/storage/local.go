package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore serves video files from a directory on disk. Used in development
// and tests; refs are paths relative to the root directory.
type LocalStore struct {
	root string
}

// NewLocalStore creates a filesystem-backed blob store rooted at dir.
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{root: dir}
}

// resolve maps a storage ref to an absolute path, rejecting refs that escape the root.
func (s *LocalStore) resolve(ref string) (string, error) {
	p := filepath.Join(s.root, filepath.Clean("/"+ref))
	if !strings.HasPrefix(p, filepath.Clean(s.root)+string(os.PathSeparator)) && p != filepath.Clean(s.root) {
		// Refs that escape the root look identical to missing blobs from outside.
		return "", ErrBlobNotFound
	}
	return p, nil
}

// Size returns the file size for a ref.
func (s *LocalStore) Size(_ context.Context, ref string) (int64, error) {
	p, err := s.resolve(ref)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrBlobNotFound
		}
		return 0, fmt.Errorf("stat %s: %w", ref, err)
	}
	return info.Size(), nil
}

// OpenRange opens [start, end] of the file. The returned reader closes the
// underlying file when closed.
func (s *LocalStore) OpenRange(_ context.Context, ref string, start, end int64) (io.ReadCloser, error) {
	p, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("open %s: %w", ref, err)
	}
	if _, err := f.Seek(start, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("seek %s: %w", ref, err)
	}
	return &limitedFile{f: f, remaining: end - start + 1}, nil
}

// limitedFile reads at most remaining bytes from f.
type limitedFile struct {
	f         *os.File
	remaining int64
}

func (l *limitedFile) Read(p []byte) (int, error) {
	if l.remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}
	n, err := l.f.Read(p)
	l.remaining -= int64(n)
	return n, err
}

func (l *limitedFile) Close() error { return l.f.Close() }
