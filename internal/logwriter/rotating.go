// Package logwriter captures child process output with size-based rotation.
// Each benchmark round tees the proxy's merged stdout/stderr into one of
// these writers so a chatty child cannot grow a log without bound.
package logwriter

import (
	"fmt"
	"os"
	"sync"
)

const (
	defaultMaxSize  = 1048576 // 1MB
	defaultMaxFiles = 3
)

// RotatingWriter implements io.Writer with size-based rotation: when the
// current file would exceed maxSize it is shifted to <path>.1 (and .1 to .2,
// and so on up to maxFiles) and a fresh file is opened.
type RotatingWriter struct {
	path     string
	maxSize  int64
	maxFiles int
	current  *os.File
	written  int64
	mu       sync.Mutex
}

// New opens a rotating writer at path, appending to an existing file.
// maxSize is in bytes; maxFiles is how many rotated files to keep.
// Zero or negative values select the defaults.
func New(path string, maxSize int64, maxFiles int) (*RotatingWriter, error) {
	if maxSize <= 0 {
		maxSize = defaultMaxSize
	}
	if maxFiles <= 0 {
		maxFiles = defaultMaxFiles
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &RotatingWriter{
		path:     path,
		maxSize:  maxSize,
		maxFiles: maxFiles,
		current:  f,
		written:  info.Size(),
	}, nil
}

func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current == nil {
		return 0, fmt.Errorf("writer is closed")
	}
	if w.written+int64(len(p)) > w.maxSize {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := w.current.Write(p)
	w.written += int64(n)
	return n, err
}

// rotate shifts files up one slot, dropping the oldest, and opens a fresh one.
func (w *RotatingWriter) rotate() error {
	w.current.Close()

	for i := w.maxFiles; i >= 1; i-- {
		src := fmt.Sprintf("%s.%d", w.path, i)
		if i == w.maxFiles {
			os.Remove(src)
		} else {
			os.Rename(src, fmt.Sprintf("%s.%d", w.path, i+1))
		}
	}
	os.Rename(w.path, w.path+".1")

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	w.current = f
	w.written = 0
	return nil
}

// Close closes the underlying file. Further writes fail.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current == nil {
		return nil
	}
	err := w.current.Close()
	w.current = nil
	return err
}

// Path returns the file path of this writer.
func (w *RotatingWriter) Path() string {
	return w.path
}
