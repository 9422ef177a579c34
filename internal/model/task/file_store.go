package task

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var storeOperations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "task_store_operations_total",
		Help: "Task file store operations by kind and result",
	},
	[]string{"op", "result"},
)

// FileStore keeps the collection as a pretty-printed JSON array in a single file.
// It holds nothing in memory between calls.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file location.
func (s *FileStore) Path() string {
	return s.path
}

// Init creates the backing file with an empty collection when it does not
// exist yet. An existing file is left as is.
func (s *FileStore) Init(ctx context.Context) error {
	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return &StorageError{Op: "init", Path: s.path, Err: err}
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &StorageError{Op: "init", Path: s.path, Err: err}
		}
	}
	return s.WriteAll(ctx, nil)
}

// ReadAll loads the whole collection. A missing or blank file is an empty
// collection; anything that does not decode is a StorageError.
func (s *FileStore) ReadAll(ctx context.Context) ([]Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			storeOperations.WithLabelValues("read", "missing").Inc()
			return []Task{}, nil
		}
		storeOperations.WithLabelValues("read", "error").Inc()
		return nil, &StorageError{Op: "read", Path: s.path, Err: err}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		storeOperations.WithLabelValues("read", "ok").Inc()
		return []Task{}, nil
	}

	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		storeOperations.WithLabelValues("read", "error").Inc()
		return nil, &StorageError{Op: "decode", Path: s.path, Err: err}
	}
	if tasks == nil {
		tasks = []Task{}
	}

	storeOperations.WithLabelValues("read", "ok").Inc()
	return tasks, nil
}

// WriteAll replaces the file contents with tasks. The data is written to a
// sibling temp file and renamed into place, so readers never see a partial file.
func (s *FileStore) WriteAll(ctx context.Context, tasks []Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if tasks == nil {
		tasks = []Task{}
	}

	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		storeOperations.WithLabelValues("write", "error").Inc()
		return &StorageError{Op: "encode", Path: s.path, Err: err}
	}
	data = append(data, '\n')

	if err := writeFileAtomic(s.path, data, 0o644); err != nil {
		storeOperations.WithLabelValues("write", "error").Inc()
		return &StorageError{Op: "write", Path: s.path, Err: err}
	}

	storeOperations.WithLabelValues("write", "ok").Inc()
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
