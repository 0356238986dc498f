// Package storage provides the layered object store behind the pipeline:
// key conventions, a filesystem-backed store, and the codecs that move raw
// tables and refined series in and out of it.
package storage

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/errors"
)

// ObjectStore is the minimal blob interface the pipeline needs. Keys use
// forward slashes regardless of platform. Implementations must return
// List results in ascending lexicographic order so that the last entry
// under a timestamped prefix is the newest snapshot.
type ObjectStore interface {
	List(ctx context.Context, prefix string) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}

// Latest resolves the newest snapshot key under a prefix. A prefix with no
// objects yields a SourceNotFound error, which callers treat as a soft
// miss.
func Latest(ctx context.Context, store ObjectStore, prefix string) (string, error) {
	keys, err := store.List(ctx, prefix)
	if err != nil {
		return "", err
	}
	if len(keys) == 0 {
		return "", apperrors.NewSourceNotFoundError(prefix)
	}
	return keys[len(keys)-1], nil
}

// LocalStore is an ObjectStore over a local directory tree. It stands in
// for a bucket in development and tests; keys map directly to relative
// file paths.
type LocalStore struct {
	root string
}

// NewLocalStore creates a store rooted at dir, creating it if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.NewStorageError("create store root", err).WithContext("dir", dir)
	}
	return &LocalStore{root: dir}, nil
}

func (s *LocalStore) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, rerr := filepath.Rel(s.root, path)
		if rerr != nil {
			return rerr
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.NewStorageError("list objects", err).WithContext("prefix", prefix)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *LocalStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewSourceNotFoundError(key)
		}
		return nil, apperrors.NewStorageError("read object", err).WithContext("key", key)
	}
	return data, nil
}

func (s *LocalStore) Put(_ context.Context, key string, data []byte) error {
	path := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperrors.NewStorageError("create object dir", err).WithContext("key", key)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperrors.NewStorageError("write object", err).WithContext("key", key)
	}
	return nil
}
