package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// localStore stores blobs on the local filesystem under root. Used in
// development and tests; URL serves from the configured static base.
type localStore struct {
	root    string
	baseURL string
}

func newLocalStore(root, baseURL string) *localStore {
	if root == "" {
		root = "storage"
	}
	return &localStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

func (l *localStore) path(key string) string {
	return filepath.Join(l.root, filepath.FromSlash(strings.TrimLeft(key, "/")))
}

func (l *localStore) Put(_ context.Context, key, _ string, r io.Reader) (string, error) {
	p := l.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(p)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return l.URL(key), nil
}

func (l *localStore) Get(_ context.Context, key string) ([]byte, error) {
	return os.ReadFile(l.path(key))
}

func (l *localStore) Exists(_ context.Context, key string) bool {
	_, err := os.Stat(l.path(key))
	return err == nil
}

func (l *localStore) URL(key string) string {
	return l.baseURL + "/" + strings.TrimLeft(key, "/")
}

func (l *localStore) Delete(_ context.Context, key string) error {
	err := os.Remove(l.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (l *localStore) DeletePrefix(_ context.Context, prefix string) error {
	return os.RemoveAll(l.path(prefix))
}
