package storage

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/recipehub/internal/filex"
)

// LocalStore writes images below a directory on disk.
type LocalStore struct {
	dir    string
	prefix string
}

func NewLocalStore(dir, urlPrefix string) (*LocalStore, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &LocalStore{dir: abs, prefix: urlPrefix}, nil
}

func (s *LocalStore) Save(ctx context.Context, key string, data []byte) (string, error) {
	sub, err := filex.EnsureDir(filepath.Join(s.dir, filepath.FromSlash(path.Dir(key))))
	if err != nil {
		return "", err
	}
	if _, err := filex.WriteFile(sub, filepath.Base(filepath.FromSlash(key)), data); err != nil {
		return "", err
	}
	return publicURL(s.prefix, key), nil
}

func (s *LocalStore) Delete(ctx context.Context, url string) error {
	key, ok := keyFromURL(s.prefix, url)
	if !ok {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Handler serves files from the upload directory. Directory listings are
// not exposed.
func (s *LocalStore) Handler() http.Handler {
	fs := http.FileServer(http.Dir(s.dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}
