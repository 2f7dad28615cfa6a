// Package storage keeps uploaded recipe images, either on the local disk or
// in an S3-compatible bucket, and serves them back under the public uploads
// prefix.
package storage

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/dmitrijs2005/recipehub/internal/server/config"
)

// RecipeImagePrefix is the key prefix under which recipe images are saved.
// Only keys below it are served.
const RecipeImagePrefix = "recipes/"

// ImageStore persists image bytes under a key and maps keys to public URLs.
type ImageStore interface {
	// Save stores data under key and returns the public relative URL.
	Save(ctx context.Context, key string, data []byte) (string, error)
	// Delete removes the object behind a URL returned by Save. Missing
	// objects are not an error.
	Delete(ctx context.Context, url string) error
	// Handler serves GET requests for paths below the uploads prefix.
	Handler() http.Handler
}

// New builds the store selected by cfg.ImageStorage.
func New(ctx context.Context, cfg *config.Config) (ImageStore, error) {
	switch cfg.ImageStorage {
	case config.ImageStorageLocal:
		s, err := NewLocalStore(cfg.UploadDir, cfg.UploadsURLPrefix)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.ImageStorageS3:
		s, err := NewS3Store(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown image storage %q", cfg.ImageStorage)
	}
}

func publicURL(prefix, key string) string {
	return path.Join("/", prefix, key)
}

// keyFromURL inverts publicURL. It rejects URLs outside prefix and keys that
// would climb out of the store.
func keyFromURL(prefix, url string) (string, bool) {
	p := path.Join("/", prefix)
	if p != "/" {
		p += "/"
	}
	if !strings.HasPrefix(url, p) {
		return "", false
	}
	key := strings.TrimPrefix(url, p)
	if key == "" || path.Clean(key) != key || strings.HasPrefix(key, "..") {
		return "", false
	}
	return key, true
}
