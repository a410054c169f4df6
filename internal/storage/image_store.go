package storage

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/lshigami/formkit/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var (
	ErrImageNotFound = errors.New("image not found")
	ErrTooLarge      = errors.New("image exceeds size limit")
	ErrNotImage      = errors.New("content is not an image")
)

const contentTypeSuffix = ".type"

// ImageStore keeps image blobs under opaque keys. The content type lives in
// a sidecar file next to each blob.
type ImageStore struct {
	fs       afero.Fs
	maxBytes int64
}

// NewImageStore roots the store at the configured directory on disk.
func NewImageStore(cfg *config.Config) (*ImageStore, error) {
	if err := os.MkdirAll(cfg.Storage.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	log.Info().Str("dir", cfg.Storage.Dir).Int64("maxBytes", cfg.Storage.MaxImageBytes).Msg("Image store ready")
	return NewImageStoreFs(afero.NewBasePathFs(afero.NewOsFs(), cfg.Storage.Dir), cfg.Storage.MaxImageBytes), nil
}

func NewImageStoreFs(fs afero.Fs, maxBytes int64) *ImageStore {
	return &ImageStore{fs: fs, maxBytes: maxBytes}
}

func (s *ImageStore) MaxBytes() int64 { return s.maxBytes }

// Put stores data under key and returns the content type recorded for it.
// An empty contentType is sniffed from the bytes.
func (s *ImageStore) Put(key string, data []byte, contentType string) (string, error) {
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return "", ErrTooLarge
	}
	ct, err := resolveContentType(data, contentType)
	if err != nil {
		return "", err
	}
	p := cleanKey(key)
	if err := s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return "", err
	}
	if err := afero.WriteFile(s.fs, p, data, 0o644); err != nil {
		return "", err
	}
	if err := afero.WriteFile(s.fs, p+contentTypeSuffix, []byte(ct), 0o644); err != nil {
		return "", err
	}
	return ct, nil
}

func (s *ImageStore) Get(key string) ([]byte, string, error) {
	p := cleanKey(key)
	data, err := afero.ReadFile(s.fs, p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrImageNotFound
		}
		return nil, "", err
	}
	ct, err := afero.ReadFile(s.fs, p+contentTypeSuffix)
	if err != nil || len(ct) == 0 {
		return data, mimetype.Detect(data).String(), nil
	}
	return data, string(ct), nil
}

// Delete removes the blob and its sidecar. Missing keys are not an error.
func (s *ImageStore) Delete(key string) error {
	p := cleanKey(key)
	for _, name := range []string{p, p + contentTypeSuffix} {
		if err := s.fs.Remove(name); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// DeleteAll purges keys, logging failures instead of returning them.
func (s *ImageStore) DeleteAll(keys []string) {
	for _, key := range keys {
		if err := s.Delete(key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to purge stored image")
		}
	}
}

func resolveContentType(data []byte, declared string) (string, error) {
	if declared != "" {
		mt, _, err := mime.ParseMediaType(declared)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrNotImage, err)
		}
		if !strings.HasPrefix(mt, "image/") {
			return "", ErrNotImage
		}
		return declared, nil
	}
	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return "", ErrNotImage
	}
	return detected.String(), nil
}

func cleanKey(key string) string {
	return strings.TrimPrefix(path.Clean("/"+key), "/")
}
