package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// imageMeta is the sidecar written next to each image file
type imageMeta struct {
	ID          uuid.UUID `json:"id"`
	SourceURL   string    `json:"sourceURL"`
	ContentType string    `json:"contentType"`
	CreatedAt   time.Time `json:"createdAt"`
}

// fileStore keeps each image as <id>.bin with a <id>.json sidecar
type fileStore struct {
	dir string
}

var _ Store = (*fileStore)(nil)

// NewFileStore creates a store writing into dir
func NewFileStore(dir string) Store {
	return &fileStore{dir: dir}
}

func (f *fileStore) Put(_ context.Context, img *Image) error {
	if err := os.MkdirAll(f.dir, 0750); err != nil {
		return fmt.Errorf("failed to create media directory: %w", err)
	}

	meta, err := json.MarshalIndent(imageMeta{
		ID:          img.ID,
		SourceURL:   img.SourceURL,
		ContentType: img.ContentType,
		CreatedAt:   img.CreatedAt,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal image metadata: %w", err)
	}

	// Data first so a visible sidecar always has its image
	if err := writeAtomic(f.dataPath(img.ID), img.Data); err != nil {
		return err
	}
	return writeAtomic(f.metaPath(img.ID), meta)
}

func (f *fileStore) Get(_ context.Context, id uuid.UUID) (*Image, error) {
	// #nosec G304 -- path is built from the media directory and a uuid
	raw, err := os.ReadFile(f.metaPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read image metadata: %w", err)
	}

	var meta imageMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal image metadata: %w", err)
	}

	// #nosec G304 -- path is built from the media directory and a uuid
	data, err := os.ReadFile(f.dataPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return &Image{
		ID:          meta.ID,
		SourceURL:   meta.SourceURL,
		ContentType: meta.ContentType,
		Data:        data,
		CreatedAt:   meta.CreatedAt,
	}, nil
}

func (f *fileStore) dataPath(id uuid.UUID) string {
	return filepath.Join(f.dir, id.String()+".bin")
}

func (f *fileStore) metaPath(id uuid.UUID) string {
	return filepath.Join(f.dir, id.String()+".json")
}

// writeAtomic writes to a temporary file and renames it into place
func writeAtomic(path string, data []byte) error {
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary file %s: %w", tempPath, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename %s: %w", tempPath, err)
	}
	return nil
}
