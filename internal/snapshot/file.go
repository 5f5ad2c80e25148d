package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps each document as a JSON file under a root directory,
// at {root}/seasons/{season}/cached/{kind}.json. Writes go to a temp file
// in the same directory and are renamed into place, so readers see either
// the old or the new document, never a partial one.
type FileStore struct {
	root string
}

// NewFileStore creates a store rooted at dir. The directory is created on
// first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: dir}
}

func (s *FileStore) filename(seasonID string, kind Kind) string {
	return filepath.Join(s.root, filepath.FromSlash(Path(seasonID, kind))+".json")
}

func (s *FileStore) Put(_ context.Context, doc Document) error {
	name := s.filename(doc.SeasonID, doc.Kind)
	dir := filepath.Dir(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+string(doc.Kind)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(doc.Payload); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", doc.Path(), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", doc.Path(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", doc.Path(), err)
	}
	if err := os.Rename(tmp.Name(), name); err != nil {
		return fmt.Errorf("replace %s: %w", doc.Path(), err)
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, seasonID string, kind Kind) (Document, error) {
	name := s.filename(seasonID, kind)
	data, err := os.ReadFile(name)
	if errors.Is(err, fs.ErrNotExist) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", Path(seasonID, kind), err)
	}
	doc := Document{SeasonID: seasonID, Kind: kind, Payload: data}
	if info, err := os.Stat(name); err == nil {
		doc.UpdatedAt = info.ModTime().UTC()
	}
	return doc, nil
}
