package media

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// RenditionsDir holds generated renditions below the media root.
const RenditionsDir = "images"

// FileStore exposes the stored media files by slash separated names
// relative to the media root.
type FileStore interface {
	List(ctx context.Context, dir string) ([]string, error)
	Remove(ctx context.Context, name string) error
	URL(name string) string
}

// LocalStore serves media from a directory on disk.
type LocalStore struct {
	Root    string
	BaseURL string
}

func NewLocalStore(root, baseURL string) *LocalStore {
	return &LocalStore{Root: root, BaseURL: baseURL}
}

func (s *LocalStore) List(ctx context.Context, dir string) ([]string, error) {
	var names []string
	err := fs.WalkDir(os.DirFS(s.Root), dir, func(name string, entry fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && name == dir {
				return fs.SkipAll
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !entry.IsDir() {
			names = append(names, name)
		}
		return nil
	})
	return names, err
}

func (s *LocalStore) Remove(_ context.Context, name string) error {
	err := os.Remove(filepath.Join(s.Root, filepath.FromSlash(name)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (s *LocalStore) URL(name string) string {
	return strings.TrimSuffix(s.BaseURL, "/") + "/" + path.Clean(name)
}
