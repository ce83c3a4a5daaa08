package gateway

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"

	"eventbooking/entity"
)

// FilesClient stores generated documents in a local directory that the HTTP
// server also serves as static files.
type FilesClient struct {
	dir string
}

func NewFilesClient(dir string) (FilesClient, error) {
	if dir == "" {
		return FilesClient{}, errors.New("missing files directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return FilesClient{}, fmt.Errorf("could not create files directory %s: %w", dir, err)
	}

	return FilesClient{dir: dir}, nil
}

// Put overwrites name. The content is written to a temporary file first, so
// readers never see a partial document.
func (c FilesClient) Put(ctx context.Context, name string, content []byte) error {
	path, err := c.path(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("could not create temporary file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("could not write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not close %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("could not chmod %s: %w", name, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("could not store %s: %w", name, err)
	}

	log.FromContext(ctx).WithField("file", name).Debug("File stored")

	return nil
}

func (c FilesClient) Get(ctx context.Context, name string) ([]byte, error) {
	path, err := c.path(name)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("file %s: %w", name, entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", name, err)
	}

	return content, nil
}

func (c FilesClient) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", entity.NewValidationError("file", "invalid file name")
	}

	return filepath.Join(c.dir, name), nil
}
