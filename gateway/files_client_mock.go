package gateway

import (
	"context"
	"fmt"
	"sync"

	"eventbooking/entity"
)

type FilesMock struct {
	lock  sync.Mutex
	files map[string][]byte
	puts  int
}

func (c *FilesMock) Put(ctx context.Context, name string, content []byte) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.files == nil {
		c.files = make(map[string][]byte)
	}

	c.files[name] = content
	c.puts++

	return nil
}

func (c *FilesMock) Get(ctx context.Context, name string) ([]byte, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	content, ok := c.files[name]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", name, entity.ErrNotFound)
	}

	return content, nil
}

func (c *FilesMock) Puts() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.puts
}
