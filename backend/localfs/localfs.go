// Package localfs implements the local side of a transfer over the OS
// filesystem. Access is pre-checked with access(2) so permission problems
// surface as fs.ErrPermission before any handle is opened.
package localfs

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

type Client struct{}

func New() *Client {
	return &Client{}
}

func (c *Client) Open(path string) (io.ReadCloser, error) {
	// Only an access failure maps to ErrPermission; a missing file falls
	// through so os.Open reports not-exist.
	if err := unix.Access(path, unix.R_OK); err == unix.EACCES {
		return nil, fmt.Errorf("access %s: %w", path, fs.ErrPermission)
	}
	return os.Open(path)
}

func (c *Client) Create(path string) (io.WriteCloser, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return nil, fmt.Errorf("create %s: is a directory", path)
	}
	// The parent must be writable; Create would report the same condition
	// less precisely.
	if err := unix.Access(filepath.Dir(path), unix.W_OK); err == unix.EACCES {
		return nil, fmt.Errorf("access %s: %w", filepath.Dir(path), fs.ErrPermission)
	}
	return os.Create(path)
}

func (c *Client) Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, fmt.Errorf("size %s: is a directory", path)
	}
	return info.Size(), nil
}
