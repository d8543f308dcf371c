// Package sftpchan adapts an SFTP session to the backend.Channel contract.
// The session is established by Dial (or supplied by the caller) and stays
// borrowed: the tree and transfer engines never open or close it.
package sftpchan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/pkg/sftp"

	"github.com/jgoldverg/canopy/backend"
)

type Channel struct {
	client *sftp.Client
}

func New(client *sftp.Client) *Channel {
	return &Channel{client: client}
}

// run executes op, bailing out when ctx expires first. The abandoned SFTP
// request keeps running on the session until the server answers; only the
// caller's wait is bounded, which is all the per-call timeout promises.
func run(ctx context.Context, op func() error) error {
	done := make(chan error, 1)
	go func() { done <- op() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// call is run for operations with a result. The goroutine owns the result
// until it hands it over on the channel, so an abandoned op never touches
// anything the caller can still see.
func call[T any](ctx context.Context, op func() (T, error)) (T, error) {
	type outcome struct {
		val T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		val, err := op()
		done <- outcome{val: val, err: err}
	}()
	select {
	case out := <-done:
		return out.val, out.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (c *Channel) Stat(ctx context.Context, path string) (backend.EntryInfo, error) {
	return call(ctx, func() (backend.EntryInfo, error) {
		// Lstat, not Stat: symlinks must report as symlinks even when the
		// target is a directory.
		fi, err := c.client.Lstat(path)
		if err != nil {
			return backend.EntryInfo{}, normalize(err)
		}
		return entryInfo(fi), nil
	})
}

func (c *Channel) List(ctx context.Context, path string) ([]string, error) {
	return call(ctx, func() ([]string, error) {
		entries, err := c.client.ReadDir(path)
		if err != nil {
			return nil, normalize(err)
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		return names, nil
	})
}

func (c *Channel) Mkdir(ctx context.Context, path string) error {
	return run(ctx, func() error { return normalize(c.client.Mkdir(path)) })
}

func (c *Channel) RemoveFile(ctx context.Context, path string) error {
	return run(ctx, func() error { return normalize(c.client.Remove(path)) })
}

func (c *Channel) RemoveDir(ctx context.Context, path string) error {
	return run(ctx, func() error { return normalize(c.client.RemoveDirectory(path)) })
}

func (c *Channel) Open(ctx context.Context, path string, mode backend.OpenMode) (backend.Handle, error) {
	f, err := call(ctx, func() (*sftp.File, error) {
		switch mode {
		case backend.OpenWrite:
			f, err := c.client.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
			return f, normalize(err)
		default:
			f, err := c.client.Open(path)
			return f, normalize(err)
		}
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (c *Channel) Read(ctx context.Context, h backend.Handle, n int) ([]byte, error) {
	f, err := file(h)
	if err != nil {
		return nil, err
	}
	return call(ctx, func() ([]byte, error) {
		buf := make([]byte, n)
		m, err := f.Read(buf)
		if m > 0 {
			// Data first; a trailing io.EOF is reported on the next call.
			return buf[:m], nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, normalize(err)
		}
		return nil, nil
	})
}

func (c *Channel) Write(ctx context.Context, h backend.Handle, p []byte) error {
	f, err := file(h)
	if err != nil {
		return err
	}
	return run(ctx, func() error {
		_, err := f.Write(p)
		return normalize(err)
	})
}

func (c *Channel) Close(ctx context.Context, h backend.Handle) error {
	f, err := file(h)
	if err != nil {
		return err
	}
	return run(ctx, func() error { return normalize(f.Close()) })
}

func file(h backend.Handle) (*sftp.File, error) {
	f, ok := h.(*sftp.File)
	if !ok {
		return nil, fmt.Errorf("sftpchan: foreign handle %T", h)
	}
	return f, nil
}

// normalize maps sftp status errors onto the fs sentinel the engines branch
// on. pkg/sftp already converts no-such-file to os.ErrNotExist on most
// paths; the explicit check covers the ones it does not.
func normalize(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sftp.ErrSSHFxNoSuchFile) && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%v: %w", err, fs.ErrNotExist)
	}
	return err
}

// entryInfo derives type and access from the stat result. Access reflects
// the owner permission bits, the closest thing the protocol reports about
// the operating principal.
func entryInfo(fi os.FileInfo) backend.EntryInfo {
	info := backend.EntryInfo{
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
	}

	mode := fi.Mode()
	switch {
	case mode.IsRegular():
		info.Type = backend.TypeRegular
	case mode.IsDir():
		info.Type = backend.TypeDirectory
	case mode&fs.ModeSymlink != 0:
		info.Type = backend.TypeSymlink
	case mode&fs.ModeDevice != 0 || mode&fs.ModeCharDevice != 0:
		info.Type = backend.TypeDevice
	default:
		info.Type = backend.TypeOther
	}

	canRead := mode&0o400 != 0
	canWrite := mode&0o200 != 0
	switch {
	case canRead && canWrite:
		info.Access = backend.AccessReadWrite
	case canRead:
		info.Access = backend.AccessRead
	case canWrite:
		info.Access = backend.AccessWrite
	default:
		info.Access = backend.AccessNone
	}
	return info
}
