package backend

import (
	"context"
	"io"
)

// OpenMode selects how a remote file handle is opened.
type OpenMode int

const (
	// OpenRead opens an existing file for reading.
	OpenRead OpenMode = iota
	// OpenWrite opens a file for writing, creating it if missing and
	// truncating any existing content.
	OpenWrite
)

// Handle is an opaque reference to an open remote file. It is produced by
// Channel.Open and is only meaningful to the channel that issued it.
type Handle any

// Channel is the single-level operation contract against an established
// remote session. The session itself (dialing, authentication, teardown) is
// owned by the caller; canopy borrows the channel for the duration of each
// call and never closes it.
//
// Every method honors ctx cancellation and deadlines. The tree and transfer
// engines derive a fresh timeout context per remote call, so a slow server
// fails one step rather than hanging a whole tree operation.
//
// Stat must not follow symbolic links: a symlink reports TypeSymlink even
// when its target is a directory. Channels report a missing path from Stat
// as an error matching errors.Is(err, fs.ErrNotExist).
type Channel interface {
	Stat(ctx context.Context, path string) (EntryInfo, error)
	List(ctx context.Context, path string) ([]string, error)
	Mkdir(ctx context.Context, path string) error
	RemoveFile(ctx context.Context, path string) error
	RemoveDir(ctx context.Context, path string) error
	Open(ctx context.Context, path string, mode OpenMode) (Handle, error)
	// Read returns up to n bytes. End of stream is signaled by io.EOF with
	// no data; a short read with nil error is valid mid-stream.
	Read(ctx context.Context, h Handle, n int) ([]byte, error)
	Write(ctx context.Context, h Handle, p []byte) error
	Close(ctx context.Context, h Handle) error
}

// LocalFS is the local side of a transfer. No timeouts apply; local I/O is
// assumed not to block indefinitely.
type LocalFS interface {
	// Open opens an existing local file for reading.
	Open(path string) (io.ReadCloser, error)
	// Create opens a local file for writing, creating or truncating it.
	Create(path string) (io.WriteCloser, error)
	// Size reports the byte size of an existing regular file. Uploads use
	// it to plan chunk spans before the first read.
	Size(path string) (int64, error)
}
