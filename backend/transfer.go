package backend

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/jgoldverg/canopy/backend/chunker"
	"github.com/jgoldverg/canopy/internal"
)

// DownloadFile copies the remote file at remotePath into localPath, moving
// at most opts.ChunkSize bytes per step so memory use stays bounded to one
// chunk regardless of file size.
//
// Handles are closed only after the transfer loop succeeds; a failure mid
// loop surfaces immediately and may leave a partially written destination
// behind. A close failure after a complete loop is still reported as the
// overall result, even though the bytes are already on disk — callers that
// care can inspect the step tag.
func DownloadFile(ctx context.Context, ch Channel, local LocalFS, remotePath, localPath string, opts TransferOptions) error {
	dst, err := local.Create(localPath)
	if err != nil {
		return &StepError{Step: StepLocalOpen, Path: localPath, Err: err}
	}

	src, err := openStep(ctx, ch, remotePath, OpenRead, opts.timeout())
	if err != nil {
		return &StepError{Step: StepRemoteOpen, Path: remotePath, Err: err}
	}

	internal.Debug("downloading file", internal.Fields{
		internal.FieldPath:      remotePath,
		internal.FieldLocalPath: localPath,
		internal.FieldChunkSize: opts.chunkSize(),
	})

	for {
		data, err := readStep(ctx, ch, src, opts.chunkSize(), opts.timeout())
		if len(data) > 0 {
			if _, werr := dst.Write(data); werr != nil {
				return &StepError{Step: StepWrite, Path: localPath, Err: werr}
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return &StepError{Step: StepRead, Path: remotePath, Err: err}
		}
	}

	if err := closeStep(ctx, ch, src, opts.timeout()); err != nil {
		return &StepError{Step: StepRemoteClose, Path: remotePath, Err: err}
	}
	if err := dst.Close(); err != nil {
		return &StepError{Step: StepLocalClose, Path: localPath, Err: err}
	}
	return nil
}

// UploadFile copies the local file at localPath to remotePath, creating the
// remote file if missing and truncating it otherwise. The chunk spans are
// planned up front from the local file size; each span is one read and one
// write. The close policy matches DownloadFile.
func UploadFile(ctx context.Context, ch Channel, local LocalFS, localPath, remotePath string, opts TransferOptions) error {
	size, err := local.Size(localPath)
	if err != nil {
		return &StepError{Step: StepLocalOpen, Path: localPath, Err: err}
	}
	src, err := local.Open(localPath)
	if err != nil {
		return &StepError{Step: StepLocalOpen, Path: localPath, Err: err}
	}

	dst, err := openStep(ctx, ch, remotePath, OpenWrite, opts.timeout())
	if err != nil {
		return &StepError{Step: StepRemoteOpen, Path: remotePath, Err: err}
	}

	spans := chunker.Plan(size, int64(opts.chunkSize()))
	internal.Debug("uploading file", internal.Fields{
		internal.FieldPath:      remotePath,
		internal.FieldLocalPath: localPath,
		internal.FieldSize:      size,
		internal.FieldChunkSize: opts.chunkSize(),
	})

	buf := make([]byte, opts.chunkSize())
	for _, span := range spans {
		data := buf[:span.Length]
		if _, err := io.ReadFull(src, data); err != nil {
			return &StepError{Step: StepRead, Path: localPath, Err: err}
		}
		if err := writeStep(ctx, ch, dst, data, opts.timeout()); err != nil {
			return &StepError{Step: StepWrite, Path: remotePath, Err: err}
		}
	}

	if err := closeStep(ctx, ch, dst, opts.timeout()); err != nil {
		return &StepError{Step: StepRemoteClose, Path: remotePath, Err: err}
	}
	if err := src.Close(); err != nil {
		return &StepError{Step: StepLocalClose, Path: localPath, Err: err}
	}
	return nil
}

func openStep(ctx context.Context, ch Channel, p string, mode OpenMode, timeout time.Duration) (Handle, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return ch.Open(ctx, p, mode)
}

func readStep(ctx context.Context, ch Channel, h Handle, n int, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return ch.Read(ctx, h, n)
}

func writeStep(ctx context.Context, ch Channel, h Handle, p []byte, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return ch.Write(ctx, h, p)
}

func closeStep(ctx context.Context, ch Channel, h Handle, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return ch.Close(ctx, h)
}
