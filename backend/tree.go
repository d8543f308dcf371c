package backend

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"time"

	"github.com/jgoldverg/canopy/internal"
)

// MakeDirRecursive creates path and every missing intermediate directory,
// resolving one component per step. Each prefix is stat'ed before any mkdir
// is attempted: old servers collapse "already exists" and genuine failures
// into one ambiguous code, so the mkdir error itself is never trusted to
// distinguish the two. The extra round trip per level buys correctness
// across protocol versions.
//
// An existing prefix must be a writable directory; otherwise the call fails
// with *TypeError or *AccessError naming that prefix and no further
// components are touched.
func MakeDirRecursive(ctx context.Context, ch Channel, dirPath string, opts TreeOptions) error {
	for _, prefix := range SplitPath(dirPath) {
		info, err := statStep(ctx, ch, prefix, opts.timeout())
		switch {
		case err == nil:
			if info.Type != TypeDirectory {
				return &TypeError{Path: prefix, Type: info.Type}
			}
			if !info.Access.CanWrite() {
				return &AccessError{Path: prefix, Access: info.Access}
			}
		case errors.Is(err, fs.ErrNotExist):
			internal.Debug("creating directory", internal.Fields{
				internal.FieldPath: prefix,
			})
			if mkErr := mkdirStep(ctx, ch, prefix, opts.timeout()); mkErr != nil {
				return &StepError{Step: StepMakeDir, Path: prefix, Err: mkErr}
			}
		default:
			return &StepError{Step: StepFileInfo, Path: prefix, Err: err}
		}
	}
	return nil
}

// RemoveDirRecursive deletes the directory at dirPath together with its
// whole subtree. The target must be a writable directory; a regular file or
// symlink at dirPath fails with *TypeError and is left alone. The first
// failure aborts the rest of the subtree; entries already removed stay
// removed, there is no rollback.
func RemoveDirRecursive(ctx context.Context, ch Channel, dirPath string, opts TreeOptions) error {
	return removeTree(ctx, ch, path.Clean(dirPath), opts)
}

func removeTree(ctx context.Context, ch Channel, dirPath string, opts TreeOptions) error {
	info, err := statStep(ctx, ch, dirPath, opts.timeout())
	if err != nil {
		return &StepError{Step: StepFileInfo, Path: dirPath, Err: err}
	}
	if info.Type != TypeDirectory {
		return &TypeError{Path: dirPath, Type: info.Type}
	}
	if !info.Access.CanWrite() {
		return &AccessError{Path: dirPath, Access: info.Access}
	}

	names, err := listStep(ctx, ch, dirPath, opts.timeout())
	if err != nil {
		return &StepError{Step: StepListDir, Path: dirPath, Err: err}
	}
	for _, name := range names {
		if name == "." || name == ".." {
			continue
		}
		child := path.Join(dirPath, name)
		cinfo, err := statStep(ctx, ch, child, opts.timeout())
		if err != nil {
			return &StepError{Step: StepFileInfo, Path: child, Err: err}
		}
		if cinfo.Type == TypeDirectory {
			// removeTree re-verifies type and access right before it
			// mutates, so no removal ever acts on a stale stat.
			if err := removeTree(ctx, ch, child, opts); err != nil {
				return err
			}
			continue
		}
		internal.Debug("removing file", internal.Fields{
			internal.FieldPath: child,
		})
		if err := removeFileStep(ctx, ch, child, opts.timeout()); err != nil {
			return &StepError{Step: StepRemove, Path: child, Err: err}
		}
	}

	internal.Debug("removing directory", internal.Fields{
		internal.FieldPath: dirPath,
	})
	if err := removeDirStep(ctx, ch, dirPath, opts.timeout()); err != nil {
		return &StepError{Step: StepRemove, Path: dirPath, Err: err}
	}
	return nil
}

// ListDirRecursive walks the subtree under dirPath depth-first in pre-order
// and returns the entries matching opts. The root itself is not part of the
// result. Entries whose type is excluded or whose access does not grant
// reading are silently omitted; the walk never descends into a directory
// without confirmed read access and never follows symlinks. Any stat or
// listing failure aborts the whole call and discards partial results.
func ListDirRecursive(ctx context.Context, ch Channel, dirPath string, opts ListOptions) ([]ListEntry, error) {
	dirPath = path.Clean(dirPath)
	info, err := statStep(ctx, ch, dirPath, opts.timeout())
	if err != nil {
		return nil, &StepError{Step: StepFileInfo, Path: dirPath, Err: err}
	}
	if info.Type != TypeDirectory {
		return nil, &TypeError{Path: dirPath, Type: info.Type}
	}
	if !info.Access.CanRead() {
		return nil, &AccessError{Path: dirPath, Access: info.Access}
	}

	var acc []ListEntry
	if err := listWalk(ctx, ch, dirPath, opts, &acc); err != nil {
		return nil, err
	}
	return acc, nil
}

func listWalk(ctx context.Context, ch Channel, dirPath string, opts ListOptions, acc *[]ListEntry) error {
	names, err := listStep(ctx, ch, dirPath, opts.timeout())
	if err != nil {
		return &StepError{Step: StepListDir, Path: dirPath, Err: err}
	}

	for _, name := range names {
		if name == "." || name == ".." {
			continue
		}
		child := path.Join(dirPath, name)

		if opts.Iterate != nil {
			switch opts.Iterate(child) {
			case DecisionSkip:
				continue
			case DecisionSkipButInclude:
				// Recorded with unknown info: the stat was skipped on
				// purpose, so there is nothing trustworthy to attach.
				*acc = append(*acc, ListEntry{Path: child})
				continue
			}
		}

		cinfo, err := statStep(ctx, ch, child, opts.timeout())
		if err != nil {
			return &StepError{Step: StepFileInfo, Path: child, Err: err}
		}

		if cinfo.Type == TypeDirectory {
			if !cinfo.Access.CanRead() {
				continue
			}
			decision := DecisionProceed
			if opts.Recurse != nil {
				decision = opts.Recurse(child)
			}
			switch decision {
			case DecisionSkip:
				if opts.includes(TypeDirectory) {
					appendEntry(acc, child, cinfo, opts)
				}
			case DecisionSkipButInclude:
				appendEntry(acc, child, cinfo, opts)
			default:
				if opts.includes(TypeDirectory) {
					appendEntry(acc, child, cinfo, opts)
				}
				if err := listWalk(ctx, ch, child, opts, acc); err != nil {
					return err
				}
			}
			continue
		}

		if opts.includes(cinfo.Type) && cinfo.Access.CanRead() {
			appendEntry(acc, child, cinfo, opts)
		}
	}
	return nil
}

func appendEntry(acc *[]ListEntry, p string, info EntryInfo, opts ListOptions) {
	entry := ListEntry{Path: p}
	if opts.WithInfo {
		infoCopy := info
		entry.Info = &infoCopy
	}
	*acc = append(*acc, entry)
}

// Per-call timeout wrappers. Each remote request gets its own deadline so a
// stalled server fails exactly one step.

func statStep(ctx context.Context, ch Channel, p string, timeout time.Duration) (EntryInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return ch.Stat(ctx, p)
}

func listStep(ctx context.Context, ch Channel, p string, timeout time.Duration) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return ch.List(ctx, p)
}

func mkdirStep(ctx context.Context, ch Channel, p string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return ch.Mkdir(ctx, p)
}

func removeFileStep(ctx context.Context, ch Channel, p string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return ch.RemoveFile(ctx, p)
}

func removeDirStep(ctx context.Context, ch Channel, p string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return ch.RemoveDir(ctx, p)
}
