package backend

import "time"

const (
	// DefaultTimeout bounds every individual remote call. It is a per-call
	// budget, not a total-operation one.
	DefaultTimeout = 5 * time.Second
	// DefaultChunkSize is the transfer chunk size in bytes.
	DefaultChunkSize = 32768
)

// WalkDecision is returned by listing callbacks to steer the walk.
type WalkDecision int

const (
	// DecisionProceed continues normally. Zero value, so a callback that
	// returns the default steers nothing.
	DecisionProceed WalkDecision = iota
	// DecisionSkip omits the entry (and, for a recurse callback, its
	// subtree) entirely.
	DecisionSkip
	// DecisionSkipButInclude records the entry in the result but skips the
	// stat (iterate callback) or the descent (recurse callback).
	DecisionSkipButInclude
)

// IterateFunc is consulted for every child name before it is stat'ed.
// Returning DecisionSkip avoids the stat round trip entirely.
type IterateFunc func(path string) WalkDecision

// RecurseFunc is consulted for every readable directory before the walk
// descends into it.
type RecurseFunc func(path string) WalkDecision

// TreeOptions configures MakeDirRecursive and RemoveDirRecursive.
type TreeOptions struct {
	// Timeout applies to each remote call. Zero means DefaultTimeout.
	Timeout time.Duration
}

func (o TreeOptions) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

// ListOptions configures ListDirRecursive.
type ListOptions struct {
	// Timeout applies to each remote call. Zero means DefaultTimeout.
	Timeout time.Duration
	// IncludedTypes selects which entry types land in the result. Nil
	// means regular files only.
	IncludedTypes []EntryType
	// WithInfo switches the result shape from path-only to path+info.
	WithInfo bool
	// Iterate and Recurse are optional per-path decision hooks.
	Iterate IterateFunc
	Recurse RecurseFunc
}

func (o ListOptions) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

func (o ListOptions) includes(t EntryType) bool {
	if o.IncludedTypes == nil {
		return t == TypeRegular
	}
	for _, it := range o.IncludedTypes {
		if it == t {
			return true
		}
	}
	return false
}

// TransferOptions configures DownloadFile and UploadFile.
type TransferOptions struct {
	// Timeout applies to each remote call, not to the whole transfer.
	// Zero means DefaultTimeout.
	Timeout time.Duration
	// ChunkSize bounds the bytes moved per read/write step. Zero means
	// DefaultChunkSize.
	ChunkSize int
}

func (o TransferOptions) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

func (o TransferOptions) chunkSize() int {
	if o.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return o.ChunkSize
}
