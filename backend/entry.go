package backend

import (
	"path"
	"strings"
	"time"
)

// EntryType classifies a remote entry as reported by Stat.
type EntryType int

const (
	TypeUnknown EntryType = iota
	TypeRegular
	TypeDirectory
	TypeSymlink
	TypeDevice
	TypeOther
)

func (t EntryType) String() string {
	switch t {
	case TypeRegular:
		return "regular"
	case TypeDirectory:
		return "directory"
	case TypeSymlink:
		return "symlink"
	case TypeDevice:
		return "device"
	case TypeOther:
		return "other"
	default:
		return "unknown"
	}
}

// Access is the access the operating principal holds on an entry.
type Access int

const (
	AccessNone Access = iota
	AccessRead
	AccessWrite
	AccessReadWrite
)

func (a Access) String() string {
	switch a {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	case AccessReadWrite:
		return "read_write"
	default:
		return "none"
	}
}

// CanRead reports whether a grants reading.
func (a Access) CanRead() bool { return a == AccessRead || a == AccessReadWrite }

// CanWrite reports whether a grants writing.
func (a Access) CanWrite() bool { return a == AccessWrite || a == AccessReadWrite }

// EntryInfo is the result of a stat call. Size and ModTime are informational;
// the tree engine only acts on Type and Access.
type EntryInfo struct {
	Type    EntryType
	Access  Access
	Size    int64
	ModTime time.Time
}

// ListEntry is one item of a recursive listing. Info is nil for the
// path-only result shape and for entries included through a
// DecisionSkipButInclude callback, where the stat was deliberately skipped.
type ListEntry struct {
	Path string
	Info *EntryInfo
}

// SplitPath breaks a slash-delimited remote path into the ordered prefixes
// the component-wise mkdir resolves one by one. An absolute path keeps its
// leading slash on every prefix; the root itself is not a prefix.
//
//	SplitPath("/a/b/c") -> ["/a", "/a/b", "/a/b/c"]
//	SplitPath("a/b")    -> ["a", "a/b"]
//	SplitPath("/")      -> nil
func SplitPath(p string) []string {
	p = path.Clean(p)
	if p == "/" || p == "." || p == "" {
		return nil
	}
	rooted := strings.HasPrefix(p, "/")
	parts := strings.Split(strings.Trim(p, "/"), "/")
	prefixes := make([]string, 0, len(parts))
	cur := ""
	for _, part := range parts {
		if cur == "" {
			cur = part
			if rooted {
				cur = "/" + part
			}
		} else {
			cur = cur + "/" + part
		}
		prefixes = append(prefixes, cur)
	}
	return prefixes
}
