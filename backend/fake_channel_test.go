package backend

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
)

// fakeChannel is an in-memory remote filesystem keyed by clean absolute
// path. Every call is counted per op+path so tests can assert how many round
// trips an engine issued, and fail injects an error for a specific call.
type fakeChannel struct {
	mu      sync.Mutex
	entries map[string]*fakeEntry
	calls   map[string]int
	fail    map[string]error
}

type fakeEntry struct {
	info EntryInfo
	data []byte
}

type fakeHandle struct {
	path string
	mode OpenMode
	off  int
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		entries: map[string]*fakeEntry{
			"/": {info: EntryInfo{Type: TypeDirectory, Access: AccessReadWrite}},
		},
		calls: make(map[string]int),
		fail:  make(map[string]error),
	}
}

func (f *fakeChannel) addDir(p string, access Access) {
	f.entries[path.Clean(p)] = &fakeEntry{info: EntryInfo{Type: TypeDirectory, Access: access}}
}

func (f *fakeChannel) addFile(p string, data []byte, access Access) {
	f.entries[path.Clean(p)] = &fakeEntry{
		info: EntryInfo{Type: TypeRegular, Access: access, Size: int64(len(data))},
		data: data,
	}
}

func (f *fakeChannel) addSymlink(p string) {
	f.entries[path.Clean(p)] = &fakeEntry{info: EntryInfo{Type: TypeSymlink, Access: AccessReadWrite}}
}

func (f *fakeChannel) failOn(op, p string, err error) {
	f.fail[op+" "+path.Clean(p)] = err
}

func (f *fakeChannel) has(p string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[path.Clean(p)]
	return ok
}

func (f *fakeChannel) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for key, n := range f.calls {
		if strings.HasPrefix(key, op+" ") {
			total += n
		}
	}
	return total
}

func (f *fakeChannel) callCountFor(op, p string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op+" "+path.Clean(p)]
}

// begin records the call and returns the injected error, if any.
func (f *fakeChannel) begin(op, p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := op + " " + path.Clean(p)
	f.calls[key]++
	return f.fail[key]
}

func (f *fakeChannel) Stat(ctx context.Context, p string) (EntryInfo, error) {
	if err := f.begin("stat", p); err != nil {
		return EntryInfo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[path.Clean(p)]
	if !ok {
		return EntryInfo{}, fs.ErrNotExist
	}
	return entry.info, nil
}

func (f *fakeChannel) List(ctx context.Context, p string) ([]string, error) {
	if err := f.begin("list", p); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	dir := path.Clean(p)
	if _, ok := f.entries[dir]; !ok {
		return nil, fs.ErrNotExist
	}
	var names []string
	for candidate := range f.entries {
		if candidate != dir && path.Dir(candidate) == dir {
			names = append(names, path.Base(candidate))
		}
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeChannel) Mkdir(ctx context.Context, p string) error {
	if err := f.begin("mkdir", p); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[path.Clean(p)] = &fakeEntry{info: EntryInfo{Type: TypeDirectory, Access: AccessReadWrite}}
	return nil
}

func (f *fakeChannel) RemoveFile(ctx context.Context, p string) error {
	if err := f.begin("remove_file", p); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	clean := path.Clean(p)
	if _, ok := f.entries[clean]; !ok {
		return fs.ErrNotExist
	}
	delete(f.entries, clean)
	return nil
}

func (f *fakeChannel) RemoveDir(ctx context.Context, p string) error {
	if err := f.begin("remove_dir", p); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	dir := path.Clean(p)
	if _, ok := f.entries[dir]; !ok {
		return fs.ErrNotExist
	}
	for candidate := range f.entries {
		if candidate != dir && path.Dir(candidate) == dir {
			return fmt.Errorf("directory not empty: %s", dir)
		}
	}
	delete(f.entries, dir)
	return nil
}

func (f *fakeChannel) Open(ctx context.Context, p string, mode OpenMode) (Handle, error) {
	if err := f.begin("open", p); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	clean := path.Clean(p)
	entry, ok := f.entries[clean]
	if mode == OpenWrite {
		if ok {
			entry.data = nil
			entry.info.Size = 0
		} else {
			f.entries[clean] = &fakeEntry{info: EntryInfo{Type: TypeRegular, Access: AccessReadWrite}}
		}
		return &fakeHandle{path: clean, mode: mode}, nil
	}
	if !ok {
		return nil, fs.ErrNotExist
	}
	return &fakeHandle{path: clean, mode: mode}, nil
}

func (f *fakeChannel) Read(ctx context.Context, h Handle, n int) ([]byte, error) {
	fh := h.(*fakeHandle)
	if err := f.begin("read", fh.path); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[fh.path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	if fh.off >= len(entry.data) {
		return nil, io.EOF
	}
	end := fh.off + n
	if end > len(entry.data) {
		end = len(entry.data)
	}
	data := append([]byte(nil), entry.data[fh.off:end]...)
	fh.off = end
	return data, nil
}

func (f *fakeChannel) Write(ctx context.Context, h Handle, p []byte) error {
	fh := h.(*fakeHandle)
	if err := f.begin("write", fh.path); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[fh.path]
	if !ok {
		return fs.ErrNotExist
	}
	entry.data = append(entry.data, p...)
	entry.info.Size = int64(len(entry.data))
	return nil
}

func (f *fakeChannel) Close(ctx context.Context, h Handle) error {
	fh := h.(*fakeHandle)
	return f.begin("close", fh.path)
}
