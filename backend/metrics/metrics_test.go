package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/jgoldverg/canopy/backend"
)

func TestCollectorSnapshot(t *testing.T) {
	c := NewCollector()
	c.ObserveCall("stat", nil)
	c.ObserveCall("stat", nil)
	c.ObserveCall("stat", fmt.Errorf("boom"))
	c.ObserveCall("mkdir", nil)
	c.AddBytesUp(100)
	c.AddBytesDown(250)
	c.AddBytesDown(-5)

	snap := c.Snapshot()
	if snap.RemoteCalls["stat"] != 3 || snap.RemoteErrors["stat"] != 1 {
		t.Fatalf("unexpected stat counts: %+v", snap)
	}
	if snap.RemoteCalls["mkdir"] != 1 || snap.RemoteErrors["mkdir"] != 0 {
		t.Fatalf("unexpected mkdir counts: %+v", snap)
	}
	if snap.BytesUp != 100 || snap.BytesDown != 250 {
		t.Fatalf("unexpected byte counts: %+v", snap)
	}
	if snap.TotalCalls() != 4 {
		t.Fatalf("expected 4 total calls, got %d", snap.TotalCalls())
	}
}

// stubChannel returns canned results so the decorator's counting can be
// observed in isolation.
type stubChannel struct {
	readData []byte
	readErr  error
}

func (s *stubChannel) Stat(ctx context.Context, path string) (backend.EntryInfo, error) {
	return backend.EntryInfo{}, nil
}
func (s *stubChannel) List(ctx context.Context, path string) ([]string, error) { return nil, nil }
func (s *stubChannel) Mkdir(ctx context.Context, path string) error            { return nil }
func (s *stubChannel) RemoveFile(ctx context.Context, path string) error       { return nil }
func (s *stubChannel) RemoveDir(ctx context.Context, path string) error        { return nil }
func (s *stubChannel) Open(ctx context.Context, path string, mode backend.OpenMode) (backend.Handle, error) {
	return nil, nil
}
func (s *stubChannel) Read(ctx context.Context, h backend.Handle, n int) ([]byte, error) {
	return s.readData, s.readErr
}
func (s *stubChannel) Write(ctx context.Context, h backend.Handle, p []byte) error { return nil }
func (s *stubChannel) Close(ctx context.Context, h backend.Handle) error           { return nil }

func TestInstrumentedChannelCountsCalls(t *testing.T) {
	c := NewCollector()
	ch := InstrumentChannel(&stubChannel{readData: []byte("abcd")}, c)
	ctx := context.Background()

	if _, err := ch.Stat(ctx, "/a"); err != nil {
		t.Fatalf("stat: %v", err)
	}
	if err := ch.Write(ctx, nil, []byte("xyz")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ch.Read(ctx, nil, 4); err != nil {
		t.Fatalf("read: %v", err)
	}

	snap := c.Snapshot()
	if snap.RemoteCalls["stat"] != 1 || snap.RemoteCalls["write"] != 1 || snap.RemoteCalls["read"] != 1 {
		t.Fatalf("unexpected call counts: %+v", snap.RemoteCalls)
	}
	if snap.BytesUp != 3 || snap.BytesDown != 4 {
		t.Fatalf("unexpected byte counts: up=%d down=%d", snap.BytesUp, snap.BytesDown)
	}
}

func TestInstrumentedChannelReadEOFIsNotAnError(t *testing.T) {
	c := NewCollector()
	ch := InstrumentChannel(&stubChannel{readErr: io.EOF}, c)

	_, err := ch.Read(context.Background(), nil, 4)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF to pass through, got %v", err)
	}
	snap := c.Snapshot()
	if snap.RemoteErrors["read"] != 0 {
		t.Fatalf("end-of-file must not count as an error: %+v", snap.RemoteErrors)
	}
	if snap.RemoteCalls["read"] != 1 {
		t.Fatalf("the call itself must still count: %+v", snap.RemoteCalls)
	}
}
