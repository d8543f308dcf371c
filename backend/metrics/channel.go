package metrics

import (
	"context"
	"errors"
	"io"

	"github.com/jgoldverg/canopy/backend"
)

// InstrumentChannel wraps ch so every call is counted on c. Read and Write
// additionally feed the byte counters. The wrapper adds no behavior beyond
// counting; errors pass through untouched.
func InstrumentChannel(ch backend.Channel, c *Collector) backend.Channel {
	return &instrumentedChannel{ch: ch, collector: c}
}

type instrumentedChannel struct {
	ch        backend.Channel
	collector *Collector
}

func (ic *instrumentedChannel) Stat(ctx context.Context, path string) (backend.EntryInfo, error) {
	info, err := ic.ch.Stat(ctx, path)
	ic.collector.ObserveCall("stat", err)
	return info, err
}

func (ic *instrumentedChannel) List(ctx context.Context, path string) ([]string, error) {
	names, err := ic.ch.List(ctx, path)
	ic.collector.ObserveCall("list", err)
	return names, err
}

func (ic *instrumentedChannel) Mkdir(ctx context.Context, path string) error {
	err := ic.ch.Mkdir(ctx, path)
	ic.collector.ObserveCall("mkdir", err)
	return err
}

func (ic *instrumentedChannel) RemoveFile(ctx context.Context, path string) error {
	err := ic.ch.RemoveFile(ctx, path)
	ic.collector.ObserveCall("remove_file", err)
	return err
}

func (ic *instrumentedChannel) RemoveDir(ctx context.Context, path string) error {
	err := ic.ch.RemoveDir(ctx, path)
	ic.collector.ObserveCall("remove_dir", err)
	return err
}

func (ic *instrumentedChannel) Open(ctx context.Context, path string, mode backend.OpenMode) (backend.Handle, error) {
	h, err := ic.ch.Open(ctx, path, mode)
	ic.collector.ObserveCall("open", err)
	return h, err
}

func (ic *instrumentedChannel) Read(ctx context.Context, h backend.Handle, n int) ([]byte, error) {
	data, err := ic.ch.Read(ctx, h, n)
	observed := err
	if errors.Is(err, io.EOF) {
		observed = nil // end-of-stream is not a failure
	}
	ic.collector.ObserveCall("read", observed)
	ic.collector.AddBytesDown(len(data))
	return data, err
}

func (ic *instrumentedChannel) Write(ctx context.Context, h backend.Handle, p []byte) error {
	err := ic.ch.Write(ctx, h, p)
	ic.collector.ObserveCall("write", err)
	if err == nil {
		ic.collector.AddBytesUp(len(p))
	}
	return err
}

func (ic *instrumentedChannel) Close(ctx context.Context, h backend.Handle) error {
	err := ic.ch.Close(ctx, h)
	ic.collector.ObserveCall("close", err)
	return err
}
