package sftpchan

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestCallReturnsResultInTime(t *testing.T) {
	got, err := call(context.Background(), func() ([]string, error) {
		return []string{"a", "b"}, nil
	})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected result %v", got)
	}

	wantErr := fmt.Errorf("boom")
	if _, err := call(context.Background(), func() (int, error) { return 0, wantErr }); !errors.Is(err, wantErr) {
		t.Fatalf("expected op error, got %v", err)
	}
}

func TestCallAbandonsSlowOp(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	release := make(chan struct{})
	finished := make(chan struct{})
	got, err := call(ctx, func() ([]byte, error) {
		<-release
		defer close(finished)
		return []byte("late answer"), nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if got != nil {
		t.Fatalf("abandoned call must return no result, got %q", got)
	}

	// Let the abandoned op finish and prove the caller's view stays the
	// zero value; run under -race this also verifies the late completion
	// never writes anything the caller reads.
	close(release)
	<-finished
	if got != nil {
		t.Fatalf("result changed after the abandoned op completed: %q", got)
	}
}

func TestRunAbandonsSlowOp(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	release := make(chan struct{})
	err := run(ctx, func() error {
		<-release
		return fmt.Errorf("late failure")
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	close(release)
}

func TestRunPropagatesOpError(t *testing.T) {
	wantErr := fmt.Errorf("boom")
	if err := run(context.Background(), func() error { return wantErr }); !errors.Is(err, wantErr) {
		t.Fatalf("expected op error, got %v", err)
	}
}
