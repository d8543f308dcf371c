package cli

import (
	"testing"

	"github.com/jgoldverg/canopy/backend"
)

func TestParseEntryTypes(t *testing.T) {
	types, err := parseEntryTypes([]string{"regular", "dir", "Symlink"})
	if err != nil {
		t.Fatalf("parse entry types: %v", err)
	}
	want := []backend.EntryType{backend.TypeRegular, backend.TypeDirectory, backend.TypeSymlink}
	if len(types) != len(want) {
		t.Fatalf("expected %v, got %v", want, types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, types)
		}
	}

	if _, err := parseEntryTypes([]string{"socket"}); err == nil {
		t.Fatalf("expected error for unknown type")
	}

	types, err = parseEntryTypes(nil)
	if err != nil || types != nil {
		t.Fatalf("expected nil result for empty input, got %v, %v", types, err)
	}
}

func TestExcludeFilter(t *testing.T) {
	filter := excludeFilter([]string{"*.tmp", ".git"})
	if filter("/srv/data/report.pdf") != backend.DecisionProceed {
		t.Fatalf("expected proceed for non-matching path")
	}
	if filter("/srv/data/scratch.tmp") != backend.DecisionSkip {
		t.Fatalf("expected skip for matching glob")
	}
	if filter("/srv/repo/.git") != backend.DecisionSkip {
		t.Fatalf("expected skip for exact basename match")
	}
	if excludeFilter(nil) != nil {
		t.Fatalf("expected nil callback for no patterns")
	}
}

func TestDepthLimit(t *testing.T) {
	limit := depthLimit("/srv/data", 2)
	if limit("/srv/data/a") != backend.DecisionProceed {
		t.Fatalf("expected proceed at depth 1")
	}
	if limit("/srv/data/a/b") != backend.DecisionSkipButInclude {
		t.Fatalf("expected cutoff at depth 2")
	}
	if depthLimit("/srv/data", 0) != nil {
		t.Fatalf("expected nil callback for unlimited depth")
	}
}
