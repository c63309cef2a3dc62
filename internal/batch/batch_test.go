package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/litsort/litsort/internal/organize"
	"github.com/litsort/litsort/internal/pipeline"
)

type fakeProcessor struct {
	mu    sync.Mutex
	calls int
	fn    func(path string) *pipeline.Task
}

func (f *fakeProcessor) Process(ctx context.Context, path string) *pipeline.Task {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.fn(path)
}

func (f *fakeProcessor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func successTask(path string) *pipeline.Task {
	return &pipeline.Task{Path: path, Method: pipeline.MethodDOI, Tier: pipeline.TierHigh}
}

func failedTask(path string) *pipeline.Task {
	return &pipeline.Task{
		Path:     path,
		Method:   pipeline.MethodFailed,
		Tier:     pipeline.TierFailed,
		ErrorTag: pipeline.TagNoIdentifier,
	}
}

func makePDFs(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("pdf"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestEnumerate(t *testing.T) {
	tmp := t.TempDir()
	makePDFs(t, tmp, "a.pdf", "B.PDF", "notes.txt")
	if err := os.Mkdir(filepath.Join(tmp, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	makePDFs(t, filepath.Join(tmp, "nested"), "deep.pdf")

	paths, err := enumerate(tmp)
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	want := []string{"B.PDF", "a.pdf"}
	if len(names) != len(want) {
		t.Fatalf("enumerated %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestRun_EmptyDirectory(t *testing.T) {
	tmp := t.TempDir()
	makePDFs(t, tmp, "notes.txt")

	proc := &fakeProcessor{fn: successTask}
	sum, err := Run(context.Background(), tmp, proc, Options{}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	snap := sum.Stats.Snapshot()
	if snap.Processed != 0 || snap.Renamed != 0 || snap.Problematic != 0 {
		t.Errorf("snapshot = %+v, want zeros", snap)
	}
	if proc.callCount() != 0 {
		t.Errorf("processor called %d times for an empty directory", proc.callCount())
	}
}

func TestRun_CountsEveryDocument(t *testing.T) {
	tmp := t.TempDir()
	makePDFs(t, tmp,
		"ok0.pdf", "ok1.pdf", "ok2.pdf", "ok3.pdf", "ok4.pdf", "ok5.pdf",
		"fail0.pdf", "fail1.pdf", "fail2.pdf")

	proc := &fakeProcessor{fn: func(path string) *pipeline.Task {
		if strings.Contains(filepath.Base(path), "fail") {
			return failedTask(path)
		}
		return successTask(path)
	}}

	var mu sync.Mutex
	var events []Event
	progress := func(e Event) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	}

	sum, err := Run(context.Background(), tmp, proc, Options{Workers: 3}, progress)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	snap := sum.Stats.Snapshot()
	if snap.Processed != 9 || snap.Renamed != 6 || snap.Problematic != 3 {
		t.Errorf("snapshot = %+v, want 9/6/3", snap)
	}
	if len(sum.Tasks) != 9 {
		t.Errorf("got %d tasks, want 9", len(sum.Tasks))
	}
	if len(events) != 9 {
		t.Fatalf("got %d progress events, want 9", len(events))
	}
	if last := events[len(events)-1]; last.Percent != 100 {
		t.Errorf("final percent = %v, want 100", last.Percent)
	}
}

func TestRun_PanicRecovered(t *testing.T) {
	tmp := t.TempDir()
	makePDFs(t, tmp, "good.pdf", "boom.pdf", "fine.pdf")

	proc := &fakeProcessor{fn: func(path string) *pipeline.Task {
		if strings.Contains(path, "boom") {
			panic("unexpected document state")
		}
		return successTask(path)
	}}

	sum, err := Run(context.Background(), tmp, proc, Options{Workers: 2}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	snap := sum.Stats.Snapshot()
	if snap.Processed != 3 {
		t.Errorf("processed = %d, want 3", snap.Processed)
	}
	if snap.Renamed != 2 || snap.Problematic != 1 {
		t.Errorf("renamed/problematic = %d/%d, want 2/1", snap.Renamed, snap.Problematic)
	}
}

func TestRun_CancellationStopsDispatch(t *testing.T) {
	tmp := t.TempDir()
	makePDFs(t, tmp, "a.pdf", "b.pdf", "c.pdf", "d.pdf", "e.pdf")

	ctx, cancel := context.WithCancel(context.Background())
	proc := &fakeProcessor{fn: func(path string) *pipeline.Task {
		cancel()
		return successTask(path)
	}}

	sum, err := Run(ctx, tmp, proc, Options{Workers: 1}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}

	if got := proc.callCount(); got != 1 {
		t.Errorf("processor called %d times after cancellation, want 1", got)
	}
	if snap := sum.Stats.Snapshot(); snap.Processed != 1 {
		t.Errorf("processed = %d, want 1 (in-flight document finishes)", snap.Processed)
	}
}

func TestRun_CategoryCountsAggregated(t *testing.T) {
	tmp := t.TempDir()
	makePDFs(t, tmp, "a.pdf", "b.pdf")

	proc := &fakeProcessor{fn: func(path string) *pipeline.Task {
		task := successTask(path)
		task.Categories = []organize.CategoryCopy{
			{Dimension: organize.DimYear, Value: "2021"},
			{Dimension: organize.DimJournal, Value: "Journal of Examples"},
		}
		return task
	}}

	sum, err := Run(context.Background(), tmp, proc, Options{}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	snap := sum.Stats.Snapshot()
	if got := snap.Categories[organize.DimYear]["2021"]; got != 2 {
		t.Errorf("year count = %d, want 2", got)
	}
	if got := snap.Categories[organize.DimJournal]["Journal of Examples"]; got != 2 {
		t.Errorf("journal count = %d, want 2", got)
	}
}

func TestSummary_References(t *testing.T) {
	sum := &Summary{Stats: NewStats()}
	okA := successTask("a.pdf")
	okA.Reference = "Browne, B. (2020). Beta."
	okB := successTask("b.pdf")
	okB.Reference = "Adams, A. (2021). Alpha."
	failed := failedTask("c.pdf")
	failed.Reference = "never emitted"
	sum.Tasks = []*pipeline.Task{okA, okB, failed}

	refs := sum.References()
	want := []string{"Adams, A. (2021). Alpha.", "Browne, B. (2020). Beta."}
	if len(refs) != len(want) {
		t.Fatalf("References() = %v, want %v", refs, want)
	}
	for i := range want {
		if refs[i] != want[i] {
			t.Errorf("refs[%d] = %q, want %q", i, refs[i], want[i])
		}
	}
}

func TestStats_SnapshotIsDeepCopy(t *testing.T) {
	stats := NewStats()
	stats.Complete(true)
	stats.AddCategory(organize.DimYear, "2021")

	snap := stats.Snapshot()
	snap.Categories[organize.DimYear]["2021"] = 99

	if got := stats.Snapshot().Categories[organize.DimYear]["2021"]; got != 1 {
		t.Errorf("internal count = %d after mutating a snapshot, want 1", got)
	}
}
