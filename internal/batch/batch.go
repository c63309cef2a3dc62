// Package batch fans a directory of documents out to a bounded worker
// pool, aggregates counters, and reports progress. One document is one
// unit of work; a failure or panic in one never affects the others.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/litsort/litsort/internal/pipeline"
)

// DefaultWorkers is the pool size when none is configured.
const DefaultWorkers = 4

// Processor resolves one document end-to-end. *pipeline.Pipeline
// satisfies it.
type Processor interface {
	Process(ctx context.Context, path string) *pipeline.Task
}

// Options controls the pool.
type Options struct {
	Workers int
}

// Event is delivered to the progress callback after each completed
// document. Events arrive from a single goroutine, in completion order.
type Event struct {
	Filename string  `json:"filename"`
	Success  bool    `json:"success"`
	Percent  float64 `json:"percent"`
}

// Progress consumes per-document completion events. nil means silent.
type Progress func(Event)

// Summary is the terminal batch result: counters plus every document's
// terminal task, in completion order.
type Summary struct {
	Stats *Stats
	Tasks []*pipeline.Task
}

// References returns the reference strings of all successfully resolved
// documents, sorted for stable bibliography output.
func (s *Summary) References() []string {
	var refs []string
	for _, t := range s.Tasks {
		if t.Succeeded() && t.Reference != "" {
			refs = append(refs, t.Reference)
		}
	}
	sort.Strings(refs)
	return refs
}

// Run processes every top-level PDF in dir through proc. An empty
// directory yields zero counters and no error. Cancellation is observed
// between documents: in-flight documents finish, completed renames stay.
// The summary is valid even when ctx was cancelled.
func Run(ctx context.Context, dir string, proc Processor, opts Options, progress Progress) (*Summary, error) {
	paths, err := enumerate(dir)
	if err != nil {
		return nil, err
	}

	sum := &Summary{Stats: NewStats()}
	if len(paths) == 0 {
		return sum, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	jobs := make(chan string)
	results := make(chan *pipeline.Task)

	go func() {
		defer close(jobs)
		for _, path := range paths {
			select {
			case <-ctx.Done():
				return
			case jobs <- path:
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				if ctx.Err() != nil {
					return
				}
				results <- runOne(ctx, proc, path)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	total := len(paths)
	for task := range results {
		success := task.Succeeded()
		sum.Stats.Complete(success)
		for _, c := range task.Categories {
			sum.Stats.AddCategory(c.Dimension, c.Value)
		}
		sum.Tasks = append(sum.Tasks, task)

		if progress != nil {
			snap := sum.Stats.Snapshot()
			progress(Event{
				Filename: filepath.Base(task.Path),
				Success:  success,
				Percent:  100 * float64(snap.Processed) / float64(total),
			})
		}
	}
	return sum, ctx.Err()
}

// runOne shields the pool from a panicking document: the panic is
// logged and the document counted problematic.
func runOne(ctx context.Context, proc Processor, path string) (task *pipeline.Task) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "error: panic processing %s: %v\n", filepath.Base(path), r)
			task = &pipeline.Task{
				Path:   path,
				Method: pipeline.MethodFailed,
				Tier:   pipeline.TierFailed,
			}
		}
	}()
	return proc.Process(ctx, path)
}

// enumerate lists top-level PDF files, case-insensitive on extension,
// never descending into subdirectories.
func enumerate(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}
