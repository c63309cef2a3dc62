// Package pipeline runs one document through the full resolution flow:
// identifier extraction, ordered source resolution, AI fallback with
// title validation, confidence routing, and file organization. Every
// failure is absorbed into the task's method, tier, and error tag; only
// filesystem failures mark a document problematic.
package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/litsort/litsort/internal/ai"
	"github.com/litsort/litsort/internal/cite"
	"github.com/litsort/litsort/internal/organize"
	"github.com/litsort/litsort/internal/pdf"
	"github.com/litsort/litsort/internal/record"
	"github.com/litsort/litsort/internal/sources"
)

// Resolution methods, in decreasing order of confidence.
const (
	MethodDOI           = "doi_api"
	MethodAIValidated   = "ai_validated"
	MethodAIUnvalidated = "ai_unvalidated"
	MethodFailed        = "failed"
)

// Confidence tiers.
const (
	TierHigh   = "HIGH"
	TierMedium = "MEDIUM"
	TierFailed = "FAILED"
)

// Error tags describing why a document fell short of full confidence.
const (
	TagNoIdentifier            = "no_identifier"
	TagSourceUnavailable       = "source_unavailable"
	TagInsufficientMetadata    = "insufficient_metadata"
	TagAIUnavailableOrDisabled = "ai_unavailable_or_disabled"
	TagAIMalformedResponse     = "ai_malformed_response"
	TagValidationInconclusive  = "validation_inconclusive"
	TagFilesystemError         = "filesystem_error"
	TagUnreadableOrEncrypted   = "unreadable_or_encrypted"
)

// Destination folders by confidence tier.
const (
	FolderNamed   = "Named Article"
	FolderAINamed = "AI Named Content"
	FolderUnnamed = "Unnamed Article"
	BackupFolder  = "backups"
)

// SourceAI tags records built from an unvalidated AI guess.
const SourceAI = "ai"

// Task is one PDF moving through the pipeline. It is created at
// enumeration, mutated through each stage exactly once, and owned by a
// single worker.
type Task struct {
	Path       string                  `json:"path"`
	DOI        string                  `json:"doi,omitempty"`
	Text       string                  `json:"-"`
	Record     *record.Record          `json:"record,omitempty"`
	Method     string                  `json:"method"`
	Tier       string                  `json:"tier"`
	Source     string                  `json:"source,omitempty"`
	Citation   string                  `json:"citation,omitempty"`
	Reference  string                  `json:"reference,omitempty"`
	FinalPath  string                  `json:"final_path,omitempty"`
	ErrorTag   string                  `json:"error_tag,omitempty"`
	Categories []organize.CategoryCopy `json:"categories,omitempty"`
}

// Succeeded reports whether the document ended renamed under a resolved
// citation. Anything else counts as problematic.
func (t *Task) Succeeded() bool {
	return t.Method != MethodFailed && t.ErrorTag != TagFilesystemError
}

// Options are the routing and organization toggles for a run.
type Options struct {
	Backups          bool
	MoveUnresolved   bool
	SeparateAIFolder bool
	Categorize       []string
	DryRun           bool
}

// ExtractFunc pulls the identifier and text out of a document on disk.
type ExtractFunc func(path string) (*pdf.Extraction, error)

// Resolver is the metadata side of the pipeline: ordered DOI resolution
// plus title-search validation of AI guesses.
type Resolver interface {
	Resolve(ctx context.Context, doi string) (*sources.Resolution, error)
	ValidateTitle(ctx context.Context, title string) (*record.Record, error)
}

// Guesser extracts bibliographic fields from raw text when no usable
// identifier is available.
type Guesser interface {
	Extract(ctx context.Context, text string) (*ai.Guess, error)
}

// Pipeline holds the collaborators for processing documents. AI may be
// nil, which disables the fallback stage.
type Pipeline struct {
	Root    string
	Extract ExtractFunc
	Sources Resolver
	AI      Guesser
	Opts    Options
}

// TierFor maps a resolution method to its confidence tier. Validated AI
// results drop to MEDIUM when the separate-AI-folder toggle is on, so
// they land in the AI folder rather than among directly resolved papers.
func TierFor(method string, separateAIFolder bool) string {
	switch method {
	case MethodDOI:
		return TierHigh
	case MethodAIValidated:
		if separateAIFolder {
			return TierMedium
		}
		return TierHigh
	case MethodAIUnvalidated:
		return TierMedium
	default:
		return TierFailed
	}
}

// Route maps a confidence tier to its destination folder. The second
// return is false when the document should stay where it is.
func Route(tier string, opts Options) (string, bool) {
	switch tier {
	case TierHigh:
		return FolderNamed, true
	case TierMedium:
		if opts.SeparateAIFolder {
			return FolderAINamed, true
		}
		return FolderNamed, true
	case TierFailed:
		if opts.MoveUnresolved {
			return FolderUnnamed, true
		}
	}
	return "", false
}

// Process runs one document end-to-end and returns its terminal task.
// It never returns an error: failures become the task's tag and tier.
func (p *Pipeline) Process(ctx context.Context, path string) *Task {
	task := &Task{Path: path, Method: MethodFailed}

	p.resolve(ctx, task)
	task.Tier = TierFor(task.Method, p.Opts.SeparateAIFolder)
	if task.Record != nil {
		task.Citation = cite.Short(task.Record)
		task.Reference = cite.Reference(task.Record)
	}
	p.place(task)
	return task
}

// resolve runs extraction, the source chain, and the AI fallback,
// leaving method, record, and error tag on the task.
func (p *Pipeline) resolve(ctx context.Context, task *Task) {
	ex, err := p.Extract(task.Path)
	if err != nil {
		task.ErrorTag = TagUnreadableOrEncrypted
		return
	}
	task.Text = ex.Text
	task.DOI = ex.DOI

	if task.DOI == "" {
		task.ErrorTag = TagNoIdentifier
	} else {
		res, err := p.Sources.Resolve(ctx, task.DOI)
		switch {
		case err != nil:
			task.ErrorTag = TagSourceUnavailable
		case res.Record != nil:
			task.Method = MethodDOI
			task.Record = res.Record
			task.Source = res.Source
			return
		case res.Partial:
			task.ErrorTag = TagInsufficientMetadata
		default:
			task.ErrorTag = TagSourceUnavailable
		}
	}

	p.guess(ctx, task, ex)
}

// guess runs the AI fallback and validates the result against the title
// search. A validated match clears the task's error trail; an unvalidated
// guess is kept at reduced confidence.
func (p *Pipeline) guess(ctx context.Context, task *Task, ex *pdf.Extraction) {
	if p.AI == nil {
		return
	}
	text := ex.FirstPage
	if strings.TrimSpace(text) == "" {
		text = ex.Text
	}
	if strings.TrimSpace(text) == "" {
		return
	}

	g, err := p.AI.Extract(ctx, text)
	if err != nil {
		if errors.Is(err, ai.ErrMalformedResponse) {
			task.ErrorTag = TagAIMalformedResponse
		} else {
			task.ErrorTag = TagAIUnavailableOrDisabled
		}
		return
	}

	if rec, err := p.Sources.ValidateTitle(ctx, g.Title); err == nil && rec != nil {
		task.Method = MethodAIValidated
		task.Record = rec
		task.Source = rec.Source
		task.ErrorTag = ""
		if task.Record.DOI == "" {
			task.Record.DOI = task.DOI
		}
		return
	}

	year := g.Year
	if !record.ValidYear(year) {
		year = ""
	}
	task.Method = MethodAIUnvalidated
	task.Record = &record.Record{
		Title:   g.Title,
		Authors: g.Authors,
		Year:    year,
		DOI:     task.DOI,
		Source:  SourceAI,
	}
	task.Source = SourceAI
	task.ErrorTag = TagValidationInconclusive
}

// place routes the task to its destination folder and performs the
// backup, move, and categorization copies. Unresolved documents stay put
// unless move-unresolved is on.
func (p *Pipeline) place(task *Task) {
	folder, ok := Route(task.Tier, p.Opts)
	if !ok {
		return
	}

	filename := filepath.Base(task.Path)
	if task.Method != MethodFailed {
		filename = organize.BuildFilename(task.Citation, task.Record.Title, filepath.Ext(task.Path))
	}
	destDir := filepath.Join(p.Root, folder)

	if p.Opts.DryRun {
		// Report the candidate destination; collisions are not resolved
		// without touching the filesystem.
		task.FinalPath = filepath.Join(destDir, filename)
		return
	}

	if p.Opts.Backups {
		if _, err := organize.Backup(task.Path, filepath.Join(p.Root, BackupFolder)); err != nil {
			task.ErrorTag = TagFilesystemError
			return
		}
	}

	final, err := organize.Place(task.Path, destDir, filename)
	if err != nil {
		task.ErrorTag = TagFilesystemError
		return
	}
	task.FinalPath = final

	if task.Method != MethodFailed && len(p.Opts.Categorize) > 0 {
		copies, err := organize.Categorize(final, p.Root, p.Opts.Categorize, organize.DimensionValues(task.Record))
		task.Categories = copies
		if err != nil {
			task.ErrorTag = TagFilesystemError
		}
	}
}
