// Package sources resolves bibliographic metadata for DOIs by querying a
// fixed, ordered chain of scholarly APIs. Each source client parses its
// API's response shape into a record.Record; the registry walks the chain
// and stops at the first record that satisfies the sufficiency invariant.
package sources

import (
	"context"

	"github.com/litsort/litsort/internal/record"
)

// Stable source names, used as record source tags and report dimensions.
const (
	NameOpenAlex        = "openalex"
	NameCrossref        = "crossref"
	NameDataCite        = "datacite"
	NameEuropePMC       = "europepmc"
	NameSemanticScholar = "semantic_scholar"
	NameScopus          = "scopus"
	NameUnpaywall       = "unpaywall"
)

// Source resolves bibliographic metadata for a normalized DOI.
type Source interface {
	// Name returns the stable identifier used in records and reports.
	Name() string

	// Lookup fetches and parses metadata for doi. Implementations return
	// ErrNotFound when the source does not know the DOI; a returned record
	// may still be insufficient.
	Lookup(ctx context.Context, doi string) (*record.Record, error)
}

// TitleSearcher finds candidate papers for a free-text title. Used to
// validate guessed metadata against a bibliographic index.
type TitleSearcher interface {
	SearchTitle(ctx context.Context, title string) ([]record.Record, error)
}

// Registry is an ordered chain of metadata sources, built once per run.
type Registry struct {
	sources  []Source
	searcher TitleSearcher
}

// NewRegistry creates a registry over the given sources, queried in the
// given order. searcher may be nil, in which case ValidateTitle reports
// ErrNoTitleSearch.
func NewRegistry(searcher TitleSearcher, srcs ...Source) *Registry {
	return &Registry{sources: srcs, searcher: searcher}
}

// Names returns the source names in chain order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.sources))
	for i, s := range r.sources {
		names[i] = s.Name()
	}
	return names
}

// Resolution is the outcome of one full pass over the source chain.
type Resolution struct {
	Record   *record.Record   // first sufficient record, nil when exhausted
	Source   string           // name of the source that produced Record
	Partial  bool             // at least one source answered but fell short
	Failures map[string]error // per-source failures keyed by source name
}

// Resolve queries the chain in order and stops at the first source that
// yields a sufficient record. A source failure of any kind (network, HTTP
// status, malformed body) or an insufficient record continues the chain;
// only context cancellation aborts it. An exhausted chain is not an error:
// the returned Resolution has a nil Record.
func (r *Registry) Resolve(ctx context.Context, doi string) (*Resolution, error) {
	res := &Resolution{Failures: make(map[string]error)}
	for _, src := range r.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := src.Lookup(ctx, doi)
		if err != nil {
			res.Failures[src.Name()] = err
			continue
		}
		if rec == nil || !rec.Sufficient() {
			res.Partial = true
			continue
		}
		res.Record = rec
		res.Source = src.Name()
		return res, nil
	}
	return res, nil
}

// ValidateTitle checks a guessed title against the bibliographic index and
// returns the best candidate's record when its similarity clears
// TitleSimilarityThreshold. A nil record with nil error means no candidate
// was close enough.
func (r *Registry) ValidateTitle(ctx context.Context, title string) (*record.Record, error) {
	if r.searcher == nil {
		return nil, ErrNoTitleSearch
	}

	candidates, err := r.searcher.SearchTitle(ctx, title)
	if err != nil {
		return nil, err
	}

	var (
		best      *record.Record
		bestScore float64
	)
	for i := range candidates {
		score := TitleSimilarity(title, candidates[i].Title)
		if score > bestScore {
			best = &candidates[i]
			bestScore = score
		}
	}
	if best == nil || bestScore < TitleSimilarityThreshold {
		return nil, nil
	}
	return best, nil
}
