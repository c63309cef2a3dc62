package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/litsort/litsort/internal/record"
)

const scopusBaseURL = "https://api.elsevier.com"

// Scopus queries the Elsevier Scopus abstract retrieval API. Requires an
// API key; without one every lookup fails with ErrAuthError.
type Scopus struct {
	client
}

// NewScopus creates a Scopus source.
func NewScopus(opts ...Option) *Scopus {
	return &Scopus{client: newClient(scopusBaseURL, scopusRate, opts...)}
}

func (s *Scopus) Name() string { return NameScopus }

// Lookup fetches abstract metadata for a DOI.
func (s *Scopus) Lookup(ctx context.Context, doi string) (*record.Record, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("%s: missing API key: %w", NameScopus, ErrAuthError)
	}

	var body struct {
		Response struct {
			Coredata struct {
				Title           string `json:"dc:title"`
				CoverDate       string `json:"prism:coverDate"`
				PublicationName string `json:"prism:publicationName"`
				Volume          string `json:"prism:volume"`
				Issue           string `json:"prism:issueIdentifier"`
				PageRange       string `json:"prism:pageRange"`
			} `json:"coredata"`
			Authors struct {
				Author []struct {
					Surname string `json:"ce:surname"`
				} `json:"author"`
			} `json:"authors"`
			SubjectAreas struct {
				SubjectArea []struct {
					Name string `json:"$"`
				} `json:"subject-area"`
			} `json:"subject-areas"`
		} `json:"abstracts-retrieval-response"`
	}

	header := http.Header{"X-ELS-APIKey": {s.apiKey}}
	if err := s.getJSON(ctx, NameScopus, s.baseURL+"/content/abstract/doi/"+doi, header, &body); err != nil {
		return nil, err
	}

	core := body.Response.Coredata
	rec := &record.Record{DOI: doi, Source: NameScopus}

	rec.Title = core.Title
	for _, a := range body.Response.Authors.Author {
		if a.Surname != "" {
			rec.Authors = append(rec.Authors, a.Surname)
		}
	}
	if core.CoverDate != "" {
		rec.Year = strings.SplitN(core.CoverDate, "-", 2)[0]
	}
	rec.Journal = core.PublicationName
	rec.Volume = core.Volume
	rec.Issue = core.Issue
	rec.Pages = core.PageRange
	if areas := body.Response.SubjectAreas.SubjectArea; len(areas) > 0 {
		rec.Subject = areas[0].Name
	}

	return rec, nil
}
