package sources

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/litsort/litsort/internal/record"
)

const semanticScholarBaseURL = "https://api.semanticscholar.org"

const (
	s2LookupFields = "title,authors,year,journal,volume,venue,publicationTypes,topics,fieldsOfStudy"
	s2SearchFields = "title,authors,year,journal,venue"

	// titleSearchLimit caps the candidates fetched per title validation.
	titleSearchLimit = 5
)

// SemanticScholar queries the Semantic Scholar Graph API. It doubles as the
// registry's TitleSearcher for validating guessed metadata. An API key
// (WithAPIKey) is optional and raises the rate budget.
type SemanticScholar struct {
	client
}

// NewSemanticScholar creates a Semantic Scholar source.
func NewSemanticScholar(opts ...Option) *SemanticScholar {
	return &SemanticScholar{client: newClient(semanticScholarBaseURL, semanticScholarRate, opts...)}
}

func (s *SemanticScholar) Name() string { return NameSemanticScholar }

func (s *SemanticScholar) header() http.Header {
	h := http.Header{}
	if s.apiKey != "" {
		h.Set("x-api-key", s.apiKey)
	}
	return h
}

// Lookup fetches paper metadata for a DOI.
func (s *SemanticScholar) Lookup(ctx context.Context, doi string) (*record.Record, error) {
	var body struct {
		Title   string `json:"title"`
		Authors []struct {
			Name string `json:"name"`
		} `json:"authors"`
		Year    int `json:"year"`
		Journal struct {
			Name   string `json:"name"`
			Volume string `json:"volume"`
			Issue  string `json:"issue"`
		} `json:"journal"`
		Venue         string   `json:"venue"`
		FieldsOfStudy []string `json:"fieldsOfStudy"`
		Topics        []struct {
			Name string `json:"name"`
		} `json:"topics"`
	}

	url := s.baseURL + "/graph/v1/paper/DOI:" + doi + "?fields=" + s2LookupFields
	if err := s.getJSON(ctx, NameSemanticScholar, url, s.header(), &body); err != nil {
		return nil, err
	}

	rec := &record.Record{DOI: doi, Source: NameSemanticScholar}

	rec.Title = body.Title
	// Names come as free-form "Given Family"; keep the last word.
	for _, a := range body.Authors {
		if parts := strings.Fields(a.Name); len(parts) > 0 {
			rec.Authors = append(rec.Authors, parts[len(parts)-1])
		}
	}
	if body.Year > 0 {
		rec.Year = strconv.Itoa(body.Year)
	}
	if body.Journal.Name != "" {
		rec.Journal = body.Journal.Name
		rec.Volume = body.Journal.Volume
		rec.Issue = body.Journal.Issue
	} else {
		rec.Journal = body.Venue
	}
	if len(body.FieldsOfStudy) > 0 {
		rec.Subject = body.FieldsOfStudy[0]
	} else if len(body.Topics) > 0 {
		rec.Subject = body.Topics[0].Name
	}

	return rec, nil
}

// SearchTitle finds up to titleSearchLimit candidate papers by relevance to
// the given title. Candidate records keep full author names.
func (s *SemanticScholar) SearchTitle(ctx context.Context, title string) ([]record.Record, error) {
	var body struct {
		Data []struct {
			Title   string `json:"title"`
			Authors []struct {
				Name string `json:"name"`
			} `json:"authors"`
			Year    int `json:"year"`
			Journal struct {
				Name string `json:"name"`
			} `json:"journal"`
			Venue string `json:"venue"`
		} `json:"data"`
	}

	q := url.Values{}
	q.Set("query", title)
	q.Set("limit", strconv.Itoa(titleSearchLimit))
	q.Set("fields", s2SearchFields)
	u := s.baseURL + "/graph/v1/paper/search?" + q.Encode()
	if err := s.getJSON(ctx, NameSemanticScholar, u, s.header(), &body); err != nil {
		return nil, err
	}
	if len(body.Data) == 0 {
		return nil, ErrNotFound
	}

	recs := make([]record.Record, 0, len(body.Data))
	for _, p := range body.Data {
		rec := record.Record{Title: p.Title, Source: NameSemanticScholar}
		for _, a := range p.Authors {
			if a.Name != "" {
				rec.Authors = append(rec.Authors, a.Name)
			}
		}
		if p.Year > 0 {
			rec.Year = strconv.Itoa(p.Year)
		}
		rec.Journal = p.Journal.Name
		if rec.Journal == "" {
			rec.Journal = p.Venue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
