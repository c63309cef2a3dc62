package sources

import (
	"context"
	"net/http"
	"strconv"

	"github.com/litsort/litsort/internal/record"
)

const crossrefBaseURL = "https://api.crossref.org"

// Crossref queries the Crossref works API.
type Crossref struct {
	client
}

// NewCrossref creates a Crossref source. A contact email (WithEmail) joins
// the polite pool via the User-Agent header.
func NewCrossref(opts ...Option) *Crossref {
	return &Crossref{client: newClient(crossrefBaseURL, crossrefRate, opts...)}
}

func (s *Crossref) Name() string { return NameCrossref }

// crossrefDate is Crossref's nested date representation; only the year
// component is used.
type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

func (d crossrefDate) year() string {
	if len(d.DateParts) > 0 && len(d.DateParts[0]) > 0 && d.DateParts[0][0] > 0 {
		return strconv.Itoa(d.DateParts[0][0])
	}
	return ""
}

// Lookup fetches work metadata for a DOI.
func (s *Crossref) Lookup(ctx context.Context, doi string) (*record.Record, error) {
	var body struct {
		Message struct {
			Title  []string `json:"title"`
			Author []struct {
				Family string `json:"family"`
			} `json:"author"`
			PublishedPrint  crossrefDate `json:"published-print"`
			PublishedOnline crossrefDate `json:"published-online"`
			Created         crossrefDate `json:"created"`
			ContainerTitle  []string     `json:"container-title"`
			Volume          string       `json:"volume"`
			Issue           string       `json:"issue"`
			Page            string       `json:"page"`
			Subject         []string     `json:"subject"`
		} `json:"message"`
	}

	header := http.Header{"User-Agent": {userAgent(s.email)}}
	if err := s.getJSON(ctx, NameCrossref, s.baseURL+"/works/"+doi, header, &body); err != nil {
		return nil, err
	}

	m := body.Message
	rec := &record.Record{DOI: doi, Source: NameCrossref}

	if len(m.Title) > 0 {
		rec.Title = m.Title[0]
	}
	for _, a := range m.Author {
		if a.Family != "" {
			rec.Authors = append(rec.Authors, a.Family)
		}
	}
	// Print date wins over online, which wins over the deposit date.
	for _, d := range []crossrefDate{m.PublishedPrint, m.PublishedOnline, m.Created} {
		if y := d.year(); y != "" {
			rec.Year = y
			break
		}
	}
	if len(m.ContainerTitle) > 0 {
		rec.Journal = m.ContainerTitle[0]
	}
	rec.Volume = m.Volume
	rec.Issue = m.Issue
	rec.Pages = m.Page
	if len(m.Subject) > 0 {
		rec.Subject = m.Subject[0]
	}

	return rec, nil
}
