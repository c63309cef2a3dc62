package sources

import (
	"context"
	"net/url"

	"github.com/litsort/litsort/internal/record"
)

const europepmcBaseURL = "https://www.ebi.ac.uk/europepmc/webservices/rest"

// EuropePMC queries the Europe PMC REST search API.
type EuropePMC struct {
	client
}

// NewEuropePMC creates a Europe PMC source.
func NewEuropePMC(opts ...Option) *EuropePMC {
	return &EuropePMC{client: newClient(europepmcBaseURL, europepmcRate, opts...)}
}

func (s *EuropePMC) Name() string { return NameEuropePMC }

// Lookup searches Europe PMC by DOI and parses the first hit.
func (s *EuropePMC) Lookup(ctx context.Context, doi string) (*record.Record, error) {
	var body struct {
		ResultList struct {
			Result []struct {
				Title      string `json:"title"`
				AuthorList struct {
					Author []struct {
						LastName string `json:"lastName"`
					} `json:"author"`
				} `json:"authorList"`
				PubYear       string `json:"pubYear"`
				JournalTitle  string `json:"journalTitle"`
				JournalVolume string `json:"journalVolume"`
				JournalIssue  string `json:"journalIssue"`
				PageInfo      string `json:"pageInfo"`
				KeywordList   struct {
					Keyword []string `json:"keyword"`
				} `json:"keywordList"`
			} `json:"result"`
		} `json:"resultList"`
	}

	q := url.Values{}
	q.Set("query", "DOI:"+doi)
	q.Set("format", "json")
	if err := s.getJSON(ctx, NameEuropePMC, s.baseURL+"/search?"+q.Encode(), nil, &body); err != nil {
		return nil, err
	}
	if len(body.ResultList.Result) == 0 {
		return nil, ErrNotFound
	}

	hit := body.ResultList.Result[0]
	rec := &record.Record{DOI: doi, Source: NameEuropePMC}

	rec.Title = hit.Title
	for _, a := range hit.AuthorList.Author {
		if a.LastName != "" {
			rec.Authors = append(rec.Authors, a.LastName)
		}
	}
	rec.Year = hit.PubYear
	rec.Journal = hit.JournalTitle
	rec.Volume = hit.JournalVolume
	rec.Issue = hit.JournalIssue
	rec.Pages = hit.PageInfo
	if len(hit.KeywordList.Keyword) > 0 {
		rec.Subject = hit.KeywordList.Keyword[0]
	}

	return rec, nil
}
