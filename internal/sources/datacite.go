package sources

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/litsort/litsort/internal/record"
)

const dataciteBaseURL = "https://api.datacite.org"

// DataCite queries the DataCite JSON:API. It mostly covers datasets, theses
// and reports, which the article-centric sources miss.
type DataCite struct {
	client
}

// NewDataCite creates a DataCite source.
func NewDataCite(opts ...Option) *DataCite {
	return &DataCite{client: newClient(dataciteBaseURL, dataciteRate, opts...)}
}

func (s *DataCite) Name() string { return NameDataCite }

// Lookup fetches DOI metadata.
func (s *DataCite) Lookup(ctx context.Context, doi string) (*record.Record, error) {
	var body struct {
		Data struct {
			Attributes struct {
				Titles []struct {
					Title string `json:"title"`
				} `json:"titles"`
				Creators []struct {
					Name       string `json:"name"`
					FamilyName string `json:"familyName"`
				} `json:"creators"`
				PublicationYear int `json:"publicationYear"`
				Container       struct {
					Title     string `json:"title"`
					Volume    string `json:"volume"`
					Issue     string `json:"issue"`
					FirstPage string `json:"firstPage"`
					LastPage  string `json:"lastPage"`
				} `json:"container"`
				Subjects []struct {
					Subject string `json:"subject"`
				} `json:"subjects"`
			} `json:"attributes"`
		} `json:"data"`
	}

	header := http.Header{"Accept": {"application/vnd.api+json"}}
	if err := s.getJSON(ctx, NameDataCite, s.baseURL+"/dois/"+doi, header, &body); err != nil {
		return nil, err
	}

	attrs := body.Data.Attributes
	rec := &record.Record{DOI: doi, Source: NameDataCite}

	if len(attrs.Titles) > 0 {
		rec.Title = attrs.Titles[0].Title
	}
	// Creator names come as "Family, Given"; keep the family part.
	for _, c := range attrs.Creators {
		switch {
		case c.Name != "":
			family, _, _ := strings.Cut(c.Name, ",")
			rec.Authors = append(rec.Authors, strings.TrimSpace(family))
		case c.FamilyName != "":
			rec.Authors = append(rec.Authors, c.FamilyName)
		}
	}
	if attrs.PublicationYear > 0 {
		rec.Year = strconv.Itoa(attrs.PublicationYear)
	}
	rec.Journal = attrs.Container.Title
	rec.Volume = attrs.Container.Volume
	rec.Issue = attrs.Container.Issue
	rec.Pages = joinPageRange(attrs.Container.FirstPage, attrs.Container.LastPage)
	if len(attrs.Subjects) > 0 {
		rec.Subject = attrs.Subjects[0].Subject
	}

	return rec, nil
}
