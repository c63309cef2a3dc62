package sources

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/litsort/litsort/internal/record"
)

const openalexBaseURL = "https://api.openalex.org"

// openalexConceptFloor is the minimum concept score accepted as a subject.
const openalexConceptFloor = 0.4

// OpenAlex queries the OpenAlex works API. First in the default chain: it
// carries the richest subject information.
type OpenAlex struct {
	client
}

// NewOpenAlex creates an OpenAlex source. A contact email (WithEmail) joins
// the polite pool via the User-Agent header.
func NewOpenAlex(opts ...Option) *OpenAlex {
	return &OpenAlex{client: newClient(openalexBaseURL, openalexRate, opts...)}
}

func (s *OpenAlex) Name() string { return NameOpenAlex }

// Lookup fetches work metadata for a DOI.
func (s *OpenAlex) Lookup(ctx context.Context, doi string) (*record.Record, error) {
	var body struct {
		Title       string `json:"title"`
		DisplayName string `json:"display_name"`
		Authorships []struct {
			Author struct {
				DisplayName string `json:"display_name"`
			} `json:"author"`
		} `json:"authorships"`
		PublicationDate string `json:"publication_date"`
		PublicationYear int    `json:"publication_year"`
		PrimaryLocation struct {
			Source struct {
				DisplayName string `json:"display_name"`
			} `json:"source"`
		} `json:"primary_location"`
		HostVenue struct {
			DisplayName string `json:"display_name"`
		} `json:"host_venue"`
		Biblio struct {
			Volume    string `json:"volume"`
			Issue     string `json:"issue"`
			FirstPage string `json:"first_page"`
			LastPage  string `json:"last_page"`
		} `json:"biblio"`
		Concepts []struct {
			DisplayName string  `json:"display_name"`
			Score       float64 `json:"score"`
		} `json:"concepts"`
		PrimaryTopic struct {
			DisplayName string `json:"display_name"`
		} `json:"primary_topic"`
	}

	header := http.Header{"User-Agent": {userAgent(s.email)}}
	url := s.baseURL + "/works/https://doi.org/" + doi
	if err := s.getJSON(ctx, NameOpenAlex, url, header, &body); err != nil {
		return nil, err
	}

	rec := &record.Record{DOI: doi, Source: NameOpenAlex}

	rec.Title = body.Title
	if rec.Title == "" {
		rec.Title = body.DisplayName
	}

	// OpenAlex exposes full display names; keep the surname.
	for _, a := range body.Authorships {
		if parts := strings.Fields(a.Author.DisplayName); len(parts) > 0 {
			rec.Authors = append(rec.Authors, parts[len(parts)-1])
		}
	}

	if body.PublicationDate != "" {
		rec.Year = strings.SplitN(body.PublicationDate, "-", 2)[0]
	} else if body.PublicationYear > 0 {
		rec.Year = strconv.Itoa(body.PublicationYear)
	}

	rec.Journal = body.PrimaryLocation.Source.DisplayName
	if rec.Journal == "" {
		rec.Journal = body.HostVenue.DisplayName
	}

	rec.Volume = body.Biblio.Volume
	rec.Issue = body.Biblio.Issue
	rec.Pages = joinPageRange(body.Biblio.FirstPage, body.Biblio.LastPage)

	var bestScore float64
	for _, c := range body.Concepts {
		if c.Score > openalexConceptFloor && c.Score > bestScore && c.DisplayName != "" {
			rec.Subject = c.DisplayName
			bestScore = c.Score
		}
	}
	if rec.Subject == "" {
		rec.Subject = body.PrimaryTopic.DisplayName
	}

	return rec, nil
}

// joinPageRange formats a first/last page pair, tolerating either side
// being absent.
func joinPageRange(first, last string) string {
	switch {
	case first != "" && last != "":
		return first + "-" + last
	case first != "":
		return first
	default:
		return last
	}
}
