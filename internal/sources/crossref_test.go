package sources

import (
	"context"
	"net/http"
	"reflect"
	"testing"
)

const sampleCrossrefJSON = `{
	"message": {
		"title": ["Example Study"],
		"author": [
			{"family": "Smith", "given": "J."},
			{"family": "Jones", "given": "A."}
		],
		"published-print": {"date-parts": [[2021, 3, 10]]},
		"published-online": {"date-parts": [[2020, 12, 1]]},
		"created": {"date-parts": [[2020, 11, 20]]},
		"container-title": ["Journal of Examples"],
		"volume": "12",
		"issue": "3",
		"page": "45-67",
		"subject": ["Psychology", "Neuroscience"]
	}
}`

func TestCrossrefLookup(t *testing.T) {
	ts := jsonServer(t, http.StatusOK, sampleCrossrefJSON)
	defer ts.Close()

	src := NewCrossref(WithBaseURL(ts.URL), WithHTTPClient(ts.Client()))
	rec, err := src.Lookup(context.Background(), "10.1000/xyz123")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	if rec.Title != "Example Study" {
		t.Errorf("Title = %q", rec.Title)
	}
	if want := []string{"Smith", "Jones"}; !reflect.DeepEqual(rec.Authors, want) {
		t.Errorf("Authors = %v, want %v", rec.Authors, want)
	}
	if rec.Year != "2021" {
		t.Errorf("Year = %q, want print date to win", rec.Year)
	}
	if rec.Journal != "Journal of Examples" {
		t.Errorf("Journal = %q", rec.Journal)
	}
	if rec.Volume != "12" || rec.Issue != "3" || rec.Pages != "45-67" {
		t.Errorf("Volume/Issue/Pages = %q/%q/%q", rec.Volume, rec.Issue, rec.Pages)
	}
	if rec.Subject != "Psychology" {
		t.Errorf("Subject = %q", rec.Subject)
	}
	if !rec.Sufficient() {
		t.Error("record should be sufficient")
	}
}

func TestCrossrefLookup_YearFallsBackToCreated(t *testing.T) {
	const body = `{
		"message": {
			"title": ["Preprint Only"],
			"author": [{"family": "Okafor"}],
			"created": {"date-parts": [[2019, 5, 2]]}
		}
	}`
	ts := jsonServer(t, http.StatusOK, body)
	defer ts.Close()

	src := NewCrossref(WithBaseURL(ts.URL), WithHTTPClient(ts.Client()))
	rec, err := src.Lookup(context.Background(), "10.1234/preprint")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if rec.Year != "2019" {
		t.Errorf("Year = %q, want created-date fallback", rec.Year)
	}
}
