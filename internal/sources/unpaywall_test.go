package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

const sampleUnpaywallJSON = `{
	"title": "Open Access Publishing Trends",
	"year": 2023,
	"journal_name": "Scientometrics",
	"journal_volume": "128",
	"journal_issue": "6",
	"z_authors": [
		{"family": "Novak", "given": "Petra"},
		{"family": "Silva", "given": "Rui"}
	]
}`

func TestUnpaywallLookup(t *testing.T) {
	var gotEmail, gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotEmail = r.URL.Query().Get("email")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleUnpaywallJSON)
	}))
	defer ts.Close()

	src := NewUnpaywall(WithBaseURL(ts.URL), WithHTTPClient(ts.Client()), WithEmail("lib@example.org"))
	rec, err := src.Lookup(context.Background(), "10.1007/s11192-023-04700-x")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	if gotPath != "/v2/10.1007/s11192-023-04700-x" {
		t.Errorf("request path = %q", gotPath)
	}
	if gotEmail != "lib@example.org" {
		t.Errorf("email param = %q", gotEmail)
	}
	if rec.Title != "Open Access Publishing Trends" {
		t.Errorf("Title = %q", rec.Title)
	}
	if want := []string{"Novak", "Silva"}; !reflect.DeepEqual(rec.Authors, want) {
		t.Errorf("Authors = %v, want z_authors families %v", rec.Authors, want)
	}
	if rec.Year != "2023" || rec.Journal != "Scientometrics" {
		t.Errorf("Year/Journal = %q/%q", rec.Year, rec.Journal)
	}
	if rec.Volume != "128" || rec.Issue != "6" {
		t.Errorf("Volume/Issue = %q/%q", rec.Volume, rec.Issue)
	}
}

func TestUnpaywallLookup_MissingEmail(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer ts.Close()

	src := NewUnpaywall(WithBaseURL(ts.URL), WithHTTPClient(ts.Client()))
	if _, err := src.Lookup(context.Background(), "10.1234/alpha"); !IsAuthError(err) {
		t.Errorf("Lookup() error = %v, want auth error", err)
	}
	if calls != 0 {
		t.Errorf("server called %d times without an email, want 0", calls)
	}
}
