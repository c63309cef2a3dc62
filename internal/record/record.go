// Package record defines the normalized bibliographic record passed between
// the resolution, validation, and routing stages.
package record

import "strings"

// Record is normalized metadata for one document.
type Record struct {
	Title   string   `json:"title"`
	Authors []string `json:"authors"`           // ordered; full names or bare surnames
	Year    string   `json:"year,omitempty"`    // 4-digit when known
	Journal string   `json:"journal,omitempty"` // journal or venue name
	Volume  string   `json:"volume,omitempty"`
	Issue   string   `json:"issue,omitempty"`
	Pages   string   `json:"pages,omitempty"`
	DOI     string   `json:"doi,omitempty"`     // normalized lowercase
	Subject string   `json:"subject,omitempty"` // primary subject/field when known
	Source  string   `json:"source,omitempty"`  // resolver that produced the record
}

// Sufficient reports whether the record meets the minimum-field bar for
// renaming: non-empty title, at least one author, and a 4-digit year.
// Callers discard insufficient records and move on; they are never surfaced.
func (r *Record) Sufficient() bool {
	if r == nil {
		return false
	}
	if strings.TrimSpace(r.Title) == "" {
		return false
	}
	if len(r.Authors) == 0 {
		return false
	}
	return ValidYear(r.Year)
}

// ValidYear reports whether s is a parseable 4-digit year.
func ValidYear(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 4 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Surname extracts the surname from an author string: the token before the
// first comma, or the whole string when there is no comma.
func Surname(author string) string {
	author = strings.TrimSpace(author)
	if i := strings.Index(author, ","); i >= 0 {
		return strings.TrimSpace(author[:i])
	}
	return author
}
