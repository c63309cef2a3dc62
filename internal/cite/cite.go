// Package cite renders APA7-shaped citations and references from
// bibliographic records, with defined fallbacks for missing fields.
package cite

import (
	"strings"

	"github.com/litsort/litsort/internal/record"
)

const (
	// maxFullAuthorList is the largest author count listed in full;
	// beyond it the list is truncated with an ellipsis.
	maxFullAuthorList = 7

	// leadAuthorsWhenTruncated is how many leading authors a truncated
	// list keeps before the ellipsis and the final author.
	leadAuthorsWhenTruncated = 6
)

// Short returns the in-text citation "(Surname, Year)". A missing author
// becomes "Unknown", a missing year "n.d.".
func Short(rec *record.Record) string {
	author := "Unknown"
	year := "n.d."
	if rec != nil {
		if len(rec.Authors) > 0 {
			if s := record.Surname(rec.Authors[0]); s != "" {
				author = s
			}
		}
		year = yearOrND(rec.Year)
	}
	return "(" + author + ", " + year + ")"
}

// Reference returns the full reference string:
//
//	Authors (Year). Title. Journal, Volume(Issue), Pages. https://doi.org/DOI
//
// Each segment after the title appears only when its field is set, and the
// punctuation stays well formed for every subset.
func Reference(rec *record.Record) string {
	if rec == nil {
		return "Unknown. (n.d.). Unknown title."
	}

	title := strings.TrimSpace(rec.Title)
	if title == "" {
		title = "Unknown title"
	}

	var b strings.Builder
	b.WriteString(formatAuthors(rec.Authors))
	b.WriteString(" (" + yearOrND(rec.Year) + "). ")
	b.WriteString(title + ".")

	if rec.Journal != "" {
		b.WriteString(" " + rec.Journal)
		if rec.Volume != "" {
			b.WriteString(", " + rec.Volume)
			if rec.Issue != "" {
				b.WriteString("(" + rec.Issue + ")")
			}
		}
		if rec.Pages != "" {
			b.WriteString(", " + rec.Pages)
		}
	}

	if rec.DOI != "" {
		if strings.HasSuffix(b.String(), ".") {
			b.WriteString(" https://doi.org/" + rec.DOI)
		} else {
			b.WriteString(". https://doi.org/" + rec.DOI)
		}
	}

	return b.String()
}

func yearOrND(year string) string {
	if year == "" || year == "0000" {
		return "n.d."
	}
	return year
}

// formatAuthors renders an author list per APA7: a single author verbatim,
// two to seven all listed with an ampersand before the last, eight or more
// truncated to the first six, an ellipsis, and the final author.
func formatAuthors(authors []string) string {
	formatted := make([]string, 0, len(authors))
	for _, a := range authors {
		if f := formatAuthor(a); f != "" {
			formatted = append(formatted, f)
		}
	}

	switch {
	case len(formatted) == 0:
		return "Unknown"
	case len(formatted) == 1:
		return formatted[0]
	case len(formatted) <= maxFullAuthorList:
		return strings.Join(formatted[:len(formatted)-1], ", ") + ", & " + formatted[len(formatted)-1]
	}

	head := make([]string, 0, leadAuthorsWhenTruncated+2)
	head = append(head, formatted[:leadAuthorsWhenTruncated]...)
	head = append(head, "...", formatted[len(formatted)-1])
	return strings.Join(head, ", ")
}

// formatAuthor renders one name as "Last, F.I.". Both "Last, First" and
// "First Last" inputs are handled; a bare surname stays as-is.
func formatAuthor(author string) string {
	author = strings.TrimSpace(author)

	if last, given, ok := strings.Cut(author, ","); ok {
		last = strings.TrimSpace(last)
		if initials := initialsOf(given); initials != "" {
			return last + ", " + initials
		}
		return last
	}

	parts := strings.Fields(author)
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	return parts[len(parts)-1] + ", " + initialsOf(strings.Join(parts[:len(parts)-1], " "))
}

func initialsOf(names string) string {
	var b strings.Builder
	for _, name := range strings.Fields(names) {
		b.WriteString(strings.ToUpper(string([]rune(name)[0])) + ".")
	}
	return b.String()
}
