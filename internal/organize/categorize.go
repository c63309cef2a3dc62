package organize

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/litsort/litsort/internal/record"
)

// Categorization dimensions.
const (
	DimJournal = "journal"
	DimAuthor  = "author"
	DimYear    = "year"
	DimSubject = "subject"
)

// CategorizeDir is the root folder categorization copies live under.
const CategorizeDir = "Categorized Article"

// CategoryCopy records one categorization copy that was written.
type CategoryCopy struct {
	Dimension string `json:"dimension"`
	Value     string `json:"value"`
	Path      string `json:"path"`
}

// DimensionValues extracts the categorizable values of a record. Missing
// fields yield empty strings; Categorize skips those.
func DimensionValues(rec *record.Record) map[string]string {
	vals := map[string]string{
		DimJournal: "",
		DimAuthor:  "",
		DimYear:    "",
		DimSubject: "",
	}
	if rec == nil {
		return vals
	}
	vals[DimJournal] = rec.Journal
	if len(rec.Authors) > 0 {
		vals[DimAuthor] = record.Surname(rec.Authors[0])
	}
	vals[DimYear] = rec.Year
	vals[DimSubject] = rec.Subject
	return vals
}

// Categorize copies the placed file into one folder per requested
// dimension, under rootDir/"Categorized Article"/by_<dim>/<value>/.
// Dimensions with empty values are skipped, and a failure in one
// dimension does not stop the others.
func Categorize(finalPath, rootDir string, dims []string, values map[string]string) ([]CategoryCopy, error) {
	var copies []CategoryCopy
	var errs []error

	filename := filepath.Base(finalPath)
	for _, dim := range dims {
		value := values[dim]
		if value == "" {
			continue
		}

		dir := filepath.Join(rootDir, CategorizeDir, "by_"+dim, Sanitize(value))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			errs = append(errs, fmt.Errorf("categorizing by %s: %w", dim, err))
			continue
		}
		dest := filepath.Join(dir, filename)
		if err := copyFile(finalPath, dest); err != nil {
			errs = append(errs, fmt.Errorf("categorizing by %s: %w", dim, err))
			continue
		}
		copies = append(copies, CategoryCopy{Dimension: dim, Value: value, Path: dest})
	}
	return copies, errors.Join(errs...)
}
