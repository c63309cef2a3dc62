package report

import (
	"database/sql"
	"fmt"

	"github.com/litsort/litsort/internal/pipeline"
	_ "modernc.org/sqlite"
)

// DB wraps an ephemeral SQLite database holding loaded ledger rows.
type DB struct {
	db *sql.DB
}

const selectRowFields = `file, final_path, method, tier, error_tag,
	citation, reference, journal, author, year, subject, doi, source`

// OpenMemory opens an in-memory database with the outcome schema. The
// database lives only as long as the process; the ledger stays the
// source of truth.
func OpenMemory() (*DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS outcomes (
			file TEXT NOT NULL,
			final_path TEXT,
			method TEXT NOT NULL,
			tier TEXT NOT NULL,
			error_tag TEXT,
			citation TEXT,
			reference TEXT,
			journal TEXT,
			author TEXT,
			year TEXT,
			subject TEXT,
			doi TEXT,
			source TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_outcomes_method ON outcomes(method);
		CREATE INDEX IF NOT EXISTS idx_outcomes_tier ON outcomes(tier);
	`
	_, err := db.Exec(schema)
	return err
}

// Load clears the database and inserts the given rows. Returns the
// number of rows loaded.
func (d *DB) Load(rows []Row) (int, error) {
	if _, err := d.db.Exec("DELETE FROM outcomes"); err != nil {
		return 0, fmt.Errorf("clearing outcomes table: %w", err)
	}

	stmt, err := d.db.Prepare(`
		INSERT INTO outcomes (` + selectRowFields + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err := stmt.Exec(
			row.File, row.FinalPath, row.Method, row.Tier, row.ErrorTag,
			row.Citation, row.Reference, row.Journal, row.Author,
			row.Year, row.Subject, row.DOI, row.Source,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting outcome for %s: %w", row.File, err)
		}
	}

	return len(rows), nil
}

// LoadLedger reads the ledger at path and loads it.
func (d *DB) LoadLedger(path string) (int, error) {
	rows, err := ReadLedger(path)
	if err != nil {
		return 0, err
	}
	return d.Load(rows)
}

// SummaryReport aggregates the ledger by outcome.
type SummaryReport struct {
	Total       int            `json:"total"`
	Renamed     int            `json:"renamed"`
	Problematic int            `json:"problematic"`
	ByMethod    map[string]int `json:"by_method,omitempty"`
	ByTier      map[string]int `json:"by_tier,omitempty"`
	ByTag       map[string]int `json:"by_tag,omitempty"`
}

// problematicWhere matches rows that did not end renamed.
const problematicWhere = `(method = '` + pipeline.MethodFailed +
	`' OR COALESCE(error_tag, '') = '` + pipeline.TagFilesystemError + `')`

// Summary returns outcome counts grouped by method, tier, and error tag.
func (d *DB) Summary() (*SummaryReport, error) {
	sum := &SummaryReport{}

	err := d.db.QueryRow(`
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE NOT ` + problematicWhere + `)
		FROM outcomes
	`).Scan(&sum.Total, &sum.Renamed)
	if err != nil {
		return nil, fmt.Errorf("counting outcomes: %w", err)
	}
	sum.Problematic = sum.Total - sum.Renamed

	for _, c := range []struct {
		column string
		dest   *map[string]int
	}{
		{"method", &sum.ByMethod},
		{"tier", &sum.ByTier},
		{"error_tag", &sum.ByTag},
	} {
		counts, err := d.countBy(c.column)
		if err != nil {
			return nil, err
		}
		*c.dest = counts
	}

	return sum, nil
}

func (d *DB) countBy(column string) (map[string]int, error) {
	rows, err := d.db.Query(`
		SELECT ` + column + `, COUNT(*)
		FROM outcomes
		WHERE COALESCE(` + column + `, '') != ''
		GROUP BY ` + column + `
	`)
	if err != nil {
		return nil, fmt.Errorf("grouping by %s: %w", column, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		counts[key] = n
	}
	return counts, rows.Err()
}

// Failure is one problematic document.
type Failure struct {
	File     string `json:"file"`
	Method   string `json:"method"`
	Tier     string `json:"tier"`
	ErrorTag string `json:"error_tag,omitempty"`
}

// Failures lists problematic documents, ordered by filename.
func (d *DB) Failures() ([]Failure, error) {
	rows, err := d.db.Query(`
		SELECT file, method, tier, COALESCE(error_tag, '')
		FROM outcomes
		WHERE ` + problematicWhere + `
		ORDER BY file
	`)
	if err != nil {
		return nil, fmt.Errorf("listing failures: %w", err)
	}
	defer rows.Close()

	var failures []Failure
	for rows.Next() {
		var f Failure
		if err := rows.Scan(&f.File, &f.Method, &f.Tier, &f.ErrorTag); err != nil {
			return nil, err
		}
		failures = append(failures, f)
	}
	return failures, rows.Err()
}

// BibGroup is the bibliography of one dimension value.
type BibGroup struct {
	Value      string   `json:"value"`
	References []string `json:"references"`
}

// bibColumns maps a categorization dimension to its ledger column.
var bibColumns = map[string]string{
	"journal": "journal",
	"author":  "author",
	"year":    "year",
	"subject": "subject",
}

// BibliographyBy returns the reference strings of renamed documents,
// grouped by one categorization dimension. Documents missing the
// dimension value group under the empty value.
func (d *DB) BibliographyBy(dimension string) ([]BibGroup, error) {
	column, ok := bibColumns[dimension]
	if !ok {
		return nil, fmt.Errorf("unknown dimension %q", dimension)
	}

	rows, err := d.db.Query(`
		SELECT COALESCE(` + column + `, ''), reference
		FROM outcomes
		WHERE COALESCE(reference, '') != '' AND NOT ` + problematicWhere + `
		ORDER BY ` + column + `, reference
	`)
	if err != nil {
		return nil, fmt.Errorf("grouping bibliography by %s: %w", dimension, err)
	}
	defer rows.Close()

	var groups []BibGroup
	for rows.Next() {
		var value, ref string
		if err := rows.Scan(&value, &ref); err != nil {
			return nil, err
		}
		if len(groups) == 0 || groups[len(groups)-1].Value != value {
			groups = append(groups, BibGroup{Value: value})
		}
		last := &groups[len(groups)-1]
		last.References = append(last.References, ref)
	}
	return groups, rows.Err()
}
