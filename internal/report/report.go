// Package report persists batch outcomes as a JSONL ledger and answers
// queries over it through an ephemeral SQLite database.
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/litsort/litsort/internal/organize"
	"github.com/litsort/litsort/internal/pipeline"
)

// LedgerName is the ledger file written into the processed directory.
const LedgerName = "litsort-report.jsonl"

// MaxLineCapacity is the maximum buffer size for reading ledger lines.
const MaxLineCapacity = 1024 * 1024

// Row is one document's terminal outcome in the ledger.
type Row struct {
	File      string `json:"file"`
	FinalPath string `json:"final_path,omitempty"`
	Method    string `json:"method"`
	Tier      string `json:"tier"`
	ErrorTag  string `json:"error_tag,omitempty"`
	Citation  string `json:"citation,omitempty"`
	Reference string `json:"reference,omitempty"`
	Journal   string `json:"journal,omitempty"`
	Author    string `json:"author,omitempty"`
	Year      string `json:"year,omitempty"`
	Subject   string `json:"subject,omitempty"`
	DOI       string `json:"doi,omitempty"`
	Source    string `json:"source,omitempty"`
}

// Succeeded mirrors the pipeline's notion of a renamed document.
func (r Row) Succeeded() bool {
	return r.Method != pipeline.MethodFailed && r.ErrorTag != pipeline.TagFilesystemError
}

// RowFromTask flattens a terminal task into a ledger row.
func RowFromTask(t *pipeline.Task) Row {
	row := Row{
		File:      filepath.Base(t.Path),
		FinalPath: t.FinalPath,
		Method:    t.Method,
		Tier:      t.Tier,
		ErrorTag:  t.ErrorTag,
		Citation:  t.Citation,
		Reference: t.Reference,
		DOI:       t.DOI,
		Source:    t.Source,
	}
	if t.Record != nil {
		vals := organize.DimensionValues(t.Record)
		row.Journal = vals[organize.DimJournal]
		row.Author = vals[organize.DimAuthor]
		row.Year = vals[organize.DimYear]
		row.Subject = vals[organize.DimSubject]
		if row.DOI == "" {
			row.DOI = t.Record.DOI
		}
	}
	return row
}

// ReadLedger reads all rows from a ledger file. A missing file is an
// empty ledger, not an error.
func ReadLedger(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	var rows []Row
	scanner := bufio.NewScanner(f)
	buf := make([]byte, MaxLineCapacity)
	scanner.Buffer(buf, MaxLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var row Row
		if err := json.Unmarshal(line, &row); err != nil {
			return nil, fmt.Errorf("parsing ledger line %d: %w", lineNum, err)
		}
		rows = append(rows, row)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}

	return rows, nil
}

// WriteLedger replaces the ledger at path with the given rows. The write
// goes through a temp file and a rename, so readers never observe a
// partial ledger.
func WriteLedger(path string, rows []Row) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".litsort-report-*.jsonl")
	if err != nil {
		return fmt.Errorf("creating ledger temp file: %w", err)
	}
	tmp := f.Name()

	if err := writeRows(f, rows); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing ledger temp file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing ledger: %w", err)
	}
	return nil
}

func writeRows(f *os.File, rows []Row) error {
	for i, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("encoding row %d: %w", i, err)
		}
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
		if _, err := f.WriteString("\n"); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	return nil
}
