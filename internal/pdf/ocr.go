package pdf

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Tesseract recognizes text on scanned pages by shelling out to pdftoppm
// and tesseract.
type Tesseract struct {
	DPI int // rasterization resolution; zero means 300
}

// Available reports whether the external binaries are on PATH.
func (t *Tesseract) Available() bool {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return false
	}
	_, err := exec.LookPath("tesseract")
	return err == nil
}

// Text rasterizes the first maxPages pages of the document and runs
// character recognition over each image. Pages that fail recognition are
// skipped.
func (t *Tesseract) Text(path string, maxPages int) (string, error) {
	tmp, err := os.MkdirTemp("", "litsort-ocr-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmp)

	dpi := t.DPI
	if dpi == 0 {
		dpi = 300
	}

	prefix := filepath.Join(tmp, "page")
	cmd := exec.Command("pdftoppm", "-png", "-r", strconv.Itoa(dpi),
		"-f", "1", "-l", strconv.Itoa(maxPages), path, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("pdftoppm: %v: %s", err, strings.TrimSpace(string(out)))
	}

	// Glob returns lexically sorted names; page numbers stay in order for
	// the single-digit range used here.
	images, err := filepath.Glob(prefix + "*.png")
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for _, img := range images {
		out, err := exec.Command("tesseract", img, "stdout").Output()
		if err != nil {
			continue
		}
		builder.Write(out)
		builder.WriteString("\n")
	}

	return builder.String(), nil
}
