package organize

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"
)

// Backup copies src into backupDir under its base name and verifies the
// copy by digest comparison before returning. A copy that does not match
// the original is removed and reported as an error, so the caller never
// proceeds to move a file whose backup is corrupt.
func Backup(src, backupDir string) (string, error) {
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", backupDir, err)
	}

	dest := filepath.Join(backupDir, filepath.Base(src))
	if err := copyFile(src, dest); err != nil {
		return "", err
	}

	want, err := fileDigest(src)
	if err != nil {
		return "", err
	}
	got, err := fileDigest(dest)
	if err != nil {
		return "", err
	}
	if !bytes.Equal(want, got) {
		os.Remove(dest)
		return "", fmt.Errorf("backup of %s does not match original", src)
	}
	return dest, nil
}

func fileDigest(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("hashing %s: %w", path, err)
	}
	return h.Sum(nil), nil
}
