// Package organize performs the destructive stage of the pipeline: building
// a citation-derived filename, reserving a collision-free destination,
// backing up, moving, and fanning out categorization copies.
package organize

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

const (
	// MaxTitleChars caps the title segment of a built filename.
	MaxTitleChars = 25

	// MaxNameLen caps a whole filename; when trimming, the extension is
	// preserved and the stem shrinks.
	MaxNameLen = 240

	// maxCollisionSuffix bounds the collision retry loop.
	maxCollisionSuffix = 10000
)

// invalidChars maps filesystem-hostile characters to underscores.
var invalidChars = strings.NewReplacer(
	"<", "_", ">", "_", ":", "_", `"`, "_", "/", "_",
	`\`, "_", "|", "_", "?", "_", "*", "_",
)

// Sanitize makes a string safe to use as a filename: hostile characters
// become underscores, whitespace runs collapse to single spaces, and the
// overall length cap is applied with the extension preserved.
func Sanitize(name string) string {
	name = invalidChars.Replace(name)
	name = strings.Join(strings.Fields(name), " ")

	if len(name) > MaxNameLen {
		ext := filepath.Ext(name)
		stem := []rune(strings.TrimSuffix(name, ext))
		keep := MaxNameLen - 4 - len(ext)
		if keep < 0 {
			keep = 0
		}
		if keep < len(stem) {
			stem = stem[:keep]
		}
		name = string(stem) + ext
	}
	return name
}

// BuildFilename returns "<citation> - <title><ext>" with the title segment
// sanitized and capped at MaxTitleChars, and the whole name sanitized.
func BuildFilename(citation, title, ext string) string {
	title = Sanitize(title)
	if runes := []rune(title); len(runes) > MaxTitleChars {
		title = strings.TrimSpace(string(runes[:MaxTitleChars]))
	}

	name := citation + ext
	if title != "" {
		name = citation + " - " + title + ext
	}
	return Sanitize(name)
}

// Place moves src into dir under filename, resolving collisions by
// appending _1, _2, … to the stem. The destination name is reserved
// atomically before the move, so concurrent workers can never claim the
// same name. Returns the final path. A failed move releases the
// reservation and leaves src untouched.
func Place(src, dir, filename string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}

	dest, err := reserve(dir, filename)
	if err != nil {
		return "", err
	}

	if err := move(src, dest); err != nil {
		os.Remove(dest)
		return "", err
	}
	return dest, nil
}

// reserve claims a free name in dir with O_CREATE|O_EXCL, never
// check-then-act. The zero-byte placeholder is replaced by the moved file.
func reserve(dir, filename string) (string, error) {
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)

	for i := 0; i <= maxCollisionSuffix; i++ {
		name := filename
		if i > 0 {
			name = fmt.Sprintf("%s_%d%s", stem, i, ext)
		}
		path := filepath.Join(dir, name)

		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			f.Close()
			return path, nil
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("reserving %s: %w", path, err)
		}
	}
	return "", fmt.Errorf("no free name for %s in %s", filename, dir)
}

// move renames src onto dest, falling back to copy+remove across
// filesystems. dest may exist (the reservation placeholder) and is
// replaced.
func move(src, dest string) error {
	err := os.Rename(src, dest)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("moving %s: %w", src, err)
	}

	if err := copyFile(src, dest); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("removing %s after copy: %w", src, err)
	}
	return nil
}

// copyFile copies src to dest and syncs the result. An existing dest is
// truncated.
func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying to %s: %w", dest, err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return fmt.Errorf("syncing %s: %w", dest, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", dest, err)
	}
	return nil
}
