// Package output persists resolver results: playable URL lists and the raw
// extracted decode script. Writes are atomic (temp+rename) to prevent
// partially written artifacts.
package output

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/reddevil212/yt-decrypt/internal/formats"
)

// SaveURLs writes one playable URL per line. Entries that failed to
// resolve are skipped; the caller reports them separately.
func SaveURLs(path string, resolved []formats.Resolved) error {
	return writeAtomic(path, func(w *bufio.Writer) error {
		for _, r := range resolved {
			if r.Err != nil || r.URL == "" {
				continue
			}
			if _, err := w.WriteString(r.URL + "\n"); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveScript writes the raw extracted decode script for offline
// inspection.
func SaveScript(path, script string) error {
	return writeAtomic(path, func(w *bufio.Writer) error {
		_, err := w.WriteString(script)
		return err
	})
}

func writeAtomic(path string, fill func(*bufio.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	w := bufio.NewWriter(tmp)
	if err := fill(w); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing output: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("flushing output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming output file: %w", err)
	}
	return nil
}
