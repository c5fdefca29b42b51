package upload

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/spigell/pathfinder/internal/jobsearch"
)

const (
	Extension = ".pdf"
	// MaxSize is the largest resume we are willing to send.
	MaxSize = 10 << 20
)

// Open reads a resume from disk and detects its content type.
func Open(path string) (*jobsearch.Document, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if stat.Size() > MaxSize {
		return nil, fmt.Errorf("%s is too large: %d bytes", path, stat.Size())
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return &jobsearch.Document{
		Name:    filepath.Base(path),
		Content: content,
		Mime:    mimetype.Detect(content).String(),
	}, nil
}

// First returns the first of the provided paths. The rest are ignored.
func First(paths []string) (string, bool) {
	for _, path := range paths {
		if path = strings.Trim(strings.TrimSpace(path), `"'`); path != "" {
			return path, true
		}
	}
	return "", false
}

func hasExtension(path string) bool {
	return strings.EqualFold(filepath.Ext(path), Extension)
}
