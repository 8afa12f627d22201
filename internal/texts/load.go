package texts

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/verte-zerg/tiertype/internal/model"
)

// LoadTexts reads one text per line from the provided file path. Blank lines
// and lines that cannot be typed verbatim are skipped.
func LoadTexts(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only text file.
			_ = cerr
		}
	}()

	var out []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !Typeable(line) {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("text file %s is empty", path)
	}
	return out, nil
}

// LoadDir overlays <tier>.txt files found in dir onto the bundled catalog.
// A missing directory or file keeps the bundled texts for that tier.
func LoadDir(dir string) (Catalog, error) {
	c := Builtin()
	if dir == "" {
		return c, nil
	}
	for _, d := range model.Difficulties {
		path := filepath.Join(dir, d.String()+".txt")
		list, err := LoadTexts(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to load %s texts: %w", d, err)
		}
		c[d] = list
	}
	return c, nil
}

// Typeable reports whether text is non-empty and free of control characters,
// which cannot be entered from a single-line input.
func Typeable(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}
