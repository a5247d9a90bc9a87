package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// History is the shell's statement history, one statement per line.
// Consecutive duplicates are stored once. At most limit entries are kept in
// memory, and Load trims the file to the same size (no cap when limit <= 0).
type History struct {
	fs    afero.Fs
	path  string
	limit int
	lines []string
}

func NewHistory(fs afero.Fs, path string, limit int) *History {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &History{fs: fs, path: path, limit: limit}
}

// Load replaces the in-memory entries with the file's. A file holding more
// than limit entries is rewritten with only the newest ones.
func (h *History) Load() error {
	h.lines = nil
	if h.path == "" {
		return nil
	}
	data, err := afero.ReadFile(h.fs, h.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, line := range strings.Split(string(data), "\n") {
		h.add(compactOneLine(line))
	}
	if h.limit > 0 && len(h.lines) > h.limit {
		h.lines = h.lines[len(h.lines)-h.limit:]
		return afero.WriteFile(h.fs, h.path, []byte(strings.Join(h.lines, "\n")+"\n"), 0o644)
	}
	return nil
}

// add reports whether stmt became a new entry.
func (h *History) add(stmt string) bool {
	if stmt == "" {
		return false
	}
	if n := len(h.lines); n > 0 && h.lines[n-1] == stmt {
		return false
	}
	h.lines = append(h.lines, stmt)
	return true
}

func (h *History) Lines() []string {
	return h.lines
}

// Append stores stmt collapsed onto one line.
func (h *History) Append(stmt string) error {
	if !h.add(compactOneLine(stmt)) {
		return nil
	}
	if h.limit > 0 && len(h.lines) > h.limit {
		h.lines = h.lines[1:]
	}
	if h.path == "" {
		return nil
	}

	if err := h.fs.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return err
	}
	f, err := h.fs.OpenFile(h.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, err = fmt.Fprintln(f, h.lines[len(h.lines)-1])
	return err
}

// Print writes the last n entries, numbered.
func (h *History) Print(w io.Writer, n int) {
	if n <= 0 || n > len(h.lines) {
		n = len(h.lines)
	}
	for i := len(h.lines) - n; i < len(h.lines); i++ {
		fmt.Fprintf(w, "%5d  %s\n", i+1, h.lines[i])
	}
}

// compactOneLine collapses every run of whitespace into one space.
func compactOneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".fallbackdb_history"
	}
	return filepath.Join(home, ".fallbackdb_history")
}
