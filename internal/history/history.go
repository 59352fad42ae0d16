// Package history records which worktrees were opened and when.
//
// Entries live in <data_dir>/history.json, apart from the discovery cache, so
// clearing or invalidating the cache never discards ranking data. Ranking is
// frecency based: access count weighted by how recently the last access was.
package history

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/raphi011/wtp/internal/storage"
)

const (
	fileName   = "history.json"
	maxEntries = 500
)

// Entry is one accessed worktree.
type Entry struct {
	Path        string    `json:"path"`
	Project     string    `json:"project"`
	Branch      string    `json:"branch,omitempty"`
	AccessCount int       `json:"access_count"`
	LastAccess  time.Time `json:"last_access"`
}

// History stores accessed worktrees, most recent first.
type History struct {
	Entries []Entry `json:"entries"`
}

// Path returns the history file inside dataDir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, fileName)
}

// Load reads the history from file. A missing file yields an empty history.
func Load(file string) (*History, error) {
	var h History
	if err := storage.LoadJSON(file, &h); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &History{}, nil
		}
		return nil, err
	}
	return &h, nil
}

// Save writes the history to file atomically.
func (h *History) Save(file string) error {
	return storage.SaveJSON(file, h)
}

// RecordAccess bumps the entry for path, creating it if needed. When the
// history is full the least recently accessed entry is evicted.
func RecordAccess(path, project, branch, file string) error {
	h, err := Load(file)
	if err != nil {
		return err
	}
	h.record(path, project, branch, time.Now())
	return h.Save(file)
}

func (h *History) record(path, project, branch string, now time.Time) {
	if e := h.FindByPath(path); e != nil {
		e.AccessCount++
		e.LastAccess = now
		e.Project = project
		e.Branch = branch
	} else {
		h.Entries = append(h.Entries, Entry{
			Path:        path,
			Project:     project,
			Branch:      branch,
			AccessCount: 1,
			LastAccess:  now,
		})
	}

	slices.SortStableFunc(h.Entries, func(a, b Entry) int {
		return b.LastAccess.Compare(a.LastAccess)
	})
	if len(h.Entries) > maxEntries {
		h.Entries = h.Entries[:maxEntries]
	}
}

// GetMostRecent returns the most recently accessed worktree path.
// Returns empty string if no history exists.
func GetMostRecent(file string) (string, error) {
	h, err := Load(file)
	if err != nil {
		return "", err
	}
	var best *Entry
	for i := range h.Entries {
		if best == nil || h.Entries[i].LastAccess.After(best.LastAccess) {
			best = &h.Entries[i]
		}
	}
	if best == nil {
		return "", nil
	}
	return best.Path, nil
}

// FindByPath returns the entry for path, or nil.
func (h *History) FindByPath(path string) *Entry {
	for i := range h.Entries {
		if h.Entries[i].Path == path {
			return &h.Entries[i]
		}
	}
	return nil
}

// RemoveByPath deletes the entry for path and reports whether it existed.
func (h *History) RemoveByPath(path string) bool {
	n := len(h.Entries)
	h.Entries = slices.DeleteFunc(h.Entries, func(e Entry) bool { return e.Path == path })
	return len(h.Entries) != n
}

// RemoveStale drops entries whose path no longer exists and returns how many.
func (h *History) RemoveStale() int {
	n := len(h.Entries)
	h.Entries = slices.DeleteFunc(h.Entries, func(e Entry) bool {
		_, err := os.Stat(e.Path)
		return errors.Is(err, fs.ErrNotExist)
	})
	return n - len(h.Entries)
}

// Score returns the frecency of e at now.
func (e Entry) Score(now time.Time) float64 {
	age := now.Sub(e.LastAccess)
	var weight float64
	switch {
	case age < time.Hour:
		weight = 4
	case age < 24*time.Hour:
		weight = 2
	case age < 7*24*time.Hour:
		weight = 0.5
	default:
		weight = 0.25
	}
	return float64(e.AccessCount) * weight
}

// Scores returns the frecency of every entry keyed by path.
func (h *History) Scores(now time.Time) map[string]float64 {
	scores := make(map[string]float64, len(h.Entries))
	for _, e := range h.Entries {
		scores[e.Path] = e.Score(now)
	}
	return scores
}

// ProjectScores sums entry frecency per project path prefix.
// A worktree counts toward every project whose directory contains it.
func (h *History) ProjectScores(projectPaths []string, now time.Time) map[string]float64 {
	scores := make(map[string]float64, len(projectPaths))
	for _, e := range h.Entries {
		for _, p := range projectPaths {
			if e.Path == p || hasDirPrefix(e.Path, p) {
				scores[p] += e.Score(now)
			}
		}
	}
	return scores
}

func hasDirPrefix(path, dir string) bool {
	return strings.HasPrefix(path, strings.TrimSuffix(dir, string(filepath.Separator))+string(filepath.Separator))
}
