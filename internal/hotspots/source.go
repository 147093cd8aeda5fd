package hotspots

import (
	"context"
	"sort"
	"time"
)

// FileChange is the change frequency of one file over the source's window.
type FileChange struct {
	Path         string    `json:"path" yaml:"path"`
	Changes      int       `json:"changes" yaml:"changes"` // commits touching the file
	Additions    int       `json:"additions,omitempty" yaml:"additions,omitempty"`
	Deletions    int       `json:"deletions,omitempty" yaml:"deletions,omitempty"`
	Authors      int       `json:"authors,omitempty" yaml:"authors,omitempty"`
	LastModified time.Time `json:"lastModified,omitempty" yaml:"lastModified,omitempty"`
}

// Source yields change frequencies and file contents for one repository.
type Source interface {
	// TopChangedFiles returns at most limit files, most changed first.
	TopChangedFiles(ctx context.Context, limit int) ([]FileChange, error)
	// ReadFile returns the current content of a repository-relative path.
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// ChangeCounter accumulates per-file statistics one commit at a time.
// A file listed twice in the same commit counts once.
type ChangeCounter struct {
	files   map[string]*fileStats
	current map[string]bool
}

type fileStats struct {
	change  FileChange
	authors map[string]bool
}

// NewChangeCounter creates an empty counter.
func NewChangeCounter() *ChangeCounter {
	return &ChangeCounter{files: make(map[string]*fileStats)}
}

// StartCommit begins a new commit. Files added until the next StartCommit
// belong to it.
func (c *ChangeCounter) StartCommit() {
	c.current = make(map[string]bool)
}

// Add records that path changed in the current commit.
func (c *ChangeCounter) Add(path, author string, when time.Time, additions, deletions int) {
	if path == "" {
		return
	}
	if c.current == nil {
		c.StartCommit()
	}

	st, ok := c.files[path]
	if !ok {
		st = &fileStats{change: FileChange{Path: path}, authors: make(map[string]bool)}
		c.files[path] = st
	}
	if !c.current[path] {
		c.current[path] = true
		st.change.Changes++
	}
	st.change.Additions += additions
	st.change.Deletions += deletions
	if author != "" {
		st.authors[author] = true
	}
	if when.After(st.change.LastModified) {
		st.change.LastModified = when
	}
}

// Len returns the number of distinct files seen.
func (c *ChangeCounter) Len() int {
	return len(c.files)
}

// Top returns the limit most changed files. limit <= 0 returns all.
func (c *ChangeCounter) Top(limit int) []FileChange {
	out := make([]FileChange, 0, len(c.files))
	for _, st := range c.files {
		fc := st.change
		fc.Authors = len(st.authors)
		out = append(out, fc)
	}
	return RankChanges(out, limit)
}

// RankChanges sorts by change count descending, ties broken by path, and
// truncates to limit. limit <= 0 keeps everything.
func RankChanges(changes []FileChange, limit int) []FileChange {
	sort.Slice(changes, func(i, j int) bool {
		if changes[i].Changes != changes[j].Changes {
			return changes[i].Changes > changes[j].Changes
		}
		return changes[i].Path < changes[j].Path
	})
	if limit > 0 && len(changes) > limit {
		changes = changes[:limit]
	}
	return changes
}
