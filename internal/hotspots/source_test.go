package hotspots

import (
	"context"
	"fmt"
	"io/fs"
	"sync"

	radarerrors "radar/internal/errors"
)

// fakeSource serves fixed change counts and file contents.
type fakeSource struct {
	changes []FileChange
	files   map[string]string
	listErr error

	mu    sync.Mutex
	reads map[string]int
}

func (f *fakeSource) TopChangedFiles(ctx context.Context, limit int) ([]FileChange, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := append([]FileChange(nil), f.changes...)
	return RankChanges(out, limit), nil
}

func (f *fakeSource) ReadFile(ctx context.Context, path string) ([]byte, error) {
	f.mu.Lock()
	if f.reads == nil {
		f.reads = make(map[string]int)
	}
	f.reads[path]++
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, ok := f.files[path]
	if !ok {
		return nil, radarerrors.NewRadarError(
			radarerrors.SourceUnreadable,
			"file not found",
			fmt.Errorf("%w: %s", fs.ErrNotExist, path),
			nil,
		).WithPath(path)
	}
	return []byte(body), nil
}

func (f *fakeSource) readCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads[path]
}
