package hotspots

import (
	"context"
	"path"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
	"golang.org/x/sync/singleflight"

	"radar/internal/logging"
)

// CargoManifestFile is the manifest that marks a crate root
const CargoManifestFile = "Cargo.toml"

// cargoManifest is the part of Cargo.toml needed to name a crate.
type cargoManifest struct {
	Package struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"package"`
}

// ParseCrateName returns [package].name from a Cargo.toml. Virtual
// workspace manifests have no package and yield "".
func ParseCrateName(data []byte) (string, error) {
	var m cargoManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return "", err
	}
	return m.Package.Name, nil
}

// crateResolver attributes files to the crate of their nearest Cargo.toml,
// reading manifests through the same Source that produced the files.
type crateResolver struct {
	src    Source
	logger *logging.Logger

	group singleflight.Group
	mu    sync.Mutex
	dirs  map[string]string // directory -> crate name, "" when none
}

func newCrateResolver(src Source, logger *logging.Logger) *crateResolver {
	return &crateResolver{src: src, logger: logger, dirs: make(map[string]string)}
}

// resolve walks from the file's directory to the repository root and
// returns the first named crate found.
func (r *crateResolver) resolve(ctx context.Context, file string) string {
	dir := path.Dir(file)
	for {
		if name := r.lookup(ctx, dir); name != "" {
			return name
		}
		if dir == "." || dir == "/" || dir == "" {
			return ""
		}
		dir = path.Dir(dir)
	}
}

func (r *crateResolver) lookup(ctx context.Context, dir string) string {
	r.mu.Lock()
	name, ok := r.dirs[dir]
	r.mu.Unlock()
	if ok {
		return name
	}

	v, _, _ := r.group.Do(dir, func() (interface{}, error) {
		data, err := r.src.ReadFile(ctx, path.Join(dir, CargoManifestFile))
		if err != nil {
			// Missing manifests are the common case; keep walking.
			return "", nil
		}
		name, err := ParseCrateName(data)
		if err != nil {
			r.logger.Warn("Ignoring unparsable manifest", map[string]interface{}{
				"path":  path.Join(dir, CargoManifestFile),
				"error": err.Error(),
			})
			return "", nil
		}
		return name, nil
	})

	name = v.(string)
	if ctx.Err() == nil {
		r.mu.Lock()
		r.dirs[dir] = name
		r.mu.Unlock()
	}
	return name
}
