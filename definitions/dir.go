package definitions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/gobbyhq/warden/logger"
	"github.com/gobbyhq/warden/workflow"
)

// Dir loads workflow definitions from YAML files in a directory, one
// workflow per file, resolved as "<name>.yaml" or "<name>.yml". Loaded
// definitions are cached; concurrent loads of the same name are deduplicated
// through singleflight so a burst of events for a newly governed workflow
// parses the file once.
type Dir struct {
	basePath string

	mu    sync.RWMutex
	cache map[string]workflow.Definition

	group singleflight.Group
}

// NewDir creates a directory-backed definition loader.
func NewDir(basePath string) *Dir {
	return &Dir{
		basePath: basePath,
		cache:    make(map[string]workflow.Definition),
	}
}

// Load implements Loader. Load failures (missing file, invalid document)
// are logged and reported as a miss; the engine treats the session as
// ungoverned rather than erroring.
func (d *Dir) Load(_ context.Context, name string) (workflow.Definition, bool) {
	if name == "" {
		return nil, false
	}

	d.mu.RLock()
	def, ok := d.cache[name]
	d.mu.RUnlock()
	if ok {
		return def, true
	}

	v, err, _ := d.group.Do(name, func() (any, error) {
		return d.loadFile(name)
	})
	if err != nil {
		logger.Debug("workflow definition not loadable", "name", name, "error", err)
		return nil, false
	}

	def = v.(workflow.Definition)
	d.mu.Lock()
	d.cache[name] = def
	d.mu.Unlock()
	return def, true
}

// Invalidate drops a cached definition so the next Load re-reads the file.
func (d *Dir) Invalidate(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.cache, name)
}

// Names returns the workflow names available in the directory, derived from
// the YAML file names present on disk.
func (d *Dir) Names() ([]string, error) {
	entries, err := os.ReadDir(d.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read definitions dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, entry.Name()[:len(entry.Name())-len(ext)])
		}
	}
	return names, nil
}

// loadFile resolves and decodes the definition file for a workflow name.
func (d *Dir) loadFile(name string) (workflow.Definition, error) {
	var data []byte
	var err error
	for _, candidate := range []string{name + ".yaml", name + ".yml"} {
		data, err = os.ReadFile(filepath.Join(d.basePath, candidate))
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read definition file: %w", err)
	}

	def, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if def.Name() != name {
		return nil, fmt.Errorf("%w: file %q declares workflow name %q", ErrInvalidDefinition, name, def.Name())
	}
	return def, nil
}
