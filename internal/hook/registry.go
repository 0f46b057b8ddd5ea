package hook

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// ErrHookNotFound is returned when a requested hook is not registered.
var ErrHookNotFound = errors.New("hook not found")

// Registry discovers hooks in a directory and looks them up.
type Registry struct {
	dir    string
	logger zerolog.Logger

	mu    sync.RWMutex
	hooks map[string]*Hook
}

// NewRegistry creates a Registry over dir. Nothing is loaded until Discover.
func NewRegistry(dir string, logger zerolog.Logger) *Registry {
	return &Registry{
		dir:    dir,
		logger: logger.With().Str("component", "hooks").Logger(),
		hooks:  make(map[string]*Hook),
	}
}

// Discover reloads every subdirectory of the hook directory that carries a
// valid manifest. A missing directory simply yields no hooks; unreadable or
// malformed manifests are skipped with a warning.
func (r *Registry) Discover() error {
	hooks := make(map[string]*Hook)

	entries, err := os.ReadDir(r.dir)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		hookPath := filepath.Join(r.dir, entry.Name())
		data, err := os.ReadFile(filepath.Join(hookPath, ManifestFile))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			r.logger.Warn().Err(err).Str("hook", entry.Name()).Msg("read manifest")
			continue
		}

		var manifest Manifest
		if err := json.Unmarshal(data, &manifest); err != nil {
			r.logger.Warn().Err(err).Str("hook", entry.Name()).Msg("parse manifest")
			continue
		}
		if manifest.Name == "" || manifest.Executable == "" {
			r.logger.Warn().Str("hook", entry.Name()).Msg("manifest needs name and executable")
			continue
		}

		hooks[manifest.Name] = &Hook{
			Manifest:   manifest,
			Path:       hookPath,
			Executable: filepath.Join(hookPath, manifest.Executable),
		}
	}

	r.mu.Lock()
	r.hooks = hooks
	r.mu.Unlock()

	r.logger.Info().Int("count", len(hooks)).Str("dir", r.dir).Msg("hooks discovered")
	return nil
}

// Get returns the hook called name.
func (r *Registry) Get(name string) (*Hook, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.hooks[name]
	if !ok {
		return nil, ErrHookNotFound
	}
	return h, nil
}

// List returns every hook sorted by name.
func (r *Registry) List() []*Hook {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hooks := make([]*Hook, 0, len(r.hooks))
	for _, h := range r.hooks {
		hooks = append(hooks, h)
	}
	sort.Slice(hooks, func(i, j int) bool {
		return hooks[i].Manifest.Name < hooks[j].Manifest.Name
	})
	return hooks
}

// Matching returns the hooks subscribed to gesture, sorted by name.
func (r *Registry) Matching(gesture string) []*Hook {
	var out []*Hook
	for _, h := range r.List() {
		if h.Handles(gesture) {
			out = append(out, h)
		}
	}
	return out
}

// Dir returns the hook directory.
func (r *Registry) Dir() string {
	return r.dir
}
