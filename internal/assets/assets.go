// Package assets handles game asset loading and caching.
package assets

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/tlj-engine/internal/engine/model"
	"github.com/Faultbox/tlj-engine/pkg/encoding"
	"github.com/Faultbox/tlj-engine/pkg/xarc"
)

// ModelExt is the file extension of skeletal model assets.
const ModelExt = ".cir"

// ErrNotFound is returned when no archive or directory holds an asset.
var ErrNotFound = errors.New("asset not found")

type archive struct {
	path string
	*xarc.Archive
}

// Manager handles asset loading from XARC archives and loose directories.
type Manager struct {
	log      *zap.Logger
	archives []archive
	dirs     []string
	cache    *Cache
	models   map[string]*model.Model
	mu       sync.RWMutex
}

// NewManager creates a new asset manager. A nil logger discards output.
func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		log:    log,
		cache:  NewCache(),
		models: make(map[string]*model.Model),
	}
}

// AddArchive adds an XARC archive to the manager.
// Archives are searched in reverse order (last added = highest priority).
func (m *Manager) AddArchive(path string) error {
	a, err := xarc.Open(path)
	if err != nil {
		return errors.Wrapf(err, "opening archive %s", path)
	}

	m.mu.Lock()
	m.archives = append(m.archives, archive{path: path, Archive: a})
	m.mu.Unlock()

	m.log.Info("archive added", zap.String("path", path), zap.Int("members", len(a.Entries())))
	return nil
}

// AddDir adds a directory of loose assets. Directories are searched after
// every archive, in the order they were added.
func (m *Manager) AddDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return errors.Wrapf(err, "adding asset dir %s", dir)
	}
	if !info.IsDir() {
		return errors.Errorf("%s is not a directory", dir)
	}

	m.mu.Lock()
	m.dirs = append(m.dirs, dir)
	m.mu.Unlock()

	m.log.Info("asset dir added", zap.String("path", dir))
	return nil
}

// Load loads a file from the archives or directories.
func (m *Manager) Load(name string) ([]byte, error) {
	key := encoding.NormalizeName(name)
	if data, ok := m.cache.Get(key); ok {
		return data, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.archives) - 1; i >= 0; i-- {
		a := m.archives[i]
		if !a.Contains(name) {
			continue
		}
		data, err := a.Read(name)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s from %s", name, a.path)
		}
		m.cache.Set(key, data)
		return data, nil
	}

	if filepath.IsLocal(filepath.FromSlash(name)) {
		for _, dir := range m.dirs {
			data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
			if err == nil {
				m.cache.Set(key, data)
				return data, nil
			}
			if !os.IsNotExist(err) {
				return nil, errors.Wrapf(err, "reading %s", name)
			}
		}
	}

	return nil, errors.Wrap(ErrNotFound, name)
}

// LoadModel loads and decodes a model. Decoded models are cached and shared,
// so callers that pose a model should use NewModel instead.
func (m *Manager) LoadModel(name string) (*model.Model, error) {
	key := encoding.NormalizeName(name)

	m.mu.RLock()
	mdl, ok := m.models[key]
	m.mu.RUnlock()
	if ok {
		return mdl, nil
	}

	mdl, err := m.NewModel(name)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if cached, ok := m.models[key]; ok {
		mdl = cached
	} else {
		m.models[key] = mdl
	}
	m.mu.Unlock()

	return mdl, nil
}

// NewModel decodes a private copy of a model.
func (m *Manager) NewModel(name string) (*model.Model, error) {
	data, err := m.Load(name)
	if err != nil {
		return nil, err
	}

	mdl, err := model.Parse(data)
	if err != nil {
		m.log.Warn("model rejected", zap.String("name", name), zap.Error(err))
		return nil, errors.Wrapf(err, "decoding model %s", name)
	}

	m.log.Debug("model loaded",
		zap.String("name", name),
		zap.Int("bones", len(mdl.Bones())),
		zap.Int("meshes", len(mdl.Meshes())),
		zap.Int("vertices", mdl.VertexCount()))
	return mdl, nil
}

// List returns the names of every asset, sorted and without duplicates.
// Archive members keep their stored spelling.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		key := encoding.NormalizeName(name)
		if !seen[key] {
			seen[key] = true
			names = append(names, name)
		}
	}

	for i := len(m.archives) - 1; i >= 0; i-- {
		for _, name := range m.archives[i].List() {
			add(name)
		}
	}
	for _, dir := range m.dirs {
		filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if rel, err := filepath.Rel(dir, path); err == nil {
				add(filepath.ToSlash(rel))
			}
			return nil
		})
	}

	sort.Strings(names)
	return names
}

// ListModels returns the names of model assets.
func (m *Manager) ListModels() []string {
	var models []string
	for _, name := range m.List() {
		if strings.EqualFold(filepath.Ext(name), ModelExt) {
			models = append(models, name)
		}
	}
	return models
}

// Stats returns cache statistics.
func (m *Manager) Stats() Stats {
	hits, misses := m.cache.Stats()

	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{
		Archives: len(m.archives),
		Dirs:     len(m.dirs),
		Hits:     hits,
		Misses:   misses,
		Models:   len(m.models),
	}
}

// Stats summarizes the manager state.
type Stats struct {
	Archives int `json:"archives"`
	Dirs     int `json:"dirs"`
	Hits     int `json:"hits"`
	Misses   int `json:"misses"`
	Models   int `json:"models"`
}

// Close closes all archives.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.archives {
		if err := a.Close(); err != nil {
			m.log.Warn("closing archive", zap.String("path", a.path), zap.Error(err))
		}
	}
	m.archives = nil
	m.dirs = nil
	m.models = make(map[string]*model.Model)
	m.cache.Clear()
}

// Cache is a simple in-memory cache for loaded assets.
type Cache struct {
	data map[string][]byte
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
