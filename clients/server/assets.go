package server

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/xob0t/covergen/pkg/fonts"
)

// fontAsset is an uploaded font kept on disk for the lifetime of the server.
type fontAsset struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int    `json:"size"`
	path string
}

type fontStore struct {
	mu     sync.RWMutex
	dir    string
	assets map[string]*fontAsset
}

func newFontStore(dir string) *fontStore {
	return &fontStore{dir: dir, assets: make(map[string]*fontAsset)}
}

// add writes data under dir and checks that it parses before registering it.
func (fs *fontStore) add(name string, data []byte) (*fontAsset, error) {
	id := uuid.NewString()
	path := filepath.Join(fs.dir, id+"_"+sanitizeFilename(name))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("store font: %w", err)
	}
	if _, err := fonts.Load(path); err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	a := &fontAsset{ID: id, Name: name, Size: len(data), path: path}
	fs.mu.Lock()
	fs.assets[id] = a
	fs.mu.Unlock()
	return a, nil
}

func (fs *fontStore) get(id string) (*fontAsset, bool) {
	fs.mu.RLock()
	a, ok := fs.assets[id]
	fs.mu.RUnlock()
	return a, ok
}

func (fs *fontStore) list() []*fontAsset {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	result := make([]*fontAsset, 0, len(fs.assets))
	for _, a := range fs.assets {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func (fs *fontStore) remove(id string) bool {
	fs.mu.Lock()
	a, ok := fs.assets[id]
	delete(fs.assets, id)
	fs.mu.Unlock()
	if ok {
		_ = os.Remove(a.path)
	}
	return ok
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	return strings.NewReplacer("/", "_", "\\", "_", " ", "_").Replace(name)
}
