package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xob0t/covergen/pkg/config"
	"github.com/xob0t/covergen/pkg/imageio"
)

// VideoExtensions are the container extensions a run picks up, compared
// case-insensitively.
var VideoExtensions = []string{".mp4", ".avi", ".mov", ".mkv", ".flv", ".wmv"}

// IsVideo reports whether name has a recognized video extension.
func IsVideo(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, v := range VideoExtensions {
		if ext == v {
			return true
		}
	}
	return false
}

// Item is one matched video and the cover it will produce.
type Item struct {
	Name   string        `json:"name"`
	Source string        `json:"source"`
	Output string        `json:"output"`
	Title  string        `json:"title"`
	Render config.Render `json:"-"`
}

// Title returns the cover title for a video file name: the base name
// without its extension.
func Title(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// plan lists the videos in folder in directory order and resolves each
// one's output path, title and render settings.
func plan(folder string, opts Options) ([]Item, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("%w: read folder %s: %w", ErrConfiguration, folder, err)
	}

	ext := opts.OutputExt
	if ext == "" {
		ext = imageio.DefaultExt
	}

	var items []Item
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !IsVideo(name) {
			continue
		}
		source := filepath.Join(folder, name)
		item := Item{
			Name:   name,
			Source: source,
			Output: imageio.OutputPath(source, ext),
			Title:  Title(name),
			Render: opts.Render,
		}
		if o, ok := opts.Overrides[name]; ok {
			if strings.TrimSpace(o.Title) != "" {
				item.Title = o.Title
			}
			item.Render = o.Apply(item.Render)
		}
		items = append(items, item)
	}
	return items, nil
}
