// Package theme is the catalog of overlay themes. Themes are TOML files laid
// out as <mode>/<file>.toml where mode is the lower case mode name.
package theme

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ItsNotGoodName/x-overlay/internal/overlay"
)

var ErrNotFound = errors.New("theme not found")

//go:embed themes
var embedded embed.FS

const ext = ".toml"

type Entry struct {
	Name     string
	Filename string
	Theme    overlay.Theme
}

type file struct {
	Name  string            `toml:"name"`
	Style map[string]string `toml:"style"`
}

type Catalog struct {
	entries map[overlay.Mode][]Entry
}

// Default returns the catalog of built-in themes overridden by the themes in
// fsyss.
func Default(fsyss ...fs.FS) (*Catalog, error) {
	sub, err := fs.Sub(embedded, "themes")
	if err != nil {
		return nil, err
	}
	return Load(append([]fs.FS{sub}, fsyss...)...)
}

// Load reads themes from each filesystem in order. A theme file in a later
// filesystem replaces one with the same mode and filename.
func Load(fsyss ...fs.FS) (*Catalog, error) {
	c := &Catalog{
		entries: make(map[overlay.Mode][]Entry),
	}

	for _, fsys := range fsyss {
		for _, mode := range overlay.Modes() {
			if err := c.loadMode(fsys, mode); err != nil {
				return nil, err
			}
		}
	}

	for mode := range c.entries {
		slices.SortFunc(c.entries[mode], func(a, b Entry) int {
			return strings.Compare(a.Filename, b.Filename)
		})
	}

	return c, nil
}

func (c *Catalog) loadMode(fsys fs.FS, mode overlay.Mode) error {
	dir := strings.ToLower(mode.String())
	matches, err := fs.Glob(fsys, path.Join(dir, "*"+ext))
	if err != nil {
		return err
	}

	for _, match := range matches {
		b, err := fs.ReadFile(fsys, match)
		if err != nil {
			return err
		}

		var f file
		if err := toml.Unmarshal(b, &f); err != nil {
			return fmt.Errorf("%s: %w", match, err)
		}

		entry := Entry{
			Name:     f.Name,
			Filename: path.Base(match),
			Theme:    overlay.Theme(f.Style),
		}
		if entry.Name == "" {
			entry.Name = strings.TrimSuffix(entry.Filename, ext)
		}

		idx := slices.IndexFunc(c.entries[mode], func(e Entry) bool { return e.Filename == entry.Filename })
		if idx == -1 {
			c.entries[mode] = append(c.entries[mode], entry)
		} else {
			c.entries[mode][idx] = entry
		}
	}

	return nil
}

func normalize(filename string) string {
	if strings.HasSuffix(filename, ext) {
		return filename
	}
	return filename + ext
}

// Index returns the position of filename in the mode's theme list.
func (c *Catalog) Index(mode overlay.Mode, filename string) (int, error) {
	filename = normalize(filename)
	idx := slices.IndexFunc(c.entries[mode], func(e Entry) bool { return e.Filename == filename })
	if idx == -1 {
		return -1, fmt.Errorf("%w: %s/%s", ErrNotFound, mode, filename)
	}
	return idx, nil
}

func (c *Catalog) Get(mode overlay.Mode, index int) (overlay.Theme, error) {
	entries := c.entries[mode]
	if index < 0 || index >= len(entries) {
		return nil, fmt.Errorf("%w: %s[%d]", ErrNotFound, mode, index)
	}
	return entries[index].Theme.Clone(), nil
}

// Resolve returns the theme stored in filename for mode.
func (c *Catalog) Resolve(mode overlay.Mode, filename string) (overlay.Theme, error) {
	idx, err := c.Index(mode, filename)
	if err != nil {
		return nil, err
	}
	return c.Get(mode, idx)
}

func (c *Catalog) Entries(mode overlay.Mode) []Entry {
	return slices.Clone(c.entries[mode])
}
