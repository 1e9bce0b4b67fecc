package i18n

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Catalog is an in-memory Dictionary organised as bundle → locale → key.
//
// Bundles are usually loaded from YAML files named after the bundle:
//
//	# api-dictionary.yaml
//	en:
//	  description_test: If you see this it has been translated
//	fr:
//	  description_test: Si vous voyez ceci, c'est traduit
type Catalog struct {
	bundles map[string]map[language.Tag]map[string]string
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		bundles: make(map[string]map[language.Tag]map[string]string),
	}
}

// Set stores a single translation.
func (c *Catalog) Set(bundle string, tag language.Tag, key, value string) {
	locales, ok := c.bundles[bundle]
	if !ok {
		locales = make(map[language.Tag]map[string]string)
		c.bundles[bundle] = locales
	}
	entries, ok := locales[tag]
	if !ok {
		entries = make(map[string]string)
		locales[tag] = entries
	}
	entries[key] = value
}

// Lookup implements Dictionary.
func (c *Catalog) Lookup(bundle, key string, tag language.Tag) (string, bool) {
	if c == nil {
		return "", false
	}
	v, ok := c.bundles[bundle][tag][key]
	return v, ok
}

// Bundles returns the bundle names in sorted order.
func (c *Catalog) Bundles() []string {
	names := make([]string, 0, len(c.bundles))
	for name := range c.bundles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddBundle parses YAML data of the form locale → key → value into bundle.
func (c *Catalog) AddBundle(bundle string, data []byte) error {
	var raw map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("bundle %s: %w", bundle, err)
	}
	for locale, entries := range raw {
		tag, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("bundle %s: invalid locale %q: %w", bundle, locale, err)
		}
		for key, value := range entries {
			c.Set(bundle, tag, key, value)
		}
	}
	return nil
}

// LoadFS adds every *.yaml and *.yml file in the root of fsys as a bundle
// named after the file.
func (c *Catalog) LoadFS(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("read bundles: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := path.Ext(name)
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read bundle %s: %w", name, err)
		}
		if err := c.AddBundle(strings.TrimSuffix(name, ext), data); err != nil {
			return err
		}
	}
	return nil
}

// LoadDir is LoadFS for a directory on disk.
func LoadDir(dir string) (*Catalog, error) {
	c := NewCatalog()
	if err := c.LoadFS(os.DirFS(dir)); err != nil {
		return nil, err
	}
	return c, nil
}
