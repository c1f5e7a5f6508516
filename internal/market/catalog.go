// Package market holds the marketplace catalog the farmer spends tokens on.
package market

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sheikh-saqib/farmer-portal/internal/models"
)

// CategoryAll selects every item.
const CategoryAll = "all"

//go:embed catalog.yaml
var defaultCatalog []byte

type Catalog struct {
	items []models.CatalogItem
}

type catalogFile struct {
	Items []models.CatalogItem `yaml:"items"`
}

// Load reads a catalog file, or the built-in catalog when path is empty.
func Load(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	seen := make(map[string]bool, len(f.Items))
	for i, it := range f.Items {
		name := strings.TrimSpace(it.Name)
		switch {
		case name == "":
			return nil, fmt.Errorf("catalog item %d: name is empty", i)
		case it.Price <= 0:
			return nil, fmt.Errorf("catalog item %q: price must be positive", name)
		case seen[name]:
			return nil, fmt.Errorf("catalog item %q: duplicate name", name)
		}
		seen[name] = true
		f.Items[i].Name = name
		f.Items[i].Category = strings.ToLower(strings.TrimSpace(it.Category))
	}
	return &Catalog{items: f.Items}, nil
}

// Filter returns the items in category, or all items for CategoryAll.
func (c *Catalog) Filter(category string) []models.CatalogItem {
	category = strings.ToLower(strings.TrimSpace(category))
	out := make([]models.CatalogItem, 0, len(c.items))
	for _, it := range c.items {
		if category == "" || category == CategoryAll || it.Category == category {
			out = append(out, it)
		}
	}
	return out
}

// Find looks an item up by name.
func (c *Catalog) Find(name string) (models.CatalogItem, bool) {
	for _, it := range c.items {
		if it.Name == name {
			return it, true
		}
	}
	return models.CatalogItem{}, false
}

// Categories lists the distinct categories in catalog order.
func (c *Catalog) Categories() []string {
	var out []string
	seen := map[string]bool{}
	for _, it := range c.items {
		if !seen[it.Category] {
			seen[it.Category] = true
			out = append(out, it.Category)
		}
	}
	return out
}
