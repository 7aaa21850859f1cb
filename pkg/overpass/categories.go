package overpass

import (
	_ "embed"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var defaultCategoriesYAML []byte

// Category groups OSM tag selectors under one safe-place kind.
type Category struct {
	Name      string   `yaml:"name"`
	Label     string   `yaml:"label"`
	Selectors []string `yaml:"selectors"`
}

type categoryFile struct {
	Categories []Category `yaml:"categories"`
}

// LoadCategories parses a category registry from YAML.
func LoadCategories(data []byte) ([]Category, error) {
	var file categoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, eris.Wrap(err, "overpass: parse categories")
	}
	if len(file.Categories) == 0 {
		return nil, eris.New("overpass: category registry is empty")
	}
	for _, c := range file.Categories {
		for _, sel := range c.Selectors {
			if !strings.Contains(sel, "=") {
				return nil, eris.Errorf("overpass: malformed selector %q in category %q", sel, c.Name)
			}
		}
	}
	return file.Categories, nil
}

// DefaultCategories returns the embedded registry. The embedded file is
// validated by tests, so parse failures cannot happen at runtime.
func DefaultCategories() []Category {
	categories, err := LoadCategories(defaultCategoriesYAML)
	if err != nil {
		panic(err)
	}
	return categories
}

// categoryForTags maps an element's OSM tags back to the category whose
// selector matched it.
func categoryForTags(categories []Category, tags map[string]string) string {
	for _, c := range categories {
		for _, sel := range c.Selectors {
			key, value, _ := strings.Cut(sel, "=")
			if tags[key] == value {
				return c.Name
			}
		}
	}
	return ""
}
