// Package page holds page objects for the sites under test. Each page drives
// an output.BrowserPort through selectors loaded from embedded YAML.
package page

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locators/*.yaml
var locatorFS embed.FS

// Locators is one site's base URL and named selectors.
type Locators struct {
	URL       string            `yaml:"url"`
	Selectors map[string]string `yaml:"selectors"`
}

// LoadLocators reads locators/<site>.yaml and checks that every required
// selector is present.
func LoadLocators(site string, required ...string) (Locators, error) {
	data, err := locatorFS.ReadFile("locators/" + site + ".yaml")
	if err != nil {
		return Locators{}, fmt.Errorf("unknown site %q: %w", site, err)
	}
	return parseLocators(data, required...)
}

func parseLocators(data []byte, required ...string) (Locators, error) {
	var l Locators
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Locators{}, fmt.Errorf("failed to parse locators: %w", err)
	}
	if l.URL == "" {
		return Locators{}, fmt.Errorf("locators: url is required")
	}

	var missing []string
	for _, key := range required {
		if l.Selectors[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return Locators{}, fmt.Errorf("locators: missing selectors: %s", strings.Join(missing, ", "))
	}
	return l, nil
}

// Get returns the selector for key, or "" when it is not defined.
func (l Locators) Get(key string) string {
	return l.Selectors[key]
}

// Slug turns a product name into its data-test suffix:
// "Sauce Labs Backpack" becomes "sauce-labs-backpack".
func Slug(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}
