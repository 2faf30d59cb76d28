// Package assets provides the card stylesheet and HTML template.
// Assets can be loaded from embedded files or a custom directory.
package assets

import "strings"

// Names of the built-in card assets.
const (
	DefaultStyleName    = "card"
	DefaultTemplateName = "card"
)

var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a CSS file by name using the embedded loader.
// The name should not include the .css extension or path components.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadTemplate loads an HTML template by name using the embedded loader.
func LoadTemplate(name string) (string, error) {
	return defaultLoader.LoadTemplate(name)
}

// StyleNames lists the embedded styles.
func StyleNames() []string {
	entries, _ := styles.ReadDir("styles")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".css"))
	}
	return names
}
