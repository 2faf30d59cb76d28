package cards

import (
	"strings"

	"github.com/alnah/go-md2card/internal/frontmatter"
	"github.com/alnah/go-md2card/internal/vault"
)

// AssetPrefix starts every generated image name.
const AssetPrefix = "cf-"

// AssetPath returns where the card for docPath is written:
// <folder>/cf-<type>-<padded number>-<normalized base name>.png. An
// unnumbered card leaves the number segment empty.
func AssetPath(docPath string, f frontmatter.Fields, folder string) string {
	name := AssetPrefix + fileSafe(f.Type) + "-" + f.PaddedNumber() + "-" + NormalizeTitle(docPath) + ".png"
	return vault.Join(folder, name)
}

// NormalizeTitle lower-cases the note's base name and replaces every space
// with a hyphen.
func NormalizeTitle(docPath string) string {
	return strings.ReplaceAll(strings.ToLower(frontmatter.BaseName(docPath)), " ", "-")
}

// fileSafe keeps a free-text field from adding folders to the path.
func fileSafe(s string) string {
	return strings.NewReplacer("/", "-", "\\", "-").Replace(s)
}
