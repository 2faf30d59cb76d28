package pipeline

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// PathRewrite locates relative image and link targets on disk.
// SourceDir is the note's directory. RootDir is the vault root; a target
// missing beside the note is looked up from the root, the way the vault
// resolves attachment links. Targets never escape RootDir (or SourceDir
// when RootDir is empty).
type PathRewrite struct {
	SourceDir string
	RootDir   string
}

// RewriteRelativePaths converts relative img[src] and a[href] values to
// absolute file:// URLs. URLs, anchors and absolute paths are left alone.
// A zero PathRewrite returns the HTML unchanged.
func RewriteRelativePaths(htmlContent string, opts PathRewrite) (string, error) {
	if opts.SourceDir == "" {
		return htmlContent, nil
	}

	sourceDir, err := filepath.Abs(opts.SourceDir)
	if err != nil {
		return "", err
	}
	rootDir := sourceDir
	if opts.RootDir != "" {
		if rootDir, err = filepath.Abs(opts.RootDir); err != nil {
			return "", err
		}
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}

	rewriteNode(doc, sourceDir, rootDir)

	return renderHTML(doc, isFragment)
}

// parseHTML parses full documents as-is and fragments in a body context.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))

	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, true, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, true, nil
}

// renderHTML renders fragments child by child so no <html><body> wrapper is added.
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if isFragment {
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}

	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func rewriteNode(n *html.Node, sourceDir, rootDir string) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Img:
			rewriteAttr(n, "src", sourceDir, rootDir)
		case atom.A:
			rewriteAttr(n, "href", sourceDir, rootDir)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteNode(c, sourceDir, rootDir)
	}
}

func rewriteAttr(n *html.Node, attrName, sourceDir, rootDir string) {
	for i, attr := range n.Attr {
		if attr.Key != attrName || !isRelativePath(attr.Val) {
			continue
		}

		// Goldmark percent-encodes destinations such as "my image.png".
		rel, err := url.PathUnescape(attr.Val)
		if err != nil {
			rel = attr.Val
		}

		absPath := resolveTarget(filepath.FromSlash(rel), sourceDir, rootDir)
		if !isPathUnderDir(absPath, rootDir) {
			continue
		}
		n.Attr[i].Val = pathToFileURL(absPath)
	}
}

// resolveTarget prefers the note's directory and falls back to the root
// when the file only exists there.
func resolveTarget(rel, sourceDir, rootDir string) string {
	candidate := filepath.Join(sourceDir, rel)
	if rootDir == sourceDir {
		return candidate
	}
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	fromRoot := filepath.Join(rootDir, rel)
	if _, err := os.Stat(fromRoot); err == nil {
		return fromRoot
	}
	return candidate
}

func isRelativePath(path string) bool {
	if path == "" {
		return false
	}

	if strings.HasPrefix(path, "http://") ||
		strings.HasPrefix(path, "https://") ||
		strings.HasPrefix(path, "file://") ||
		strings.HasPrefix(path, "data:") ||
		strings.HasPrefix(path, "mailto:") ||
		strings.HasPrefix(path, "//") {
		return false
	}

	if strings.HasPrefix(path, "#") {
		return false
	}

	return !filepath.IsAbs(path)
}

// isPathUnderDir checks that absPath is dir itself or lies below it.
func isPathUnderDir(absPath, dir string) bool {
	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(dir)

	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}
	return strings.HasPrefix(cleanPath+string(filepath.Separator), cleanDir)
}

// pathToFileURL converts an absolute path to a file:// URL.
func pathToFileURL(absPath string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(absPath),
	}
	return u.String()
}
