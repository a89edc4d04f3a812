// Package sitemap reads a static sitemap document into the list of paths it declares.
package sitemap

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/beevik/etree"
)

// DefaultPath is where a site keeps its generated sitemap.
const DefaultPath = "public/sitemap.xml"

// ErrNoRoot is returned for a document without a root element, such as an
// empty file or plain text.
var ErrNoRoot = errors.New("no root element")

// ReadFile reads the sitemap at path and returns the paths of its <loc> entries.
func ReadFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sitemap %s: %w", path, err)
	}

	paths, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing sitemap %s: %w", path, err)
	}
	return paths, nil
}

// Parse extracts every page <loc> element in document order and reduces each
// one to the path component of its URL. Only <loc> children of <url> or
// <sitemap> count, so extension entries like <image:loc> are skipped. A
// document without <loc> entries yields an empty slice.
func Parse(data []byte) ([]string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	if doc.Root() == nil {
		return nil, ErrNoRoot
	}

	paths := []string{}
	for _, loc := range doc.FindElements("//loc") {
		if !isPageLoc(loc) {
			continue
		}

		raw := strings.TrimSpace(loc.Text())
		if raw == "" {
			continue
		}

		path, err := PathOf(raw)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	return paths, nil
}

func isPageLoc(loc *etree.Element) bool {
	if loc.Space != "" {
		return false
	}
	parent := loc.Parent()
	return parent != nil && (parent.Tag == "url" || parent.Tag == "sitemap")
}

// PathOf strips scheme, host and port from rawURL. The path keeps its percent
// escapes, so %2F and %23 still address the same resource. The site root maps
// to "/".
func PathOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid <loc> %q: %w", rawURL, err)
	}

	path := u.EscapedPath()
	if path == "" {
		return "/", nil
	}
	if !strings.HasPrefix(path, "/") {
		return "/" + path, nil
	}
	return path, nil
}
