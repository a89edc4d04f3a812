package sitesnap

import "strings"

// SplitList splits a comma separated option value, trimming whitespace and
// dropping empty entries.
func SplitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// BuildWorkList returns the sitemap paths followed by the extra paths, in
// order, minus every path that contains one of the exclude substrings.
// Extra paths without a leading slash get one.
func BuildWorkList(sitemapPaths, extraPaths, exclude []string) []string {
	items := make([]string, 0, len(sitemapPaths)+len(extraPaths))

	for _, path := range sitemapPaths {
		if !isExcluded(path, exclude) {
			items = append(items, path)
		}
	}

	for _, path := range extraPaths {
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		if !isExcluded(path, exclude) {
			items = append(items, path)
		}
	}

	return items
}

// ParseWorkList is BuildWorkList for comma separated extras and filter values.
func ParseWorkList(sitemapPaths []string, extras, filter string) []string {
	return BuildWorkList(sitemapPaths, SplitList(extras), SplitList(filter))
}

func isExcluded(path string, exclude []string) bool {
	for _, substr := range exclude {
		if substr != "" && strings.Contains(path, substr) {
			return true
		}
	}
	return false
}
