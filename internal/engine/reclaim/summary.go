package reclaim

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"
)

// FormatSummary renders deleted file names grouped by extension:
//
//	reclaimed 3 files
//	  .bundle (2): a.bundle, b.bundle
//	  .json (1): catalog_1.json
func FormatSummary(deleted []string) string {
	groups := make(map[string][]string)
	for _, name := range deleted {
		ext := filepath.Ext(name)
		if ext == "" {
			ext = "(none)"
		}
		groups[ext] = append(groups[ext], name)
	}

	noun := "files"
	if len(deleted) == 1 {
		noun = "file"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "reclaimed %d %s", len(deleted), noun)
	for _, ext := range slices.Sorted(maps.Keys(groups)) {
		names := groups[ext]
		slices.Sort(names)
		fmt.Fprintf(&b, "\n  %s (%d): %s", ext, len(names), strings.Join(names, ", "))
	}
	return b.String()
}
