package storage

import (
	"path/filepath"
	"strings"
)

// ExpandPathTemplate substitutes {base_path}, {uuid} and {ext} in a path
// template. The expansion is deterministic given its inputs; the only random
// input, the uuid, is drawn by the caller so tests can inject a fixed source.
func ExpandPathTemplate(template, basePath, id, ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	expanded := strings.ReplaceAll(template, "{base_path}", strings.Trim(basePath, "/"))
	expanded = strings.ReplaceAll(expanded, "{uuid}", id)
	expanded = strings.ReplaceAll(expanded, "{ext}", ext)
	return strings.TrimPrefix(expanded, "/")
}

// FileExtension returns the lower-cased extension of a file name without the
// leading dot.
func FileExtension(fileName string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
}
