// Package pathutil provides utilities for converting between absolute and relative paths.
//
// Architecture Pattern:
// atomizer uses absolute paths internally for consistency and to avoid ambiguity.
// However, atom ids and user-facing output use workspace-relative, slash-separated
// paths so output is portable across machines. This package provides the conversion
// layer between internal (absolute) and external (relative) representations.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails or path is already relative.
//
// Examples:
//   - ToRelative("/home/user/project/src/main.rs", "/home/user/project") → "src/main.rs"
//   - ToRelative("/other/location/file.rs", "/home/user/project") → "/other/location/file.rs" (outside root)
//   - ToRelative("src/main.rs", "/home/user/project") → "src/main.rs" (already relative)
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}

	// If path is already relative, return as-is
	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		// Conversion failed (e.g., different drives on Windows) - return absolute
		return absPath
	}

	// A ".." prefix means the file is outside the root; the absolute path is
	// clearer in that case.
	if strings.HasPrefix(relPath, "..") {
		return absPath
	}

	return filepath.ToSlash(relPath)
}

// ToCanonical resolves a possibly relative source path against the workspace
// root into the absolute form used as a parse cache key. Symlinks are
// resolved when possible so two spellings of one file share a cache entry.
func ToCanonical(path, rootDir string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(rootDir, path)
	}
	path = filepath.Clean(path)
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return path
}

// ParentDir returns the slash-separated parent of a relative path, or ""
// when the path has no parent inside the workspace.
func ParentDir(relPath string) string {
	dir := filepath.ToSlash(filepath.Dir(relPath))
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

// AncestorDirs returns every ancestor directory of a relative path, nearest
// first. "a/b/c.rs" yields ["a/b", "a"].
func AncestorDirs(relPath string) []string {
	var dirs []string
	for dir := ParentDir(relPath); dir != ""; dir = ParentDir(dir) {
		dirs = append(dirs, dir)
	}
	return dirs
}
