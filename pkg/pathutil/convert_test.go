package pathutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToRelative(t *testing.T) {
	tests := []struct {
		name     string
		absPath  string
		rootDir  string
		expected string
	}{
		{
			name:     "inside root",
			absPath:  "/home/user/project/src/main.rs",
			rootDir:  "/home/user/project",
			expected: "src/main.rs",
		},
		{
			name:     "outside root stays absolute",
			absPath:  "/other/location/file.rs",
			rootDir:  "/home/user/project",
			expected: "/other/location/file.rs",
		},
		{
			name:     "already relative",
			absPath:  "src/main.rs",
			rootDir:  "/home/user/project",
			expected: "src/main.rs",
		},
		{
			name:     "empty path",
			absPath:  "",
			rootDir:  "/home/user/project",
			expected: "",
		},
		{
			name:     "empty root",
			absPath:  "/home/user/project/src/main.rs",
			rootDir:  "",
			expected: "/home/user/project/src/main.rs",
		},
		{
			name:     "root itself",
			absPath:  "/home/user/project",
			rootDir:  "/home/user/project",
			expected: ".",
		},
		{
			name:     "unclean paths",
			absPath:  "/home/user/project//src/./main.rs",
			rootDir:  "/home/user/project/",
			expected: "src/main.rs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToRelative(tt.absPath, tt.rootDir))
		})
	}
}

func TestToCanonical(t *testing.T) {
	root := t.TempDir()
	got := ToCanonical("src/lib.rs", root)
	assert.True(t, filepath.IsAbs(got))

	abs := filepath.Join(root, "src", "lib.rs")
	assert.Equal(t, ToCanonical(abs, root), got)
}

func TestParentDir(t *testing.T) {
	assert.Equal(t, "src/verified", ParentDir("src/verified/proofs.rs"))
	assert.Equal(t, "src", ParentDir("src/verified"))
	assert.Equal(t, "", ParentDir("src"))
	assert.Equal(t, "", ParentDir("Cargo.toml"))
}

func TestAncestorDirs(t *testing.T) {
	assert.Equal(t, []string{"a/b", "a"}, AncestorDirs("a/b/c.rs"))
	assert.Nil(t, AncestorDirs("main.rs"))
}
