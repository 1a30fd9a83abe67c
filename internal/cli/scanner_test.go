package cli

import (
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPattern(t *testing.T) {
	tests := []struct {
		arg       string
		base      string
		recursive bool
	}{
		{"./...", ".", true},
		{"...", ".", true},
		{"internal/...", "internal", true},
		{"/...", ".", true},
		{"internal", "internal", false},
		{".", ".", false},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			base, recursive := splitPattern(tt.arg)
			assert.Equal(t, filepath.FromSlash(tt.base), base)
			assert.Equal(t, tt.recursive, recursive)
		})
	}
}

func TestDirectoryScanner_Roots(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"go.mod":      testGoMod,
		"a/a.go":      "package a\n",
		"a/b/file.go": "package b\n",
	})

	s := NewDirectoryScanner()
	roots, err := s.Roots([]string{dir + "/...", filepath.Join(dir, "a"), dir + "/..."})
	require.NoError(t, err)
	assert.Equal(t, []LoadRoot{
		{Dir: dir, Pattern: "./...", Recursive: true},
		{Dir: filepath.Join(dir, "a"), Pattern: "."},
	}, roots)

	_, err = s.Roots([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)

	_, err = s.Roots([]string{filepath.Join(dir, "go.mod")})
	assert.ErrorContains(t, err, "is not a directory")
}

func TestDirectoryScanner_ScanDirectories(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"go.mod":            testGoMod,
		"a/a.go":            "package a\n",
		"a/b/file.go":       "package b\n",
		"gen/mapgen_gen.go": "package gen\n",
		"vendor/x/x.go":     "package x\n",
		"testdata/t.go":     "package t\n",
	})

	s := NewDirectoryScanner()

	dirs, err := s.ScanDirectories([]string{dir + "/..."})
	require.NoError(t, err)
	sort.Strings(dirs)
	assert.Equal(t, []string{filepath.Join(dir, "a"), filepath.Join(dir, "a", "b")}, dirs)

	dirs, err = s.ScanDirectories([]string{filepath.Join(dir, "a"), filepath.Join(dir, "a")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a")}, dirs)

	dirs, err = s.ScanDirectories([]string{filepath.Join(dir, "gen")})
	require.NoError(t, err)
	assert.Empty(t, dirs)
}
