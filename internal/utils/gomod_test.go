package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoModParser_Module(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"go.mod":        "module example.com/app\n\ngo 1.22\n",
		"pkg/deep/a.go": "package deep\n",
	})

	parser := NewGoModParser(NewFileReader())
	info, err := parser.Module(filepath.Join(root, "pkg", "deep"))
	require.NoError(t, err)

	assert.Equal(t, "example.com/app", info.Path)
	assert.Equal(t, "1.22", info.GoVersion)
	assert.Equal(t, root, info.Dir)
	assert.True(t, info.AtLeast("1.21"))
	assert.False(t, info.AtLeast("1.23"))
}

func TestGoModParser_Errors(t *testing.T) {
	root := t.TempDir()
	parser := NewGoModParser(NewFileReader())

	_, err := parser.Parse(filepath.Join(root, "other.mod"))
	assert.ErrorContains(t, err, "not a go.mod file")

	noModule := filepath.Join(root, "go.mod")
	require.NoError(t, os.WriteFile(noModule, []byte("go 1.22\n"), 0644))
	_, err = parser.Parse(noModule)
	assert.ErrorContains(t, err, "no module declaration")
}

func TestModuleInfo_AtLeastWithoutDirective(t *testing.T) {
	assert.False(t, ModuleInfo{Path: "example.com/x"}.AtLeast("1.21"))
	assert.True(t, ModuleInfo{GoVersion: "1.21.3"}.AtLeast("1.21"))
}
