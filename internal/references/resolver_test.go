package references

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBaseFile(t *testing.T, root string) string {
	t.Helper()
	dir := filepath.Join(root, "builtin")
	require.NoError(t, os.MkdirAll(dir, 0755))
	file := filepath.Join(dir, "builtin.go")
	require.NoError(t, os.WriteFile(file, []byte("package builtin\n"), 0644))
	return file
}

func TestResolve_BaseFromRoot(t *testing.T) {
	root := t.TempDir()
	file := writeBaseFile(t, root)

	set := Resolve([]string{root})

	require.NotNil(t, set.Base)
	assert.Equal(t, BaseImportPath, set.Base.ImportPath)
	assert.Equal(t, file, set.Base.File)
	assert.NotContains(t, set.Missing(), BaseImportPath)
}

func TestResolve_BaseFromFilePath(t *testing.T) {
	root := t.TempDir()
	file := writeBaseFile(t, root)

	set := Resolve([]string{filepath.Join(root, "elsewhere"), file})

	require.NotNil(t, set.Base)
	assert.Equal(t, filepath.Dir(file), set.Base.Dir)
}

func TestResolve_MissingBaseIsTolerated(t *testing.T) {
	set := Resolve([]string{t.TempDir(), ""})

	assert.Nil(t, set.Base)
	assert.Contains(t, set.Missing(), BaseImportPath)
	assert.NotContains(t, set.ImportPaths(), BaseImportPath)
}

func TestResolve_StandardLibrary(t *testing.T) {
	set := Resolve(nil)

	require.NotNil(t, set.Core, "runtime should resolve from GOROOT")
	require.NotNil(t, set.Query, "slices should resolve from GOROOT")
	assert.Equal(t, CoreImportPath, set.Core.ImportPath)
	assert.Equal(t, QueryImportPath, set.QueryPath())
}

func TestSet_QueryPathFallback(t *testing.T) {
	set := &Set{}
	assert.Equal(t, QueryImportPath, set.QueryPath())
	assert.ElementsMatch(t, []string{CoreImportPath, QueryImportPath, BaseImportPath}, set.Missing())
}

func TestDefault_SingleInitialization(t *testing.T) {
	var wg sync.WaitGroup
	results := make([]*Set, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Default()
		}(i)
	}
	wg.Wait()

	for _, set := range results {
		assert.Same(t, results[0], set)
	}
}
