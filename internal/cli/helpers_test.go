package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testGoMod = "module example.com/app\n\ngo 1.22\n"

const userMappers = `package users

type UserDto struct {
	ID   int
	Name string
}

type User struct {
	ID   int
	Name string
}

//mapgen::mapper
type IUserMapper interface {
	Map(source UserDto) User
}
`

// writeModule lays files out under a fresh temp directory and returns it
func writeModule(t *testing.T, files map[string]string) string {
	t.Helper()
	t.Setenv("GOWORK", "off")
	t.Setenv("GOFLAGS", "-mod=mod")

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
