package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/mapgen/internal/utils"
)

func TestModuleResolver_Resolve(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"go.mod":          "module github.com/example/testapp\n\ngo 1.20\n",
		"internal/a/a.go": "package a\n",
	})
	resolver := NewModuleResolver()

	t.Run("read from go.mod file", func(t *testing.T) {
		info, err := resolver.Resolve("", filepath.Join(dir, "internal", "a"))
		require.NoError(t, err)
		assert.Equal(t, "github.com/example/testapp", info.Path)
		assert.Equal(t, dir, info.Dir)
		assert.False(t, info.AtLeast(MinimumGoVersion))
	})

	t.Run("custom module keeps go directive", func(t *testing.T) {
		info, err := resolver.Resolve("github.com/custom/module", dir)
		require.NoError(t, err)
		assert.Equal(t, "github.com/custom/module", info.Path)
		assert.Equal(t, "1.20", info.GoVersion)
	})

	t.Run("no go.mod file found", func(t *testing.T) {
		empty := t.TempDir()
		_, err := resolver.Resolve("", empty)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "go.mod file not found")
		assert.Contains(t, err.Error(), "--module")

		info, err := resolver.Resolve("github.com/custom/module", empty)
		require.NoError(t, err)
		assert.Equal(t, "github.com/custom/module", info.Path)
	})
}

func TestModuleResolver_ResolveModuleName(t *testing.T) {
	dir := writeModule(t, map[string]string{"go.mod": testGoMod})

	original, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(original) })
	require.NoError(t, os.Chdir(dir))

	name, err := NewModuleResolver().ResolveModuleName("")
	require.NoError(t, err)
	assert.Equal(t, "example.com/app", name)
}

func TestModuleResolver_BuildPackagePath(t *testing.T) {
	resolver := NewModuleResolver()
	module := utils.ModuleInfo{Path: "example.com/app", Dir: "/src/app"}

	tests := []struct {
		name    string
		dir     string
		want    string
		wantErr bool
	}{
		{"module root", "/src/app", "example.com/app", false},
		{"nested package", "/src/app/internal/users", "example.com/app/internal/users", false},
		{"outside module", "/src/other", "", true},
		{"dotdot-prefixed sibling", "/src/..app", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.BuildPackagePath(module, filepath.FromSlash(tt.dir))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
