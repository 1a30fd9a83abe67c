package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userMappers = `package users

type UserDto struct {
	Name string
}

type User struct {
	Name string
}

//mapgen::mapper
type IUserMapper interface {
	Map(source UserDto) User
}
`

func writeModule(t *testing.T) string {
	t.Helper()
	t.Setenv("GOWORK", "off")
	t.Setenv("GOFLAGS", "-mod=mod")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/app\n\ngo 1.22\n"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "users"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users", "users.go"), []byte(userMappers), 0644))
	return dir
}

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersion(t *testing.T) {
	code, stdout, _ := execute(t, "version")
	assert.Equal(t, 0, code)
	assert.Regexp(t, `^mapgen v\S+\n$`, stdout)
}

func TestHelp(t *testing.T) {
	code, stdout, _ := execute(t, "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Usage: mapgen")
	assert.Contains(t, stdout, "generate")
	assert.Contains(t, stdout, "watch")
	assert.Contains(t, stdout, "--module")
}

func TestGenerateHelpDescribesLenientAncestors(t *testing.T) {
	code, stdout, _ := execute(t, "generate", "--help")
	assert.Equal(t, 0, code)

	help := strings.Join(strings.Fields(stdout), " ")
	assert.Contains(t, help, "--lenient-ancestors")
	assert.Contains(t, help, "Drop enclosing scopes a mapper cannot be generated into, such as function bodies")
	assert.NotContains(t, help, "inherited interfaces")
}

func TestInvalidFlags(t *testing.T) {
	code, _, stderr := execute(t, "--log-level", "loud", "version")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "log-level")

	code, _, _ = execute(t, "--verbose", "--quiet", "version")
	assert.Equal(t, 2, code)
}

func TestGenerateAndClean(t *testing.T) {
	dir := writeModule(t)
	target := filepath.Join(dir, "users", "mapgen_users.go")

	code, stdout, stderr := execute(t, "generate", dir+"/...")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Generation complete")

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(content), "type UserMapper struct{}")

	code, stdout, stderr = execute(t, "clean", dir+"/...")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Removed 1 generated files")
	assert.NoFileExists(t, target)
}

func TestGenerateDefaultCommand(t *testing.T) {
	dir := writeModule(t)

	code, _, stderr := execute(t, "--quiet", filepath.Join(dir, "users"))
	require.Equal(t, 0, code, stderr)
	assert.FileExists(t, filepath.Join(dir, "users", "mapgen_users.go"))
}

func TestGenerateReportsFailures(t *testing.T) {
	dir := writeModule(t)

	code, _, stderr := execute(t, "generate", "--deciders", "magic", dir+"/...")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Code Generation Failed")
	assert.Contains(t, stderr, "unknown decider 'magic'")
}

func TestGenerateWithConfigFile(t *testing.T) {
	dir := writeModule(t)
	config := filepath.Join(dir, "mapgen.yaml")
	require.NoError(t, os.WriteFile(config, []byte("quiet: true\n"), 0644))

	code, stdout, stderr := execute(t, "--config", config, "generate", dir+"/...")
	require.Equal(t, 0, code, stderr)
	assert.NotContains(t, stdout, "Generation complete")
	assert.FileExists(t, filepath.Join(dir, "users", "mapgen_users.go"))
}

func TestGenerateWithSuffix(t *testing.T) {
	dir := writeModule(t)

	code, _, stderr := execute(t, "generate", "--prefix", "I", "--suffix", "Impl", dir+"/...")
	require.Equal(t, 0, code, stderr)

	content, err := os.ReadFile(filepath.Join(dir, "users", "mapgen_users.go"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "type UserMapperImpl struct{}")
}

func TestGenerateDump(t *testing.T) {
	dir := writeModule(t)

	code, stdout, stderr := execute(t, "--quiet", "generate", "--dump", dir+"/...")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "=== IUserMapper")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger("info", &buf)
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	_, err = newLogger("loud", &buf)
	assert.Error(t, err)
}
