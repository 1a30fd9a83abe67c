package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/toyz/mapgen/internal/utils"
)

// MinimumGoVersion is the oldest go directive whose standard library has the
// packages generated code imports (slices, maps)
const MinimumGoVersion = "1.21"

// ModuleResolver handles resolving Go module information
type ModuleResolver struct {
	gomod *utils.GoModParser
}

// NewModuleResolver creates a new module resolver
func NewModuleResolver() *ModuleResolver {
	return &ModuleResolver{gomod: utils.NewGoModParser(utils.NewFileReader())}
}

// Resolve returns the module governing dir. customModule, when set, replaces the module path
// but the go.mod is still consulted for the language version; a missing go.mod is then tolerated.
func (r *ModuleResolver) Resolve(customModule, dir string) (utils.ModuleInfo, error) {
	info, err := r.gomod.Module(dir)
	if err != nil {
		if customModule == "" {
			return utils.ModuleInfo{}, fmt.Errorf("failed to determine module name: %w (consider using --module flag)", err)
		}
		abs, _ := filepath.Abs(dir)
		return utils.ModuleInfo{Path: customModule, Dir: abs}, nil
	}
	if customModule != "" {
		info.Path = customModule
	}
	return info, nil
}

// ResolveModuleName resolves the module path for the working directory
func (r *ModuleResolver) ResolveModuleName(customModule string) (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	info, err := r.Resolve(customModule, wd)
	if err != nil {
		return "", err
	}
	return info.Path, nil
}

// BuildPackagePath builds the import path of packageDir inside module
func (r *ModuleResolver) BuildPackagePath(module utils.ModuleInfo, packageDir string) (string, error) {
	abs, err := filepath.Abs(packageDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve package directory: %w", err)
	}

	rel, err := filepath.Rel(module.Dir, abs)
	if err != nil {
		return "", fmt.Errorf("failed to calculate relative path: %w", err)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || len(rel) > 2 && rel[:3] == "../" {
		return "", fmt.Errorf("package directory %s is outside module %s", packageDir, module.Path)
	}

	if rel == "." {
		return module.Path, nil
	}
	return module.Path + "/" + rel, nil
}
