package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/toyz/mapgen/internal/emit"
	"github.com/toyz/mapgen/internal/errors"
	"github.com/toyz/mapgen/internal/models"
	"github.com/toyz/mapgen/internal/naming"
	"github.com/toyz/mapgen/internal/parser"
	"github.com/toyz/mapgen/internal/pipeline"
	"github.com/toyz/mapgen/internal/registry"
	"github.com/toyz/mapgen/internal/utils"
	"github.com/toyz/mapgen/internal/version"
)

// generatedMarker starts the header of every file this tool writes
const generatedMarker = "// Code generated by " + version.Name

// Generator coordinates the CLI generation process
type Generator struct {
	scanner        *DirectoryScanner
	moduleResolver *ModuleResolver
	parser         *parser.Parser
	deciders       registry.DeciderRegistry
	files          *utils.FileProcessor
	reporter       *DiagnosticReporter
	diagnostics    *utils.DiagnosticSystem
	logger         *zap.Logger
	summary        GenerationSummary

	dumpMu sync.Mutex
}

// packageOutcome is what generating one package produced
type packageOutcome struct {
	importPath  string
	files       []fileOutcome
	types       int
	unsupported int
	warnings    []string
}

// fileOutcome is what happened to one generated file
type fileOutcome struct {
	path  string
	types int
	state fileState
}

// sourceGroup is the declarations of one source file, in source order
type sourceGroup struct {
	source string
	decls  []*models.AnnotatedDeclaration
}

type fileState int

const (
	fileSkipped fileState = iota
	fileWritten
	fileUnchanged
	fileRemoved
)

// NewGenerator creates a CLI generator that reports only through its DiagnosticReporter
func NewGenerator(verbose bool) *Generator {
	return NewGeneratorWithDiagnostics(verbose, utils.NewDiagnosticSystem(utils.DiagnosticSilent), nil)
}

// NewGeneratorWithDiagnostics creates a CLI generator printing progress through diagnostics
func NewGeneratorWithDiagnostics(verbose bool, diagnostics *utils.DiagnosticSystem, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		scanner:        NewDirectoryScanner(),
		moduleResolver: NewModuleResolver(),
		parser:         parser.NewParser(),
		deciders:       registry.NewDeciderRegistry(),
		files:          utils.NewFileProcessor(models.IsGeneratedFileName),
		reporter:       NewDiagnosticReporter(verbose),
		diagnostics:    diagnostics,
		logger:         logger,
	}
}

// Deciders exposes the decider registry so callers can add their own deciders
func (g *Generator) Deciders() registry.DeciderRegistry {
	return g.deciders
}

// Reporter returns the reporter used for failures and summaries
func (g *Generator) Reporter() *DiagnosticReporter {
	return g.reporter
}

// GetSummary returns the summary of the last run
func (g *Generator) GetSummary() GenerationSummary {
	return g.summary
}

// Run executes the complete generation process
func (g *Generator) Run(ctx context.Context, config Config) error {
	start := time.Now()
	g.summary = GenerationSummary{}
	d := g.diagnostics
	defer g.releaseCache()

	if err := config.Validate(); err != nil {
		return &models.GeneratorError{
			Type:    models.ErrorTypeValidation,
			Message: err.Error(),
			Cause:   err,
		}
	}

	directories := config.directories()
	d.Debug("Scanning directories: %v", directories)

	roots, err := g.scanner.Roots(directories)
	if err != nil {
		return &models.GeneratorError{
			Type:    models.ErrorTypeFileSystem,
			Message: fmt.Sprintf("Failed to resolve directories: %v", err),
			Cause:   err,
			Suggestions: []string{
				"Check that the specified directories exist",
				"Use ./... to scan a directory tree",
			},
			Context: map[string]interface{}{"directories": directories},
		}
	}

	d.StartProgress("Resolving module")
	module, err := g.moduleResolver.Resolve(config.ModuleName, roots[0].Dir)
	if err != nil {
		d.EndProgress(false, "")
		return &models.GeneratorError{
			Type:    models.ErrorTypeValidation,
			Message: fmt.Sprintf("Failed to resolve module name: %v", err),
			Cause:   err,
			Suggestions: []string{
				"Check your go.mod file exists and is valid",
				"Ensure you're running from the correct directory",
				"Try specifying --module flag explicitly",
			},
			Context: map[string]interface{}{
				"provided_module": config.ModuleName,
				"directories":     directories,
			},
		}
	}
	d.EndProgress(true, module.Path)
	if !module.AtLeast(MinimumGoVersion) {
		g.warn(fmt.Sprintf("module %s declares go %q; generated mappers import slices and maps, which need go %s or newer",
			module.Path, module.GoVersion, MinimumGoVersion))
	}

	d.StartProgress("Scanning directories for Go packages")
	packageDirs, err := g.scanner.ScanDirectories(directories)
	if err != nil {
		d.EndProgress(false, "")
		return &models.GeneratorError{
			Type:    models.ErrorTypeFileSystem,
			Message: fmt.Sprintf("Failed to scan directories: %v", err),
			Cause:   err,
			Context: map[string]interface{}{"directories": directories},
		}
	}
	if len(packageDirs) == 0 {
		d.EndProgress(false, "no Go packages")
		return &models.GeneratorError{
			Type:    models.ErrorTypeValidation,
			Message: "No Go packages found in specified directories",
			Suggestions: []string{
				"Ensure the directories contain Go files",
				"Try scanning parent directories or use './...' pattern",
			},
			Context: map[string]interface{}{"directories": directories},
		}
	}
	d.EndProgress(true, fmt.Sprintf("%d directories", len(packageDirs)))
	g.summary.PackagesScanned = len(packageDirs)

	decider, err := g.deciders.Resolve(config.Deciders...)
	if err != nil {
		return &models.GeneratorError{
			Type:    models.ErrorTypeValidation,
			Message: err.Error(),
			Cause:   err,
		}
	}

	pipe := pipeline.New(pipeline.Config{
		Naming:          naming.Policy{Prefix: config.Prefix, Suffix: config.Suffix},
		Decider:         decider,
		RequireBaseline: config.RequireBaseline,
		Lenient:         config.LenientAncestors,
		Logger:          g.logger,
	})

	d.StartProgress("Loading packages")
	pkgs, err := g.load(ctx, roots, module)
	if err != nil {
		d.EndProgress(false, "")
		return err
	}
	d.EndProgress(true, fmt.Sprintf("%d packages", len(pkgs)))

	d.PhaseHeader("Generating mappers")
	workers := config.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	outcomes := make([]packageOutcome, len(pkgs))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, pkg := range pkgs {
		group.Go(func() error {
			outcome, err := g.generatePackage(gctx, pipe, pkg, config.Dump)
			outcomes[i] = outcome
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	g.collect(outcomes)
	g.summary.Duration = time.Since(start)

	d.Summary("Summary", map[string]interface{}{
		"packages scanned":    g.summary.PackagesScanned,
		"packages generated":  g.summary.PackagesGenerated,
		"mapper types":        g.summary.TypesGenerated,
		"unsupported methods": g.summary.UnsupportedMethods,
		"files written":       len(g.summary.GeneratedFiles),
		"files unchanged":     len(g.summary.UnchangedFiles),
		"files removed":       len(g.summary.RemovedFiles),
	})
	g.logger.Info("generation finished",
		zap.Int("packages", g.summary.PackagesGenerated),
		zap.Int("types", g.summary.TypesGenerated),
		zap.Duration("duration", g.summary.Duration))
	return nil
}

// load runs the front end over every root, dropping packages seen twice
func (g *Generator) load(ctx context.Context, roots []LoadRoot, module utils.ModuleInfo) ([]*models.PackageMetadata, error) {
	seen := make(map[string]bool)
	var pkgs []*models.PackageMetadata

	for _, root := range roots {
		loaded, err := g.parser.LoadDirectory(ctx, root.Dir, root.Pattern)
		if err != nil {
			return nil, toGeneratorError(err, fmt.Sprintf("Failed to load packages in %s: %v", root.Dir, err), map[string]interface{}{
				"directory":   root.Dir,
				"module_name": module.Path,
			})
		}
		for _, pkg := range loaded {
			key := pkg.ImportPath
			if key == "" {
				key = pkg.PackagePath
			}
			if seen[key] || pkg.PackagePath == "" {
				continue
			}
			seen[key] = true
			for _, typeErr := range pkg.TypeErrors {
				g.diagnostics.Verbose("%s: %s", pkg.ImportPath, typeErr)
			}
			pkgs = append(pkgs, pkg)
		}
	}
	return pkgs, nil
}

// generatePackage renders and writes one mapper file per source file that
// declares mapping interfaces, then removes outputs whose source no longer
// declares any
func (g *Generator) generatePackage(ctx context.Context, pipe *pipeline.Pipeline, pkg *models.PackageMetadata, dump io.Writer) (packageOutcome, error) {
	outcome := packageOutcome{importPath: pkg.ImportPath}
	if outcome.importPath == "" {
		outcome.importPath = pkg.PackagePath
	}

	var (
		files  []*models.GeneratedFile
		owners = make(map[string]string)
	)
	for _, group := range groupBySource(pkg) {
		file, warnings, err := g.renderSource(ctx, pipe, pkg, group, dump)
		if err != nil {
			return outcome, err
		}
		outcome.warnings = append(outcome.warnings, warnings...)

		// every output shares the package scope
		for _, name := range file.Types {
			if other, ok := owners[name]; ok {
				return outcome, &models.GeneratorError{
					Type:    models.ErrorTypeGeneration,
					File:    file.FilePath,
					Message: fmt.Sprintf("mapper type %s is generated for both %s and %s", name, filepath.Base(other), filepath.Base(file.FilePath)),
					Suggestions: []string{
						"Rename one of the mapping interfaces",
						"Give one of the //mapgen::mapper annotations an explicit -Name",
					},
				}
			}
			owners[name] = file.FilePath
		}
		files = append(files, file)
	}

	produced := make(map[string]bool, len(files))
	for _, file := range files {
		state, err := g.writeFile(file)
		if err != nil {
			return outcome, &models.GeneratorError{
				Type:    models.ErrorTypeFileSystem,
				File:    file.FilePath,
				Message: fmt.Sprintf("Failed to write mapper file for package %s: %v", pkg.PackageName, err),
				Cause:   err,
				Suggestions: []string{
					"Check write permissions for the target directory",
					"Rename or remove the hand-written " + filepath.Base(file.FilePath),
				},
			}
		}
		produced[file.FilePath] = true
		outcome.files = append(outcome.files, fileOutcome{path: file.FilePath, types: len(file.Types), state: state})
		outcome.types += len(file.Types)
		outcome.unsupported += file.Unsupported
	}

	removed, err := g.removeStale(pkg, produced)
	if err != nil {
		return outcome, err
	}
	for _, path := range removed {
		outcome.files = append(outcome.files, fileOutcome{path: path, state: fileRemoved})
	}
	return outcome, nil
}

// renderSource renders the mapper file of one source file
func (g *Generator) renderSource(ctx context.Context, pipe *pipeline.Pipeline, pkg *models.PackageMetadata, group sourceGroup, dump io.Writer) (*models.GeneratedFile, []string, error) {
	target := models.GeneratedFileFor(filepath.Join(pkg.PackagePath, filepath.Base(group.source)))

	var warnings []string
	renderer := emit.NewRenderer(pkg.PackageName, pipe.Identity())
	renderer.SetBuildConstraint(pkg.BuildConstraints[group.source])
	for _, decl := range group.decls {
		result, err := pipe.Generate(ctx, decl, parser.ContextFor(decl))
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			return nil, nil, toGeneratorError(err, fmt.Sprintf("Failed to generate %s: %v", decl.Name, err), map[string]interface{}{
				"interface": decl.Name,
				"package":   pkg.ImportPath,
			})
		}
		warnings = append(warnings, result.Warnings...)
		if dump != nil {
			g.dump(dump, decl, result)
		}
		if err := renderer.Add(result); err != nil {
			return nil, nil, toGeneratorError(err, fmt.Sprintf("Failed to render %s: %v", decl.Name, err), map[string]interface{}{
				"interface": decl.Name,
				"package":   pkg.ImportPath,
			})
		}
	}

	file, err := renderer.Render(target)
	if err != nil {
		return nil, nil, toGeneratorError(err, fmt.Sprintf("Failed to render mappers for %s: %v", filepath.Base(group.source), err), map[string]interface{}{
			"package": pkg.ImportPath,
			"source":  group.source,
		})
	}
	return file, warnings, nil
}

// groupBySource splits the declarations of a package by the file declaring them
func groupBySource(pkg *models.PackageMetadata) []sourceGroup {
	index := make(map[string]int)
	var groups []sourceGroup
	for _, decl := range pkg.Declarations {
		source := decl.Location.File
		if source == "" {
			source = filepath.Join(pkg.PackagePath, pkg.PackageName+".go")
		}
		i, ok := index[source]
		if !ok {
			i = len(groups)
			index[source] = i
			groups = append(groups, sourceGroup{source: source})
		}
		groups[i].decls = append(groups[i].decls, decl)
	}
	return groups
}

// writeFile writes the generated file unless the content on disk is already identical.
// A file of the same name without the generated header is never overwritten.
func (g *Generator) writeFile(file *models.GeneratedFile) (fileState, error) {
	existing, err := os.ReadFile(file.FilePath)
	switch {
	case err == nil:
		if string(existing) == file.Content {
			return fileUnchanged, nil
		}
		generated, err := g.files.HasPrefixLine(file.FilePath, generatedMarker)
		if err != nil {
			return fileSkipped, err
		}
		if !generated {
			return fileSkipped, fmt.Errorf("refusing to overwrite %s: it was not generated by %s", file.FilePath, version.Name)
		}
	case !os.IsNotExist(err):
		return fileSkipped, err
	}

	g.logger.Debug("writing mapper file", zap.String("path", file.FilePath))
	if err := os.WriteFile(file.FilePath, []byte(file.Content), 0644); err != nil {
		return fileSkipped, err
	}
	g.files.Reader().Invalidate(file.FilePath)
	return fileWritten, nil
}

// removeStale deletes the generated files of pkg that were not produced this
// run. An output whose source exists but was left out of this build, for
// example by a GOOS constraint, is kept.
func (g *Generator) removeStale(pkg *models.PackageMetadata, produced map[string]bool) ([]string, error) {
	existing, err := g.files.GeneratedFilesIn(pkg.PackagePath)
	if err != nil {
		return nil, &models.GeneratorError{Type: models.ErrorTypeFileSystem, File: pkg.PackagePath, Message: err.Error(), Cause: err}
	}

	loaded := make(map[string]bool, len(pkg.SourceFiles))
	for _, source := range pkg.SourceFiles {
		loaded[filepath.Base(source)] = true
	}

	var stale []string
	for _, path := range existing {
		if produced[path] {
			continue
		}
		source, _ := models.SourceFileFor(path)
		if _, err := os.Stat(source); err == nil && !loaded[filepath.Base(source)] {
			continue
		}
		generated, err := g.files.HasPrefixLine(path, generatedMarker)
		if err != nil {
			return nil, &models.GeneratorError{Type: models.ErrorTypeFileSystem, File: path, Message: err.Error(), Cause: err}
		}
		if generated {
			stale = append(stale, path)
		}
	}

	removed, err := g.files.RemoveFiles(stale)
	if err != nil {
		return removed, &models.GeneratorError{Type: models.ErrorTypeFileSystem, File: pkg.PackagePath, Message: err.Error(), Cause: err}
	}
	return removed, nil
}

// releaseCache drops the file contents read during a run
func (g *Generator) releaseCache() {
	reader := g.files.Reader()
	g.logger.Debug("releasing file cache", zap.Int("files", reader.CachedFiles()))
	reader.Reset()
}

func (g *Generator) dump(w io.Writer, decl *models.AnnotatedDeclaration, result *models.GenerationResult) {
	g.dumpMu.Lock()
	defer g.dumpMu.Unlock()
	fmt.Fprintf(w, "=== %s (%s)\n", decl.Name, decl.Location)
	spew.Fdump(w, result)
}

// collect folds package outcomes into the summary in load order
func (g *Generator) collect(outcomes []packageOutcome) {
	d := g.diagnostics
	seen := make(map[string]bool)
	for _, o := range outcomes {
		if o.types > 0 {
			g.summary.PackagesGenerated++
		}
		g.summary.TypesGenerated += o.types
		g.summary.UnsupportedMethods += o.unsupported

		if len(o.files) > 0 {
			d.PhaseItem(fmt.Sprintf("%s: %d mappers", o.importPath, o.types))
			d.Indent()
		}
		for _, f := range o.files {
			switch f.state {
			case fileWritten:
				g.summary.GeneratedFiles = append(g.summary.GeneratedFiles, f.path)
				d.PhaseProgress(fmt.Sprintf("Writing %s (%d)", filepath.Base(f.path), f.types))
			case fileUnchanged:
				g.summary.UnchangedFiles = append(g.summary.UnchangedFiles, f.path)
				d.PhaseItem(fmt.Sprintf("%s (%d, unchanged)", filepath.Base(f.path), f.types))
			case fileRemoved:
				g.summary.RemovedFiles = append(g.summary.RemovedFiles, f.path)
				d.PhaseItem(filepath.Base(f.path) + " (removed)")
			}
		}
		if len(o.files) > 0 {
			d.Unindent()
		}

		for _, w := range o.warnings {
			if !seen[w] {
				seen[w] = true
				g.warn(w)
			}
		}
	}
	sort.Strings(g.summary.Warnings)
}

func (g *Generator) warn(message string) {
	g.summary.Warnings = append(g.summary.Warnings, message)
	g.diagnostics.Warn("%s", message)
}

// toGeneratorError classifies a pipeline or front-end error for reporting
func toGeneratorError(err error, message string, context map[string]interface{}) *models.GeneratorError {
	var genErr *models.GeneratorError
	if stderrors.As(err, &genErr) {
		return genErr
	}

	result := &models.GeneratorError{
		Type:    models.ErrorTypeGeneration,
		Message: message,
		Cause:   err,
		Context: context,
	}

	var mapgenErr errors.MapgenError
	if stderrors.As(err, &mapgenErr) {
		switch mapgenErr.ErrorCode() {
		case errors.SyntaxErrorCode, errors.SchemaErrorCode:
			result.Type = models.ErrorTypeAnnotationSyntax
		case errors.ValidationErrorCode, errors.MalformedIdentifierCode, errors.ConfigurationErrorCode:
			result.Type = models.ErrorTypeValidation
		case errors.FileSystemErrorCode:
			result.Type = models.ErrorTypeFileSystem
		}
		if loc := mapgenErr.Location(); !loc.IsEmpty() {
			result.File = loc.File
			result.Line = loc.Line
		}
		result.Suggestions = mapgenErr.Suggestions()
	}
	return result
}
