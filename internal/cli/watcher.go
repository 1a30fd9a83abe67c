package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/toyz/mapgen/internal/models"
	"github.com/toyz/mapgen/internal/utils"
)

// Watcher regenerates mappers whenever Go sources under the configured directories change
type Watcher struct {
	scanner  *DirectoryScanner
	config   Config
	debounce time.Duration
	logger   *zap.Logger
	run      func(ctx context.Context) error

	// OnRun, when set, is called after every regeneration with its result
	OnRun func(error)

	fsw     *fsnotify.Watcher
	watched map[string]bool
}

// NewWatcher creates a watcher driving gen with config
func NewWatcher(gen *Generator, config Config, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	debounce := config.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		scanner:  NewDirectoryScanner(),
		config:   config,
		debounce: debounce,
		logger:   logger,
		run: func(ctx context.Context) error {
			return gen.Run(ctx, config)
		},
		watched: make(map[string]bool),
	}
}

// Run generates once, then keeps regenerating after changes until ctx is done.
// Generation failures are reported through OnRun and the logger, not returned.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watcher: create fsnotify: %w", err)
	}
	defer fsw.Close()
	w.fsw = fsw

	roots, err := w.scanner.Roots(w.config.directories())
	if err != nil {
		return err
	}
	for _, root := range roots {
		if err := w.addRoot(root); err != nil {
			return err
		}
	}
	w.logger.Info("watching for changes", zap.Int("directories", len(w.watched)))

	w.regenerate(ctx)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.isNewDir(event, roots) {
				if err := w.addTree(event.Name); err != nil {
					w.logger.Warn("watcher: cannot watch new directory", zap.String("path", event.Name), zap.Error(err))
				}
			}
			if !relevant(event) {
				continue
			}
			w.logger.Debug("source changed", zap.String("path", event.Name), zap.Stringer("op", event.Op))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			w.regenerate(ctx)
		}
	}
}

func (w *Watcher) regenerate(ctx context.Context) {
	err := w.run(ctx)
	if err != nil && ctx.Err() == nil {
		w.logger.Error("generation failed", zap.Error(err))
	}
	if w.OnRun != nil {
		w.OnRun(err)
	}
}

func (w *Watcher) addRoot(root LoadRoot) error {
	if root.Recursive {
		return w.addTree(root.Dir)
	}
	return w.add(root.Dir)
}

// addTree watches dir and every directory below it the scanner would descend into
func (w *Watcher) addTree(dir string) error {
	filter := utils.DefaultDirectoryFilter()
	return filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if path != dir && !filter(path, entry) {
			return filepath.SkipDir
		}
		return w.add(path)
	})
}

func (w *Watcher) add(dir string) error {
	if w.watched[dir] {
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("watcher: watch %s: %w", dir, err)
	}
	w.watched[dir] = true
	return nil
}

// isNewDir reports whether event created a directory inside a recursive root
func (w *Watcher) isNewDir(event fsnotify.Event, roots []LoadRoot) bool {
	if !event.Has(fsnotify.Create) {
		return false
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.IsDir() {
		return false
	}
	for _, root := range roots {
		if root.Recursive && strings.HasPrefix(event.Name, root.Dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// relevant reports whether event touches a hand-written Go source file
func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	return strings.HasSuffix(name, ".go") &&
		!strings.HasSuffix(name, "_test.go") &&
		!models.IsGeneratedFileName(name)
}
