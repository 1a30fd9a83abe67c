package cli

import (
	"fmt"

	"github.com/toyz/mapgen/internal/models"
	"github.com/toyz/mapgen/internal/utils"
)

// Cleaner handles cleaning up generated files
type Cleaner struct {
	scanner *DirectoryScanner
	files   *utils.FileProcessor
}

// NewCleaner creates a new cleaner
func NewCleaner() *Cleaner {
	return &Cleaner{
		scanner: NewDirectoryScanner(),
		files:   utils.NewFileProcessor(models.IsGeneratedFileName),
	}
}

// CleanGeneratedFiles removes the generated mapper files under directories and
// returns the removed paths. Files named like generated output that lack the
// generated header are left alone.
func (c *Cleaner) CleanGeneratedFiles(directories []string) ([]string, error) {
	if len(directories) == 0 {
		directories = []string{"./..."}
	}

	roots, err := c.scanner.Roots(directories)
	if err != nil {
		return nil, err
	}

	var candidates []string
	for _, root := range roots {
		found, err := c.candidates(root)
		if err != nil {
			return nil, fmt.Errorf("failed to clean directory %s: %w", root.Dir, err)
		}
		candidates = append(candidates, found...)
	}

	var owned []string
	for _, path := range candidates {
		generated, err := c.files.HasPrefixLine(path, generatedMarker)
		if err != nil {
			return nil, err
		}
		if generated {
			owned = append(owned, path)
		}
	}
	return c.files.RemoveFiles(owned)
}

func (c *Cleaner) candidates(root LoadRoot) ([]string, error) {
	if root.Recursive {
		return c.files.GeneratedFiles(root.Dir)
	}

	return c.files.GeneratedFilesIn(root.Dir)
}
