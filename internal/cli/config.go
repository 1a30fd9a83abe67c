package cli

import (
	"io"
	"time"

	"github.com/toyz/mapgen/internal/utils"
)

// Config holds the configuration for the CLI generator
type Config struct {
	// Directories is the list of directories to scan, Go-style patterns like ./... included
	Directories []string

	// ModuleName overrides the module path read from go.mod
	ModuleName string

	// Verbose enables detailed logging and error reporting
	Verbose bool

	// Workers bounds how many packages are generated at once. 0 means one per CPU.
	Workers int

	// Prefix and Suffix configure the naming policy; both empty selects the default "I" prefix
	Prefix string
	Suffix string

	// Deciders names the mapping deciders to chain, in order. Empty selects "fields".
	Deciders []string

	// RequireBaseline fails a run when baseline references are missing instead of warning
	RequireBaseline bool

	// LenientAncestors drops unsupported enclosing scopes instead of failing
	LenientAncestors bool

	// Dump, when set, receives a go-spew dump of every generation result
	Dump io.Writer

	// Debounce is the quiet period the watcher waits for before regenerating
	Debounce time.Duration
}

// DefaultDebounce is used by the watcher when Config.Debounce is zero
const DefaultDebounce = 300 * time.Millisecond

// Validate checks the configuration before a run
func (c Config) Validate() error {
	if err := utils.AtLeast("workers", 0)(c.Workers); err != nil {
		return err
	}
	if err := utils.IdentifierFragment("prefix")(c.Prefix); err != nil {
		return err
	}
	if err := utils.IdentifierFragment("suffix")(c.Suffix); err != nil {
		return err
	}
	if err := utils.ValidateEach("deciders", utils.NotEmpty("decider"))(c.Deciders); err != nil {
		return err
	}
	return utils.ValidateEach("directories", utils.NotEmpty("directory"))(c.Directories)
}

func (c Config) directories() []string {
	if len(c.Directories) == 0 {
		return []string{"./..."}
	}
	return c.Directories
}
