package organize

import "cull/pkg/types"

// Mover defines the file operations triage needs.
// This allows for dependency injection in tests and other parts of the application
type Mover interface {
	// MoveSidecars moves the files sharing an image's stem into badDir
	MoveSidecars(imagePath string, exts []string, badDir string) ([]types.MoveResult, error)

	// Restore undoes the moves recorded in results
	Restore(results []types.MoveResult) error
}

// Ensure Engine implements the Mover interface
var _ Mover = (*Engine)(nil)
