package organize

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"cull/internal/config"
	"cull/internal/errors"
	"cull/internal/log"
	"cull/pkg/types"
)

// Engine moves image files and their sidecars in and out of the bad folder
type Engine struct {
	mu        sync.Mutex // Serializes collision checks with the rename that follows
	dryRun    bool
	collision string
}

// New creates an engine that overwrites on collision, like a plain rename
func New() *Engine {
	return &Engine{collision: config.CollisionOverwrite}
}

// NewWithConfig creates a new engine from the triage settings
func NewWithConfig(cfg *config.Config) *Engine {
	return &Engine{
		dryRun:    cfg.Triage.DryRun,
		collision: cfg.Triage.Collision,
	}
}

// SetDryRun sets whether operations should be performed or just simulated
func (e *Engine) SetDryRun(dryRun bool) {
	e.dryRun = dryRun
}

// IsDryRun returns whether the engine is in dry run mode
func (e *Engine) IsDryRun() bool {
	return e.dryRun
}

// SetCollision sets the collision strategy
func (e *Engine) SetCollision(strategy string) {
	e.collision = strategy
}

// MoveFile moves a file from source to destination, handling collisions based
// on the configured strategy. It returns the path the file ended up at, or ""
// when the move was skipped or simulated.
func (e *Engine) MoveFile(src, dest string) (string, error) {
	cleanSrc := filepath.Clean(src)
	cleanDest := filepath.Clean(dest)

	if cleanSrc == cleanDest {
		log.Debugf("Source and destination are the same, skipping: %s", src)
		return "", nil
	}

	srcInfo, err := os.Stat(cleanSrc)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewFileError("source file error", cleanSrc, errors.FileNotFound, err)
		}
		return "", errors.NewFileError("source file error", cleanSrc, errors.FileAccessDenied, err)
	}
	if srcInfo.IsDir() {
		return "", errors.NewFileError("cannot move directory as file", cleanSrc, errors.InvalidPath, nil)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.dryRun {
		log.Infof("Would move %s -> %s", src, cleanDest)
		return "", nil
	}

	// The bad folder is created on first use
	if err := os.MkdirAll(filepath.Dir(cleanDest), 0755); err != nil {
		return "", errors.NewFileError("failed to create destination directory", filepath.Dir(cleanDest), errors.FileOperationFailed, err)
	}

	finalDest, err := e.handleCollision(cleanSrc, cleanDest)
	if err != nil {
		return "", err
	}
	if finalDest == "" {
		return "", nil
	}

	if err := os.Rename(cleanSrc, finalDest); err != nil {
		return "", errors.NewFileError("failed to move file", cleanSrc, errors.FileOperationFailed, err)
	}

	log.LogWithFields(log.F("from", src), log.F("to", finalDest)).Debug("Moved file")
	return finalDest, nil
}

// handleCollision implements collision resolution strategies.
// It returns the final destination path and an error if any.
// If the file should be skipped, it returns an empty string and nil error.
func (e *Engine) handleCollision(src, dest string) (string, error) {
	_, err := os.Stat(dest)
	if os.IsNotExist(err) {
		return dest, nil
	}
	if err != nil {
		return "", fmt.Errorf("error checking destination %s: %w", dest, err)
	}

	switch e.collision {
	case config.CollisionSkip:
		log.Infof("Skipping move for %s, %s already exists", src, dest)
		return "", nil

	case config.CollisionOverwrite, "":
		log.Warnf("Overwriting %s", dest)
		return dest, nil

	case config.CollisionRename:
		return e.findUniqueDestName(dest)

	default:
		return "", errors.NewConfigError("unknown collision strategy", e.collision, errors.InvalidConfig, nil)
	}
}

// findUniqueDestName finds a unique filename by adding counter to the basename
func (e *Engine) findUniqueDestName(originalPath string) (string, error) {
	ext := filepath.Ext(originalPath)
	base := strings.TrimSuffix(originalPath, ext)

	for counter := 1; counter <= 1000; counter++ {
		newName := fmt.Sprintf("%s_(%d)%s", base, counter, ext)

		if _, err := os.Stat(newName); os.IsNotExist(err) {
			log.Infof("Renaming destination to %s due to collision", newName)
			return newName, nil
		}
	}

	return "", fmt.Errorf("failed to find unique name for %s after 1000 attempts", originalPath)
}

// SidecarPaths returns the candidate files sharing imagePath's stem for each
// extension: the extension as configured first, then its upper and lower case
// forms. Duplicates are dropped.
func SidecarPaths(imagePath string, exts []string) []string {
	stem := strings.TrimSuffix(imagePath, filepath.Ext(imagePath))
	seen := make(map[string]bool)
	var paths []string
	for _, ext := range exts {
		for _, variant := range []string{ext, strings.ToUpper(ext), strings.ToLower(ext)} {
			p := stem + "." + variant
			if !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		}
	}
	return paths
}

// MoveSidecars moves every existing file sharing imagePath's stem with one of
// exts into badDir. Missing sidecars are skipped silently. On the first
// failure it stops and returns the results gathered so far along with the
// error, so callers can restore what was already moved.
func (e *Engine) MoveSidecars(imagePath string, exts []string, badDir string) ([]types.MoveResult, error) {
	var results []types.MoveResult
	for _, src := range SidecarPaths(imagePath, exts) {
		info, err := os.Stat(src)
		if err != nil || info.IsDir() {
			continue
		}

		dest := filepath.Join(badDir, filepath.Base(src))
		result := types.MoveResult{SourcePath: src, DestinationPath: dest}

		final, err := e.MoveFile(src, dest)
		if err != nil {
			result.Error = err
			results = append(results, result)
			return results, err
		}
		if final != "" {
			result.DestinationPath = final
			result.Moved = true
		}
		results = append(results, result)
	}
	return results, nil
}

// Restore moves files recorded in results back to where they came from. It
// is all or nothing: if any original path is taken again nothing is moved,
// and if a rename fails the files already restored go back to the bad folder.
func (e *Engine) Restore(results []types.MoveResult) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, r := range results {
		if !r.Moved {
			continue
		}
		if _, err := os.Stat(r.SourcePath); err == nil {
			err := errors.NewFileError("refusing to overwrite", r.SourcePath, errors.FileOperationFailed, nil)
			log.LogWithError(err).Warn("Restore skipped")
			return err
		}
	}

	var restored []types.MoveResult
	for _, r := range results {
		if !r.Moved {
			continue
		}
		if err := os.Rename(r.DestinationPath, r.SourcePath); err != nil {
			ferr := errors.NewFileError("failed to restore file", r.DestinationPath, errors.FileOperationFailed, err)
			for i := len(restored) - 1; i >= 0; i-- {
				back := restored[i]
				if rerr := os.Rename(back.SourcePath, back.DestinationPath); rerr != nil {
					log.LogWithError(rerr).With(log.F("path", back.SourcePath)).Error("Failed to return restored file")
				}
			}
			return ferr
		}
		restored = append(restored, r)
		log.LogWithFields(log.F("from", r.DestinationPath), log.F("to", r.SourcePath)).Debug("Restored file")
	}
	return nil
}
