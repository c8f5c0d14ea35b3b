// Package scan enumerates the images of a single folder and reads their
// metadata.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cull/internal/config"
	"cull/internal/errors"
	"cull/internal/log"
	"cull/pkg/types"

	"github.com/gobwas/glob"
)

// Scanner lists the files of a folder whose extension is in the allow-list
type Scanner struct {
	pattern string
	matcher glob.Glob
}

// New compiles a scanner for the given extensions. Matching is
// case-insensitive; leading dots in exts are ignored.
func New(exts []string) (*Scanner, error) {
	exts = config.NormalizeExtensions(exts)
	if len(exts) == 0 {
		return nil, errors.NewConfigError("no extensions to scan for", "images.extensions", errors.InvalidConfig, nil)
	}

	lower := make([]string, len(exts))
	for i, ext := range exts {
		lower[i] = strings.ToLower(ext)
	}
	pattern := fmt.Sprintf("*.{%s}", strings.Join(lower, ","))

	matcher, err := glob.Compile(pattern)
	if err != nil {
		return nil, errors.NewConfigError("invalid extension pattern", pattern, errors.InvalidConfig, err)
	}
	return &Scanner{pattern: pattern, matcher: matcher}, nil
}

// Pattern returns the compiled glob, e.g. "*.{jpg,jpeg}"
func (s *Scanner) Pattern() string {
	return s.pattern
}

// Match reports whether name would be picked up by Scan
func (s *Scanner) Match(name string) bool {
	if strings.HasPrefix(name, "._") {
		return false
	}
	return s.matcher.Match(strings.ToLower(name))
}

// Scan returns the matching regular files directly inside dir, in lexical
// order. Subfolders, including the bad folder, are not descended into.
func (s *Scanner) Scan(dir string) ([]types.Photo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileError("folder does not exist", dir, errors.FileNotFound, err)
		}
		return nil, errors.NewFileError("cannot read folder", dir, errors.FileAccessDenied, err)
	}

	var photos []types.Photo
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !s.Match(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info
			log.Debugf("Skipping %s: %v", entry.Name(), err)
			continue
		}

		photos = append(photos, types.Photo{
			Path:    filepath.Join(dir, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	log.LogWithFields(log.F("dir", dir), log.F("count", len(photos))).Debug("Scanned folder")
	return photos, nil
}
