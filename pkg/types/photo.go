package types

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Metadata holds the EXIF fields shown alongside a preview.
type Metadata struct {
	DateTimeOriginal string `json:"date_time_original,omitempty"`
	CameraModel      string `json:"camera_model,omitempty"`
	Orientation      int    `json:"orientation,omitempty"` // EXIF orientation, 0 when absent
}

// Photo represents one image file found in the triage folder
type Photo struct {
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	ModTime  time.Time `json:"mod_time"`
	Metadata Metadata  `json:"metadata"`
}

// Name returns the base name of the file
func (p *Photo) Name() string {
	return filepath.Base(p.Path)
}

// Stem returns the path without its extension. Sidecar files share it.
func (p *Photo) Stem() string {
	return strings.TrimSuffix(p.Path, filepath.Ext(p.Path))
}

// ToJSON converts Photo to JSON string
func (p *Photo) ToJSON() string {
	jsonBytes, _ := json.Marshal(p)
	return string(jsonBytes)
}

// String returns a human-readable representation
func (p *Photo) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File: %s\n", p.Path))
	sb.WriteString(fmt.Sprintf("Size: %d bytes\n", p.Size))
	if p.Metadata.CameraModel != "" {
		sb.WriteString(fmt.Sprintf("Camera: %s\n", p.Metadata.CameraModel))
	}
	if p.Metadata.DateTimeOriginal != "" {
		sb.WriteString(fmt.Sprintf("Taken: %s\n", p.Metadata.DateTimeOriginal))
	}
	return sb.String()
}
