package scan

import (
	"os"
	"sync"

	"cull/internal/errors"
	"cull/internal/log"
	"cull/pkg/types"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
)

// MimeJPEG is the only content type accepted for previews
const MimeJPEG = "image/jpeg"

var registerOnce sync.Once

// ReadMetadata extracts the EXIF fields shown alongside a preview.
// Files without EXIF data yield an empty Metadata and no error.
func ReadMetadata(path string) (types.Metadata, error) {
	registerOnce.Do(func() {
		exif.RegisterParsers(mknote.All...)
	})

	var meta types.Metadata
	logger := log.LogWithFields(log.F("path", path))

	file, err := os.Open(path)
	if err != nil {
		return meta, errors.NewFileError("failed to open image file for exif", path, errors.FileAccessDenied, err)
	}
	defer file.Close()

	x, err := exif.Decode(file)
	if err != nil {
		logger.Debugf("No EXIF data found or failed to decode for %s: %v", path, err)
		return meta, nil
	}

	if dt, err := x.Get(exif.DateTimeOriginal); err == nil {
		meta.DateTimeOriginal, _ = dt.StringVal()
	}
	if model, err := x.Get(exif.Model); err == nil {
		meta.CameraModel, _ = model.StringVal()
	}
	if o, err := x.Get(exif.Orientation); err == nil {
		if v, err := o.Int(0); err == nil {
			meta.Orientation = v
		}
	}

	return meta, nil
}

// Sniff returns the detected content type of path
func Sniff(path string) (string, error) {
	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return "", errors.NewFileError("failed to detect MIME type", path, errors.FileOperationFailed, err)
	}
	return mime.String(), nil
}
