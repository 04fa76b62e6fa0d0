// Package extract implements the file-understanding pipeline: format
// classification, structured-data summaries and the text-extraction
// fallback chain.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"datasoph/internal/models"
)

// ErrUnsupportedFormat marks an extension outside both allow-lists. Callers
// surface it to the user as a rejection, never as an internal failure.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrLoadFailed marks a file that matched an allow-listed format but could
// not be parsed. Wrap it with detail so the user can retry with another file.
var ErrLoadFailed = errors.New("file load failed")

var tabularExts = map[string]models.FileType{
	".csv":  models.FileTypeTabular,
	".xlsx": models.FileTypeTabular,
	".xls":  models.FileTypeTabular,
	".json": models.FileTypeTabular,
}

var textExts = map[string]models.FileType{
	".pdf":  models.FileTypePDF,
	".png":  models.FileTypeImage,
	".jpg":  models.FileTypeImage,
	".jpeg": models.FileTypeImage,
	".tiff": models.FileTypeImage,
	".bmp":  models.FileTypeImage,
	".gif":  models.FileTypeImage,
	".docx": models.FileTypeDocx,
	".txt":  models.FileTypeText,
	".md":   models.FileTypeText,
}

// Classify routes a file path to a processing path by extension. It is pure:
// no filesystem access, no side effects.
func Classify(path string) (models.ProcessKind, models.FileType, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ft, ok := tabularExts[ext]; ok {
		return models.ProcessTabular, ft, nil
	}
	if ft, ok := textExts[ext]; ok {
		return models.ProcessText, ft, nil
	}
	return "", "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
}

// Supported reports whether the extension belongs to either allow-list.
func Supported(path string) bool {
	_, _, err := Classify(path)
	return err == nil
}
