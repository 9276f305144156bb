// Package walker enumerates the input tree and mirrors its structure under
// the output root, yielding the flat work-item list the executor drains.
package walker

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"crunch/internal/fileio"
	"crunch/internal/models"
)

// Collect builds the work list for an input path. A regular file yields a
// single item; a directory is walked recursively and every regular file is
// mirrored relative to the output root. Mirror directories are created as
// they are encountered. Symlinks and special files are skipped.
func Collect(inputPath, outputPath string) ([]models.WorkItem, error) {
	if !fileio.IsDirectory(inputPath) {
		info, err := os.Stat(inputPath)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", inputPath, err)
		}
		if !info.Mode().IsRegular() {
			return nil, fmt.Errorf("%s is not a regular file", inputPath)
		}
		if parent := filepath.Dir(outputPath); parent != "." {
			if err := fileio.EnsureDirectoryExists(parent); err != nil {
				return nil, err
			}
		}
		return []models.WorkItem{{
			Source:      inputPath,
			Destination: outputPath,
			Size:        info.Size(),
		}}, nil
	}

	if err := fileio.EnsureDirectoryExists(outputPath); err != nil {
		return nil, err
	}

	var items []models.WorkItem
	err := filepath.WalkDir(inputPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(inputPath, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		mirror := filepath.Join(outputPath, rel)
		if d.IsDir() {
			return fileio.EnsureDirectoryExists(mirror)
		}
		if !d.Type().IsRegular() {
			log.Debug().Str("path", path).Msg("skipping non-regular file")
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		items = append(items, models.WorkItem{
			Source:      path,
			Destination: mirror,
			Size:        info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", inputPath, err)
	}
	return items, nil
}
