package fs

import (
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"harvest/internal/port"
)

// Walker lists the files under a directory that match the include patterns
// and none of the exclude patterns. Patterns are matched against the path
// relative to the root, using forward slashes.
type Walker struct {
	includes  []string
	excludes  []string
	recursive bool
}

var _ port.FileWalker = (*Walker)(nil)

func NewWalker(includes, excludes []string, recursive bool) *Walker {
	if len(includes) == 0 {
		includes = []string{"**/*"}
	}
	return &Walker{
		includes:  includes,
		excludes:  excludes,
		recursive: recursive,
	}
}

// Walk returns matching regular files ordered by relative path.
func (w *Walker) Walk(root string) ([]port.FileInfo, error) {
	var files []port.FileInfo

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if relPath == "." {
				return nil
			}
			if !w.recursive || w.shouldExclude(relPath+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		if w.shouldInclude(relPath) && !w.shouldExclude(relPath) {
			info, err := d.Info()
			if err != nil {
				return err
			}
			files = append(files, port.FileInfo{
				Path:    path,
				RelPath: relPath,
				ModTime: info.ModTime().Unix(),
				Size:    info.Size(),
			})
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

func (w *Walker) shouldInclude(path string) bool {
	for _, pattern := range w.includes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (w *Walker) shouldExclude(path string) bool {
	for _, pattern := range w.excludes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
