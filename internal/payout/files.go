package payout

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// File describes a payout export on disk.
type File struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// ListFiles returns the CSV files in dir, newest first.
func ListFiles(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read payout dir: %w", err)
	}
	var files []File
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, File{
			Path:    filepath.Join(dir, e.Name()),
			Name:    e.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.SliceStable(files, func(i, j int) bool { return files[i].ModTime.After(files[j].ModTime) })
	return files, nil
}

// Newest returns the most recently modified CSV in dir.
func Newest(dir string) (File, error) {
	files, err := ListFiles(dir)
	if err != nil {
		return File{}, err
	}
	if len(files) == 0 {
		return File{}, fmt.Errorf("no payout CSV files in %s", dir)
	}
	return files[0], nil
}

// LoadFile opens and parses a payout export.
func LoadFile(path string) (*Export, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open payout file: %w", err)
	}
	defer f.Close()
	return Load(f)
}
