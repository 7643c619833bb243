package audit

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yanun0323/errors"
)

// DefaultInputSuffix is the extension audit trail files are written with.
const DefaultInputSuffix = ".tmp"

const outputSuffix = ".csv"

// CollectFiles lists the regular files in dir ending with suffix, sorted by name.
func CollectFiles(dir, suffix string) ([]string, error) {
	if suffix == "" {
		suffix = DefaultInputSuffix
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "read input dir").With("dir", dir)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, suffix) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// OutputPath derives the default output path of an input file by replacing
// its extension with .csv, or appending .csv when it has none.
func OutputPath(input string) string {
	dir, base := filepath.Split(input)
	ext := filepath.Ext(base)
	if ext == base {
		// dotfile such as ".tmp" has no extension
		ext = ""
	}
	return dir + strings.TrimSuffix(base, ext) + outputSuffix
}
