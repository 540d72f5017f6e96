// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindFilesByExtension returns every file under root whose name ends with
// extension, compared case-insensitively, in lexical order. A root that is a
// regular file is returned as is when it matches.
func FindFilesByExtension(root string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}
	extension = strings.ToLower(extension)

	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if strings.HasSuffix(strings.ToLower(root), extension) {
			return []string{root}, nil
		}
		return nil, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}

// Collect runs FindFilesByExtension over every path and returns the union
// without duplicates, keeping the order of first appearance. Paths that do not
// exist are skipped when skipMissing is set.
func Collect(paths []string, extension string, skipMissing bool) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})
	for _, p := range paths {
		files, err := FindFilesByExtension(p, extension)
		if err != nil {
			if skipMissing && os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		for _, f := range files {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			all = append(all, f)
		}
	}
	return all, nil
}
