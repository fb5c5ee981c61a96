package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// collectSources expands path patterns into source files:
//
//	file        that file, whatever its extension
//	dir         sources directly in dir
//	dir/...     sources in dir and every directory below it
func (a *app) collectSources(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	var errs []error

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, pattern := range patterns {
		if dir, ok := strings.CutSuffix(pattern, "..."); ok {
			dir = strings.TrimSuffix(dir, string(filepath.Separator))
			dir = strings.TrimSuffix(dir, "/")
			if dir == "" {
				dir = "."
			}
			found, err := a.walkSources(dir)
			if err != nil {
				errs = append(errs, err)
			}
			for _, f := range found {
				add(f)
			}
			continue
		}

		info, err := os.Stat(pattern)
		if err != nil {
			errs = append(errs, fmt.Errorf("cannot access %s: %w", pattern, err))
			continue
		}
		if !info.IsDir() {
			add(pattern)
			continue
		}
		entries, err := os.ReadDir(pattern)
		if err != nil {
			errs = append(errs, fmt.Errorf("reading %s: %w", pattern, err))
			continue
		}
		for _, e := range entries {
			path := filepath.Join(pattern, e.Name())
			if !e.IsDir() && a.isSource(path) {
				add(path)
			}
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no source files found (extensions: %s)", strings.Join(a.cfg.Compile.Extensions, ", "))
	}
	sort.Strings(files)
	return files, nil
}

func (a *app) walkSources(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if a.isSource(path) && !a.cfg.Ignored(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return files, nil
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "vendor" || name == "node_modules"
}

// isSource reports whether path should be compiled. Generated Markdown is
// never compiled again.
func (a *app) isSource(path string) bool {
	if suffix := a.cfg.Compile.MarkdownSuffix; suffix != "" && strings.HasSuffix(path, suffix) {
		return false
	}
	return a.cfg.IsSource(path)
}
