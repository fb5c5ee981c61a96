package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sambeau/rsx/pkg/rsx/codegen"
	perrors "github.com/sambeau/rsx/pkg/rsx/errors"
	"github.com/sambeau/rsx/pkg/rsx/known"
	"github.com/sambeau/rsx/pkg/rsx/placeholder"
)

// resolve makes a config-relative path absolute
func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.BaseDir, path)
}

// BuildDialect compiles the configured dialect. A dialect file wins over
// the built-in name; inline templates and fence override either.
func (c *Config) BuildDialect() (*codegen.Dialect, error) {
	var (
		d   *codegen.Dialect
		err error
	)
	if c.Dialect.File != "" {
		path := c.resolve(c.Dialect.File)
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			return nil, perrors.New("IO-0001", map[string]any{"Operation": "read dialect", "Path": path, "GoError": rerr.Error()})
		}
		d, err = codegen.ParseDialect(data)
	} else {
		d, err = codegen.Builtin(c.Dialect.Name)
	}
	if err != nil {
		return nil, err
	}

	if c.Dialect.Templates != (codegen.Templates{}) {
		if d, err = d.Override(c.Dialect.Templates); err != nil {
			return nil, err
		}
	}
	if c.Dialect.Fence != "" {
		d.Fence = c.Dialect.Fence
	}
	return d, nil
}

// Generator returns a fresh placeholder generator for one compile
func (c *Config) Generator() placeholder.Generator {
	if c.Placeholder.Mode == "counter" {
		start := c.Placeholder.Seed
		if start == 0 {
			start = 1
		}
		return placeholder.NewCounter(start)
	}
	return placeholder.NewRandom(c.Placeholder.Seed)
}

// KnownTable returns the default known-name table with the configured
// additions and removals applied.
func (c *Config) KnownTable() *known.Table {
	if len(c.Known.Elements) == 0 && len(c.Known.Attributes) == 0 {
		return known.Default()
	}
	return known.Default().Merge(c.Known.Elements, c.Known.Attributes)
}

// IsSource reports whether path has one of the compile extensions
func (c *Config) IsSource(path string) bool {
	return c.Compile.Extensions.Contains(filepath.Ext(path))
}

// IsMarkdown reports whether path is a Markdown document
func IsMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}

// Ignored reports whether the base name of path matches a watch ignore
// pattern.
func (c *Config) Ignored(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range c.Watch.Ignore {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// OutputPath returns where the compiled form of src is written. fence is
// the dialect's fence language, used when no output suffix is configured.
func (c *Config) OutputPath(src, fence string) string {
	stem := strings.TrimSuffix(src, filepath.Ext(src))
	if IsMarkdown(src) {
		return stem + c.Compile.MarkdownSuffix
	}
	suffix := c.Compile.OutputSuffix
	if suffix == "" {
		suffix = "." + fenceExtension(fence)
	}
	return stem + suffix
}

func fenceExtension(fence string) string {
	switch fence {
	case "rust":
		return "rs"
	case "javascript":
		return "js"
	case "typescript":
		return "ts"
	case "":
		return "out"
	}
	return fence
}
