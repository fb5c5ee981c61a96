package config

import (
	"time"

	"github.com/sambeau/rsx/pkg/rsx/codegen"
)

// Config is the root configuration structure
type Config struct {
	// BaseDir is the directory holding the config file; relative paths in
	// the config resolve against it.
	BaseDir string `yaml:"-"`
	// Path is the file the config was loaded from, empty for defaults.
	Path string `yaml:"-"`

	Dialect     DialectConfig     `yaml:"dialect"`
	Placeholder PlaceholderConfig `yaml:"placeholder"`
	Known       KnownConfig       `yaml:"known"`
	Compile     CompileConfig     `yaml:"compile"`
	Watch       WatchConfig       `yaml:"watch"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// DialectConfig selects the code generation target. It may be written as
// a bare built-in name:
//
//	dialect: react
//
// or as a mapping that loads a dialect file or overrides single templates
// of a built-in one.
type DialectConfig struct {
	Name      string            `yaml:"name"`  // built-in dialect, default "dom"
	File      string            `yaml:"file"`  // YAML dialect file
	Fence     string            `yaml:"fence"` // language for compiled Markdown blocks
	Templates codegen.Templates `yaml:"templates"`
}

// UnmarshalYAML accepts a bare name or the full mapping
func (d *DialectConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err == nil {
		d.Name = name
		return nil
	}

	type plain DialectConfig
	return unmarshal((*plain)(d))
}

// PlaceholderConfig controls placeholder numbering
type PlaceholderConfig struct {
	Mode string `yaml:"mode"` // random or counter
	Seed uint64 `yaml:"seed"` // 0 picks a random seed; start value in counter mode
}

// KnownConfig extends the known-name table. An empty symbol removes a name.
type KnownConfig struct {
	Elements   map[string]string `yaml:"elements"`
	Attributes map[string]string `yaml:"attributes"`
}

// CompileConfig holds settings for `rsx compile`
type CompileConfig struct {
	Extensions     StringOrSlice `yaml:"extensions"`      // source extensions picked up from directories
	OutputSuffix   string        `yaml:"output_suffix"`   // replaces the source extension; default "." + fence
	MarkdownSuffix string        `yaml:"markdown_suffix"` // replaces ".md" for compiled Markdown
}

// WatchConfig holds settings for `rsx watch`
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
	Ignore   StringOrSlice `yaml:"ignore"` // glob patterns matched against base names
}

// LoggingConfig holds output settings
type LoggingConfig struct {
	Quiet bool   `yaml:"quiet"` // only report errors
	Color string `yaml:"color"` // auto, always, or never
}

// StringOrSlice accepts either a single string or a list of strings
type StringOrSlice []string

// UnmarshalYAML implements yaml.Unmarshaler
func (s *StringOrSlice) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var single string
	if err := unmarshal(&single); err == nil {
		*s = []string{single}
		return nil
	}

	var multi []string
	if err := unmarshal(&multi); err != nil {
		return err
	}
	*s = multi
	return nil
}

// Contains checks if the slice contains a string
func (s StringOrSlice) Contains(str string) bool {
	for _, v := range s {
		if v == str {
			return true
		}
	}
	return false
}

// Defaults returns a Config with sensible defaults
func Defaults() *Config {
	return &Config{
		BaseDir: ".",
		Dialect: DialectConfig{
			Name: "dom",
		},
		Placeholder: PlaceholderConfig{
			Mode: "random",
		},
		Compile: CompileConfig{
			Extensions:     StringOrSlice{".rsx", ".md"},
			MarkdownSuffix: ".gen.md",
		},
		Watch: WatchConfig{
			Debounce: 100 * time.Millisecond,
			Ignore:   StringOrSlice{"*~", "*.swp"},
		},
		Logging: LoggingConfig{
			Color: "auto",
		},
	}
}
