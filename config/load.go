package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sambeau/rsx/pkg/rsx/codegen"
	perrors "github.com/sambeau/rsx/pkg/rsx/errors"
)

// FileName is the name searched for in the working directory and in the
// user config directory.
const FileName = "rsx.yaml"

// EnvConfig names the environment variable that points at a config file
const EnvConfig = "RSX_CONFIG"

// Load finds and loads the configuration. The search order is the explicit
// path, $RSX_CONFIG, ./rsx.yaml, then ~/.config/rsx/rsx.yaml. When no file
// is found the defaults are returned.
func Load(explicit string, getenv func(string) string) (*Config, error) {
	path, err := resolveConfigPath(explicit, getenv)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return Defaults(), nil
	}
	return LoadWithPath(path, getenv)
}

// LoadWithPath loads the config file at path on top of the defaults
func LoadWithPath(path string, getenv func(string) string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, perrors.New("IO-0001", map[string]any{"Operation": "read", "Path": path, "GoError": err.Error()})
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(interpolateEnv(data, getenv), cfg); err != nil {
		return nil, perrors.New("CONFIG-0004", map[string]any{"Field": "config file " + path, "GoError": err.Error()})
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	cfg.Path = abs
	cfg.BaseDir = filepath.Dir(abs)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveConfigPath returns the config file to load, or "" if there is
// none. An explicit or $RSX_CONFIG path that does not exist is an error.
func resolveConfigPath(explicit string, getenv func(string) string) (string, error) {
	for _, p := range []string{explicit, getenv(EnvConfig)} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			return "", perrors.New("IO-0001", map[string]any{"Operation": "open config", "Path": p, "GoError": err.Error()})
		}
		return p, nil
	}

	candidates := []string{FileName}
	home := getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	if home != "" {
		candidates = append(candidates, filepath.Join(home, ".config", "rsx", FileName))
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", nil
}

var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default}
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(m []byte) []byte {
		sub := envPattern.FindSubmatch(m)
		if v := getenv(string(sub[1])); v != "" {
			return []byte(v)
		}
		return sub[2]
	})
}

// ValidationError lists every problem found in a config
type ValidationError struct {
	Problems []error
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return e.Problems[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("configuration errors:")
	for _, p := range e.Problems {
		sb.WriteString("\n  - ")
		sb.WriteString(p.Error())
	}
	return sb.String()
}

// Unwrap exposes the individual problems to errors.As
func (e *ValidationError) Unwrap() []error { return e.Problems }

// Validate checks the config for values the compiler cannot use
func Validate(cfg *Config) error {
	var problems []error
	invalid := func(field, msg string) {
		problems = append(problems, perrors.New("CONFIG-0004", map[string]any{"Field": field, "GoError": msg}))
	}

	if cfg.Dialect.File == "" && !isBuiltin(cfg.Dialect.Name) {
		data := map[string]any{"Name": cfg.Dialect.Name}
		if s := perrors.FindClosestMatch(cfg.Dialect.Name, codegen.BuiltinNames()); s != "" {
			data["Suggestion"] = s
		}
		problems = append(problems, perrors.New("CONFIG-0001", data))
	}
	if cfg.Dialect.File != "" {
		if _, err := os.Stat(cfg.resolve(cfg.Dialect.File)); err != nil {
			invalid("dialect.file", err.Error())
		}
	}

	switch cfg.Placeholder.Mode {
	case "random", "counter":
	default:
		problems = append(problems, perrors.New("CONFIG-0003", map[string]any{"Mode": cfg.Placeholder.Mode}))
	}

	for _, ext := range cfg.Compile.Extensions {
		if !strings.HasPrefix(ext, ".") {
			invalid("compile.extensions", fmt.Sprintf("%q must start with '.'", ext))
		}
	}
	for _, pattern := range cfg.Watch.Ignore {
		if _, err := filepath.Match(pattern, ""); err != nil {
			invalid("watch.ignore", fmt.Sprintf("%q: %v", pattern, err))
		}
	}
	if cfg.Watch.Debounce < 0 {
		invalid("watch.debounce", "must not be negative")
	}

	switch cfg.Logging.Color {
	case "auto", "always", "never":
	default:
		invalid("logging.color", fmt.Sprintf("%q is not one of auto, always, never", cfg.Logging.Color))
	}

	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}

func isBuiltin(name string) bool {
	for _, n := range codegen.BuiltinNames() {
		if n == name {
			return true
		}
	}
	return false
}

// Warnings returns advisory messages about a config that is valid but
// probably not what was meant.
func Warnings(cfg *Config) []string {
	var warnings []string
	if cfg.Dialect.File != "" && cfg.Dialect.Name != "" && cfg.Dialect.Name != "dom" {
		warnings = append(warnings, fmt.Sprintf("dialect.name %q is ignored when dialect.file is set", cfg.Dialect.Name))
	}
	if cfg.Placeholder.Mode == "random" && cfg.Placeholder.Seed != 0 {
		warnings = append(warnings, "placeholder.seed makes random placeholders repeat between runs")
	}
	if len(cfg.Compile.Extensions) == 0 {
		warnings = append(warnings, "compile.extensions is empty; directories will yield no sources")
	}
	return warnings
}

// IsValidationError reports whether err came from Validate
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
