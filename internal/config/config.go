// Package config manages the project configuration stored in .goedit.yaml.
// Values are addressed with dotted keys such as "patch.verify_context" and
// can be overridden through GOEDIT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file name.
const FileName = ".goedit.yaml"

// EnvPrefix prefixes environment overrides: "diff.context" is read from
// GOEDIT_DIFF_CONTEXT.
const EnvPrefix = "GOEDIT_"

// ErrAlreadyInitialized is returned by Init when the file exists.
var ErrAlreadyInitialized = errors.New("project already initialized, use -force to overwrite")

// Settings is the typed view of the configuration used by the engine.
type Settings struct {
	DiffContext      int
	VerifyContext    bool
	IgnoreWhitespace bool
	DiffEnabled      bool
	CreateBackups    bool
	BackupDir        string
	Verbose          bool
}

var (
	intKeys = map[string]bool{
		"diff.context": true,
	}
	boolKeys = map[string]bool{
		"patch.verify_context":       true,
		"patch.ignore_whitespace":    true,
		"change_engine.diff_enabled": true,
		"safety.create_backups":      true,
		"general.verbose":            true,
	}
)

// Defaults returns a fresh copy of the default configuration tree.
func Defaults() map[string]any {
	return map[string]any{
		"diff": map[string]any{
			"context": 3,
		},
		"patch": map[string]any{
			"verify_context":    false,
			"ignore_whitespace": false,
		},
		"change_engine": map[string]any{
			"diff_enabled": true,
		},
		"safety": map[string]any{
			"create_backups": true,
			"backup_dir":     ".goedit-backups",
		},
		"general": map[string]any{
			"verbose": false,
		},
	}
}

// Config is a loaded configuration file layered over the defaults.
type Config struct {
	path      string
	values    map[string]any
	exists    bool
	lookupEnv func(string) (string, bool)
}

// Load reads FileName from dir. A missing file yields the defaults.
func Load(dir string) (*Config, error) {
	cfg := &Config{
		path:      filepath.Join(dir, FileName),
		values:    Defaults(),
		lookupEnv: os.LookupEnv,
	}

	data, err := os.ReadFile(cfg.path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded map[string]any
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	merge(cfg.values, loaded)
	cfg.exists = true
	return cfg, nil
}

// Init writes the default configuration to dir. An existing file is only
// replaced when force is set.
func Init(dir string, force bool) (*Config, error) {
	cfg := &Config{
		path:      filepath.Join(dir, FileName),
		values:    Defaults(),
		lookupEnv: os.LookupEnv,
	}
	if _, err := os.Stat(cfg.path); err == nil && !force {
		return nil, ErrAlreadyInitialized
	}
	if err := cfg.Save(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the location of the configuration file.
func (c *Config) Path() string {
	return c.path
}

// Exists reports whether the configuration file was present when loaded.
func (c *Config) Exists() bool {
	return c.exists
}

// Get returns the value stored under key. A non-empty environment override
// wins over the file and is returned as a string.
func (c *Config) Get(key string) (any, bool) {
	if c.lookupEnv != nil {
		if value, ok := c.lookupEnv(EnvKey(key)); ok && value != "" {
			return value, true
		}
	}

	var current any = c.values
	for _, part := range strings.Split(key, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = node[part]; !ok {
			return nil, false
		}
	}
	return current, true
}

// Set stores value under key, creating intermediate sections. Values for
// known integer and boolean keys are converted first.
func (c *Config) Set(key, value string) error {
	parts := strings.Split(key, ".")
	for _, part := range parts {
		if part == "" {
			return fmt.Errorf("invalid config key %q", key)
		}
	}

	var typed any = value
	switch {
	case intKeys[key]:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("config key %s expects an integer: %w", key, err)
		}
		typed = n
	case boolKeys[key]:
		typed = parseBool(value)
	}

	node := c.values
	for _, part := range parts[:len(parts)-1] {
		child, ok := node[part].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[part] = child
		}
		node = child
	}
	node[parts[len(parts)-1]] = typed
	return nil
}

// Save writes the configuration to its file.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c.values)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	c.exists = true
	return nil
}

// Flatten returns every value keyed by its dotted path.
func (c *Config) Flatten() map[string]any {
	out := map[string]any{}
	flatten(out, "", c.values)
	return out
}

// Keys returns the dotted keys of Flatten in sorted order.
func (c *Config) Keys() []string {
	flat := c.Flatten()
	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Settings returns the typed engine settings.
func (c *Config) Settings() Settings {
	return Settings{
		DiffContext:      c.intValue("diff.context", 3),
		VerifyContext:    c.boolValue("patch.verify_context", false),
		IgnoreWhitespace: c.boolValue("patch.ignore_whitespace", false),
		DiffEnabled:      c.boolValue("change_engine.diff_enabled", true),
		CreateBackups:    c.boolValue("safety.create_backups", true),
		BackupDir:        c.stringValue("safety.backup_dir", ".goedit-backups"),
		Verbose:          c.boolValue("general.verbose", false),
	}
}

// EnvKey returns the environment variable overriding key.
func EnvKey(key string) string {
	replacer := strings.NewReplacer(".", "_", "-", "_")
	return EnvPrefix + strings.ToUpper(replacer.Replace(key))
}

func (c *Config) intValue(key string, fallback int) int {
	value, ok := c.Get(key)
	if !ok {
		return fallback
	}
	switch v := value.(type) {
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

func (c *Config) boolValue(key string, fallback bool) bool {
	value, ok := c.Get(key)
	if !ok {
		return fallback
	}
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return parseBool(v)
	}
	return fallback
}

func (c *Config) stringValue(key, fallback string) string {
	value, ok := c.Get(key)
	if !ok || value == nil {
		return fallback
	}
	if s := fmt.Sprint(value); s != "" {
		return s
	}
	return fallback
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}

func merge(dst, src map[string]any) {
	for key, value := range src {
		incoming, isMap := value.(map[string]any)
		existing, hasMap := dst[key].(map[string]any)
		if isMap && hasMap {
			merge(existing, incoming)
			continue
		}
		dst[key] = value
	}
}

func flatten(out map[string]any, prefix string, node map[string]any) {
	for key, value := range node {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if child, ok := value.(map[string]any); ok {
			flatten(out, full, child)
			continue
		}
		out[full] = value
	}
}
