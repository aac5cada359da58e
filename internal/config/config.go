// Package config loads iw's JSONC configuration files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/tailscale/hujson"
)

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	QueueDir        string   `json:"queue_dir"`
	DefaultQueue    string   `json:"default_queue"`
	LastQueue       string   `json:"last_queue,omitempty"`
	DefaultPriority int      `json:"default_priority"`
	FirstRepDate    string   `json:"first_rep_date"`
	LockTimeoutMS   int      `json:"lock_timeout_ms"`
	AutoAdd         []string `json:"auto_add,omitempty"`
	VaultDir        string   `json:"vault_dir,omitempty"`

	// Resolved paths (computed, not serialized)
	EffectiveCwd string `json:"-"` // Absolute working directory (from -C flag or os.Getwd)
	VaultDirAbs  string `json:"-"` // Absolute vault root; links are relative to it
	QueueDirAbs  string `json:"-"` // Absolute path to the queue directory

	// Sources tracks which config files were loaded (for diagnostics)
	Sources ConfigSources `json:"-"`
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// fileConfig is one config file. Pointer fields distinguish "absent" from
// an explicit zero value.
type fileConfig struct {
	QueueDir        *string  `json:"queue_dir"`
	DefaultQueue    *string  `json:"default_queue"`
	LastQueue       *string  `json:"last_queue"`
	DefaultPriority *int     `json:"default_priority"`
	FirstRepDate    *string  `json:"first_rep_date"`
	LockTimeoutMS   *int     `json:"lock_timeout_ms"`
	AutoAdd         []string `json:"auto_add"`
	VaultDir        *string  `json:"vault_dir"`
}

// Defaults.
const (
	DefaultQueueDir      = "IW-Queues"
	DefaultQueueName     = "IW-Queue.md"
	DefaultPriority      = 30
	DefaultFirstRepDate  = "today"
	DefaultLockTimeoutMS = 2000
)

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		QueueDir:        DefaultQueueDir,
		DefaultQueue:    DefaultQueueName,
		DefaultPriority: DefaultPriority,
		FirstRepDate:    DefaultFirstRepDate,
		LockTimeoutMS:   DefaultLockTimeoutMS,
	}
}

// ConfigFileName is the default project config file name.
const ConfigFileName = ".iw.json"

// getGlobalConfigPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/iw/config.json if set, otherwise ~/.config/iw/config.json.
// Returns empty string if home directory cannot be determined.
func getGlobalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "iw", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "iw", "config.json")
	}

	return ""
}

// Overrides holds values given on the command line. Empty means no override.
type Overrides struct {
	QueueDir string
	VaultDir string
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	WorkDirOverride string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath      string            // -c/--config flag value
	Overrides       Overrides         // CLI overrides
	Env             map[string]string // environment variables
}

// Load loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config (~/.config/iw/config.json or $XDG_CONFIG_HOME/iw/config.json)
// 3. Project config file at default location (.iw.json, if exists)
// 4. Explicit config file via ConfigPath (if non-empty)
// 5. CLI overrides.
//
// All paths in the returned Config are resolved to absolute paths.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return Config{}, fmt.Errorf("cannot resolve working directory: %w", err)
	}

	cfg := DefaultConfig()

	globalCfg, globalPath, err := loadGlobalConfig(input.Env)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Global = globalPath
	cfg = mergeConfig(cfg, globalCfg)

	projectCfg, projectPath, err := loadProjectConfig(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Project = projectPath
	cfg = mergeConfig(cfg, projectCfg)

	if input.Overrides.QueueDir != "" {
		cfg.QueueDir = input.Overrides.QueueDir
	}

	if input.Overrides.VaultDir != "" {
		cfg.VaultDir = input.Overrides.VaultDir
	}

	err = validateConfig(cfg)
	if err != nil {
		return Config{}, err
	}

	cfg.EffectiveCwd = workDir
	cfg.VaultDirAbs = absFrom(workDir, cfg.VaultDir)
	cfg.QueueDirAbs = absFrom(cfg.VaultDirAbs, cfg.QueueDir)

	return cfg, nil
}

func absFrom(base, p string) string {
	if p == "" {
		return base
	}

	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}

	return filepath.Join(base, p)
}

// LockTimeout returns the configured lock timeout.
func (c Config) LockTimeout() time.Duration {
	return time.Duration(c.LockTimeoutMS) * time.Millisecond
}

// QueuePath resolves a queue name to its document path. An empty name means
// the last loaded queue, falling back to default_queue. Names without an
// extension get ".md"; relative names live in the queue directory.
func (c Config) QueuePath(name string) string {
	if name == "" {
		name = c.LastQueue
	}

	if name == "" {
		name = c.DefaultQueue
	}

	if filepath.Ext(name) == "" {
		name += ".md"
	}

	return absFrom(c.QueueDirAbs, name)
}

// ProjectConfigPath returns the file that project-level settings such as
// last_queue are written to.
func (c Config) ProjectConfigPath() string {
	if c.Sources.Project != "" {
		return c.Sources.Project
	}

	return filepath.Join(c.EffectiveCwd, ConfigFileName)
}

// MatchesAutoAdd reports whether the slash-separated relative path matches
// one of the auto_add patterns. Patterns without a slash match the base name.
func (c Config) MatchesAutoAdd(rel string) bool {
	rel = filepath.ToSlash(rel)

	for _, pattern := range c.AutoAdd {
		subject := rel
		if !strings.Contains(pattern, "/") {
			subject = path.Base(rel)
		}

		if ok, _ := path.Match(pattern, subject); ok {
			return true
		}
	}

	return false
}

// loadGlobalConfig loads the global user config file if it exists.
// Returns the config, the path if loaded, and any error.
func loadGlobalConfig(env map[string]string) (fileConfig, string, error) {
	globalCfgPath := getGlobalConfigPath(env)
	if globalCfgPath == "" {
		return fileConfig{}, "", nil
	}

	globalCfg, loaded, err := loadConfigFile(globalCfgPath, false)
	if err != nil {
		return fileConfig{}, "", err
	}

	if !loaded {
		return fileConfig{}, "", nil
	}

	return globalCfg, globalCfgPath, nil
}

// loadProjectConfig loads the project config file (.iw.json) or an explicit config file.
// Returns the config, the path if loaded, and any error.
func loadProjectConfig(workDir, configPath string) (fileConfig, string, error) {
	var cfgFile string

	var mustExist bool

	if configPath != "" {
		// Explicit config file - must exist
		cfgFile = configPath
		if !filepath.IsAbs(cfgFile) {
			cfgFile = filepath.Join(workDir, cfgFile)
		}

		mustExist = true

		_, statErr := os.Stat(cfgFile)
		if statErr != nil {
			return fileConfig{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
		}
	} else {
		// Default project config file - optional
		cfgFile = filepath.Join(workDir, ConfigFileName)
	}

	fileCfg, loaded, err := loadConfigFile(cfgFile, mustExist)
	if err != nil {
		return fileConfig{}, "", err
	}

	if !loaded {
		return fileConfig{}, "", nil
	}

	return fileCfg, cfgFile, nil
}

// loadConfigFile loads a config file. If mustExist is false, missing files return zero config.
// Returns the config, whether the file was loaded, and any error.
func loadConfigFile(path string, mustExist bool) (fileConfig, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return fileConfig{}, false, nil
		}

		if mustExist {
			return fileConfig{}, false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
		}

		return fileConfig{}, false, nil
	}

	cfg, parseErr := parseConfig(data)
	if parseErr != nil {
		return fileConfig{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, parseErr)
	}

	return cfg, true, nil
}

func parseConfig(data []byte) (fileConfig, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg fileConfig

	unmarshalErr := json.Unmarshal(standardized, &cfg)
	if unmarshalErr != nil {
		return fileConfig{}, fmt.Errorf("invalid JSON: %w", unmarshalErr)
	}

	if cfg.QueueDir != nil && *cfg.QueueDir == "" {
		return fileConfig{}, ErrQueueDirEmpty
	}

	if cfg.DefaultQueue != nil && *cfg.DefaultQueue == "" {
		return fileConfig{}, ErrDefaultQueueEmpty
	}

	return cfg, nil
}

func mergeConfig(base Config, overlay fileConfig) Config {
	if overlay.QueueDir != nil {
		base.QueueDir = *overlay.QueueDir
	}

	if overlay.DefaultQueue != nil {
		base.DefaultQueue = *overlay.DefaultQueue
	}

	if overlay.LastQueue != nil {
		base.LastQueue = *overlay.LastQueue
	}

	if overlay.DefaultPriority != nil {
		base.DefaultPriority = *overlay.DefaultPriority
	}

	if overlay.FirstRepDate != nil {
		base.FirstRepDate = *overlay.FirstRepDate
	}

	if overlay.LockTimeoutMS != nil {
		base.LockTimeoutMS = *overlay.LockTimeoutMS
	}

	if overlay.AutoAdd != nil {
		base.AutoAdd = overlay.AutoAdd
	}

	if overlay.VaultDir != nil {
		base.VaultDir = *overlay.VaultDir
	}

	return base
}

func validateConfig(cfg Config) error {
	if cfg.QueueDir == "" {
		return ErrQueueDirEmpty
	}

	if cfg.DefaultQueue == "" {
		return ErrDefaultQueueEmpty
	}

	if cfg.DefaultPriority < 0 || cfg.DefaultPriority > 100 {
		return fmt.Errorf("%w: got %d", ErrPriorityRange, cfg.DefaultPriority)
	}

	if cfg.LockTimeoutMS <= 0 {
		return fmt.Errorf("%w: got %d", ErrLockTimeout, cfg.LockTimeoutMS)
	}

	for _, p := range cfg.AutoAdd {
		if _, err := path.Match(p, ""); err != nil {
			return fmt.Errorf("%w %q: %w", ErrBadAutoAddPattern, p, err)
		}
	}

	return nil
}

// FormatConfig returns the config as formatted JSON.
func FormatConfig(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("formatting config: %w", err)
	}

	return string(data), nil
}
