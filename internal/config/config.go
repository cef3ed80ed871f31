package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds noodle-bridge configuration.
type Config struct {
	Interpreter InterpreterConfig `toml:"interpreter"`
	Store       StoreConfig       `toml:"store"`
}

// InterpreterConfig locates the external Noodle interpreter.
type InterpreterConfig struct {
	// Binary is the interpreter executable, resolved via PATH when
	// not absolute.
	Binary string `toml:"binary"`
	// CoreDir is the working directory for module runs; it must
	// contain the noodle_dev package.
	CoreDir string `toml:"core_dir"`
	// EntryModule is passed to the interpreter's module runner (-m).
	EntryModule string `toml:"entry_module"`
	// TempDir overrides where temp scripts are written. Empty means
	// the system temp directory.
	TempDir string `toml:"temp_dir"`
	// TimeoutSeconds bounds a single run. 0 means no limit.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// StoreConfig controls where the encrypted store file lives.
type StoreConfig struct {
	Dir  string `toml:"dir"`  // empty means the config directory
	File string `toml:"file"` // store file name
}

// Default returns the default configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Interpreter: InterpreterConfig{
			Binary:      "python",
			CoreDir:     filepath.Join(home, "noodle-dev"),
			EntryModule: "noodle_dev.core_entry_point",
		},
		Store: StoreConfig{File: "secure.store"},
	}
}

// ConfigDir returns the noodle-bridge config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "noodle-bridge")
}

func configPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// StorePath returns the full path of the encrypted store file.
func (c *Config) StorePath() string {
	dir := c.Store.Dir
	if dir == "" {
		dir = ConfigDir()
	}
	file := c.Store.File
	if file == "" {
		file = "secure.store"
	}
	return filepath.Join(dir, file)
}

// RunTimeout returns the per-run limit as a duration, 0 for none.
func (c *Config) RunTimeout() time.Duration {
	return time.Duration(c.Interpreter.TimeoutSeconds) * time.Second
}

// Load reads the config file, falling back to defaults if it doesn't
// exist or fails to parse.
func Load() *Config {
	cfg := Default()

	data, err := os.ReadFile(configPath())
	if err != nil {
		return cfg
	}

	_ = toml.Unmarshal(data, cfg)
	return cfg
}

// Save writes the config to disk.
func Save(cfg *Config) error {
	path := configPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// EnsureExists creates the config file with defaults if it doesn't exist.
func EnsureExists() error {
	if _, err := os.Stat(configPath()); err == nil {
		return nil // already exists
	}
	return Save(Default())
}
