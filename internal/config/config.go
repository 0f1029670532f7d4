package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	AppName        = "codex-todo"
	ConfigFileName = "codex_todo.toml"
	DefaultDBName  = "todo.db"
	DBPathEnv      = "DB_PATH"
)

// ErrNoDBPath means no config file or environment variable named a database.
var ErrNoDBPath = errors.New("DB_PATH must be set via config file or DB_PATH environment variable")

// Keymap values are space separated key names, e.g. "n pgdown".
type Keymap struct {
	Add       string `toml:"add"`
	Toggle    string `toml:"toggle"`
	Delete    string `toml:"delete"`
	Calendar  string `toml:"calendar"`
	EditDue   string `toml:"edit_due"`
	Quit      string `toml:"quit"`
	Confirm   string `toml:"confirm"`
	Cancel    string `toml:"cancel"`
	NextMonth string `toml:"next_month"`
	PrevMonth string `toml:"prev_month"`
}

type Config struct {
	DBPath   string `toml:"db_path"`
	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`
	Keys     Keymap `toml:"keys"`
}

// SearchPaths lists the config files read by Load, lowest precedence first.
func SearchPaths() []string {
	home, _ := os.UserHomeDir()
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" && home != "" {
		xdg = filepath.Join(home, ".config")
	}

	var paths []string
	if xdg != "" {
		paths = append(paths, filepath.Join(xdg, AppName, ConfigFileName))
	}
	if home != "" {
		paths = append(paths, filepath.Join(home, "."+ConfigFileName))
	}
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, "."+ConfigFileName))
	}
	return paths
}

// DefaultPath is where `init` writes a fresh config.
func DefaultPath() string {
	paths := SearchPaths()
	if len(paths) == 0 {
		return ConfigFileName
	}
	return paths[0]
}

// Load merges every existing file in paths over the defaults, later files
// winning for the keys they set, then applies the DB_PATH environment
// variable. Missing files are skipped. The result is not validated.
func Load(paths ...string) (Config, error) {
	cfg := defaultConfig()
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if env := os.Getenv(DBPathEnv); env != "" {
		cfg.DBPath = env
	}
	cfg.DBPath = ExpandHome(cfg.DBPath)
	cfg.LogFile = ExpandHome(cfg.LogFile)
	return cfg, nil
}

// Validate reports configuration that makes startup impossible.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return ErrNoDBPath
	}
	return nil
}

// LogPath returns the configured log file, defaulting to a file next to the database.
func (c Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	if c.DBPath == "" || strings.HasPrefix(c.DBPath, "file:") {
		return ""
	}
	return filepath.Join(filepath.Dir(c.DBPath), AppName+".log")
}

// WriteDefault writes a starter config to path. An existing file is left alone.
func WriteDefault(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); err == nil {
		return cfg, fmt.Errorf("config already exists: %s", path)
	}
	cfg.DBPath = defaultDBPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return cfg, fmt.Errorf("create config dir: %w", err)
	}
	if err := write(path, cfg); err != nil {
		return cfg, fmt.Errorf("write config: %w", err)
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultDBPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return DefaultDBName
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, AppName, DefaultDBName)
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}

func defaultConfig() Config {
	return Config{
		LogLevel: "info",
		Keys: Keymap{
			Add:       "a",
			Toggle:    "t",
			Delete:    "d",
			Calendar:  "c",
			EditDue:   "e",
			Quit:      "q",
			Confirm:   "enter",
			Cancel:    "esc",
			NextMonth: "n pgdown",
			PrevMonth: "p pgup",
		},
	}
}
