package clickup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrNoToken = errors.New("clickup: no api token configured")

// Config is the persisted credentials and defaults, stored at
// <root>/config.yaml (root defaults to ~/.clickup).
type Config struct {
	Token            string `yaml:"token"`
	DefaultWorkspace string `yaml:"default_workspace,omitempty"`
	DefaultList      string `yaml:"default_list,omitempty"`
	CreatedAt        string `yaml:"created_at,omitempty"`
}

// DefaultConfigRoot resolves the config directory: CLICKUP_ROOT if set,
// else ~/.clickup.
func DefaultConfigRoot() string {
	if env := os.Getenv("CLICKUP_ROOT"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	if home != "" {
		return filepath.Join(home, ".clickup")
	}
	return ".clickup"
}

func configPath(root string) string {
	return filepath.Join(root, "config.yaml")
}

// LoadConfig reads the config file. A missing file yields ErrNoToken so
// callers can point the user at setup.
func LoadConfig(root string) (Config, error) {
	b, err := os.ReadFile(configPath(root))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, ErrNoToken
		}
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config.yaml: %w", err)
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return cfg, ErrNoToken
	}
	return cfg, nil
}

// SaveConfig writes the config atomically. The file holds the API token,
// so it is created user-readable only.
func SaveConfig(root string, cfg Config) error {
	if strings.TrimSpace(cfg.Token) == "" {
		return fmt.Errorf("save config: token is required")
	}
	if cfg.CreatedAt == "" {
		cfg.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return atomicWriteFile(configPath(root), b, 0o600)
}

func atomicWriteFile(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".tmp-%d", time.Now().UTC().UnixNano()))
	if err := os.WriteFile(tmp, data, perm); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// Rename is atomic on same filesystem.
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
