package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	appName = "studyplanner"

	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

type Config struct {
	Backend    string `json:"backend"`
	DBPath     string `json:"db_path"`
	DataDir    string `json:"data_dir"`
	ExportPath string `json:"export_path"`
	WebEnabled bool   `json:"web_enabled"`
	WebPort    int    `json:"web_port"`
}

func Default() Config {
	return Config{Backend: BackendSQLite, WebPort: 8080}
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, appName, "config.json"), nil
}

func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

func Load(path string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return Config{}, err
	}

	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return config, nil
}

func Save(path string, cfg Config) error {
	if err := EnsureDir(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// ApplyEnv overrides file values with STUDYPLANNER_* environment variables.
func ApplyEnv(cfg Config) Config {
	cfg.Backend = getEnv("STUDYPLANNER_BACKEND", cfg.Backend)
	cfg.DBPath = getEnv("STUDYPLANNER_DB", cfg.DBPath)
	cfg.DataDir = getEnv("STUDYPLANNER_DATA_DIR", cfg.DataDir)
	cfg.ExportPath = getEnv("STUDYPLANNER_EXPORT", cfg.ExportPath)
	cfg.WebPort = getEnvAsInt("STUDYPLANNER_PORT", cfg.WebPort)
	return cfg
}

// Resolve fills paths left empty with locations next to the config file.
func Resolve(cfg Config, cfgPath string) (Config, error) {
	dir := filepath.Dir(cfgPath)

	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	if cfg.Backend == "" {
		cfg.Backend = BackendSQLite
	}
	if cfg.Backend != BackendSQLite && cfg.Backend != BackendFile {
		return Config{}, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(dir, appName+".db")
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(dir, "data")
	}
	if cfg.ExportPath == "" {
		cfg.ExportPath = filepath.Join(dir, "tasks.html")
	}
	if cfg.WebPort == 0 {
		cfg.WebPort = 8080
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
