package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"

	"github.com/sanashii/Simple-CRUD-API/internal/model/task"
)

const (
	defaultPort       = "3000"
	defaultStorePath  = "./db.json"
	defaultLogLevel   = "info"
	defaultLogFormat  = "json"
	configPathEnv     = "TASKS_CONFIG"
	StoreDriverFile   = "file"
	StoreDriverMemory = "memory"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Log    LogConfig
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr      string
	PublicURL string
}

// StoreConfig selects and configures the task store.
type StoreConfig struct {
	Driver     string
	Path       string
	UpdateMode task.UpdateMode
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level  string
	Format string
}

type fileConfig struct {
	Server struct {
		Addr      string `toml:"addr"`
		PublicURL string `toml:"public_url"`
	} `toml:"server"`
	Store struct {
		Driver     string `toml:"driver"`
		Path       string `toml:"path"`
		UpdateMode string `toml:"update_mode"`
	} `toml:"store"`
	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"log"`
}

// Load 从环境变量加载配置。TASKS_CONFIG 指向的 TOML 文件提供默认值，环境变量优先。
func Load() (*Config, error) {
	var fc fileConfig
	if path := strings.TrimSpace(os.Getenv(configPathEnv)); path != "" {
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	server, err := loadServerConfig(fc)
	if err != nil {
		return nil, err
	}

	store, err := loadStoreConfig(fc)
	if err != nil {
		return nil, err
	}

	logCfg, err := loadLogConfig(fc)
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Store: store, Log: logCfg}, nil
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig(fc fileConfig) (ServerConfig, error) {
	port := getEnvOrDefault("PORT", fc.Server.Addr)
	if port == "" {
		port = defaultPort
	}

	publicURL := getEnvOrDefault("TASKS_PUBLIC_URL", fc.Server.PublicURL)

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":3000" 或 "127.0.0.1:3000"。
		return ServerConfig{Addr: port, PublicURL: publicURL}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, PublicURL: publicURL}, nil
}

func loadStoreConfig(fc fileConfig) (StoreConfig, error) {
	driver := strings.ToLower(getEnvOrDefault("TASKS_STORE", fc.Store.Driver))
	if driver == "" {
		driver = StoreDriverFile
	}
	if driver != StoreDriverFile && driver != StoreDriverMemory {
		return StoreConfig{}, fmt.Errorf("invalid TASKS_STORE value %q", driver)
	}

	path := getEnvOrDefault("TASKS_DB_PATH", fc.Store.Path)
	if path == "" {
		path = defaultStorePath
	}

	rawMode := strings.ToLower(getEnvOrDefault("TASKS_UPDATE_MODE", fc.Store.UpdateMode))
	if rawMode == "" {
		rawMode = string(task.UpdatePresence)
	}
	mode, ok := task.ParseUpdateMode(rawMode)
	if !ok {
		return StoreConfig{}, fmt.Errorf("invalid TASKS_UPDATE_MODE value %q", rawMode)
	}

	return StoreConfig{Driver: driver, Path: path, UpdateMode: mode}, nil
}

func loadLogConfig(fc fileConfig) (LogConfig, error) {
	level := strings.ToLower(getEnvOrDefault("LOG_LEVEL", fc.Log.Level))
	if level == "" {
		level = defaultLogLevel
	}
	if _, err := logrus.ParseLevel(level); err != nil {
		return LogConfig{}, fmt.Errorf("invalid LOG_LEVEL value %q: %w", level, err)
	}

	format := strings.ToLower(getEnvOrDefault("LOG_FORMAT", fc.Log.Format))
	if format == "" {
		format = defaultLogFormat
	}
	if format != "json" && format != "text" {
		return LogConfig{}, fmt.Errorf("invalid LOG_FORMAT value %q", format)
	}

	return LogConfig{Level: level, Format: format}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return strings.TrimSpace(defaultValue)
}
