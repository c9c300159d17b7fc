package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	appDir         = ".taskman"
	configFileName = "config.yaml"
	envPrefix      = "TASKMAN"
)

// Backend names accepted by store.backend.
const (
	BackendMongo  = "mongo"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config is the complete application configuration.
type Config struct {
	Store   StoreConfig   `mapstructure:"store"`
	MongoDB MongoDBConfig `mapstructure:"mongodb"`
	File    FileConfig    `mapstructure:"file"`
	SQLite  SQLiteConfig  `mapstructure:"sqlite"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Backend string `mapstructure:"backend"`
}

// MongoDBConfig configures the MongoDB backend.
type MongoDBConfig struct {
	URI        string        `mapstructure:"uri"`
	Database   string        `mapstructure:"database"`
	Collection string        `mapstructure:"collection"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// FileConfig configures the markdown file backend.
type FileConfig struct {
	Path string `mapstructure:"path"`
}

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// Load builds the configuration from defaults, the config file, and the
// environment, in increasing order of precedence. An empty path means the
// default config file, which may be absent.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Names used by existing deployments.
	_ = v.BindEnv("mongodb.uri", envPrefix+"_MONGODB_URI", "MONGODB_URI")
	_ = v.BindEnv("mongodb.database", envPrefix+"_MONGODB_DATABASE", "DB_NAME")

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	if err := readFile(v, path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	return cfg, nil
}

func readFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	return v.ReadInConfig()
}

func setDefaults(v *viper.Viper) {
	base := AppPath()
	v.SetDefault("store.backend", BackendMongo)
	v.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("mongodb.database", "task_manager")
	v.SetDefault("mongodb.collection", "tasks")
	v.SetDefault("mongodb.timeout", 10*time.Second)
	v.SetDefault("file.path", filepath.Join(base, "tasks"))
	v.SetDefault("sqlite.path", filepath.Join(base, "tasks.db"))
}

// AppPath returns the per-user application directory.
func AppPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return appDir
	}
	return filepath.Join(home, appDir)
}

// DefaultConfigPath returns the path of the default config file.
func DefaultConfigPath() string {
	return filepath.Join(AppPath(), configFileName)
}
