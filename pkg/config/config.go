package config

import (
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/iancoleman/strcase"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

type Config struct {
	DatabaseFilePath          string        `koanf:"database_file_path" required:"true"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count" default:"5"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay" default:"2s"`
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout" default:"5s"`
	DatabaseMaxRetries        int           `koanf:"database_max_retries" default:"5"`
	DatabaseDebug             bool          `koanf:"database_debug"`

	// LibraryPath is the root that `scan` walks when no path is given.
	LibraryPath     string `koanf:"library_path"`
	CoverDir        string `koanf:"cover_dir" default:"./covers"`
	ThumbnailHeight int    `koanf:"thumbnail_height" default:"400"`
	ScannerVersion  string `koanf:"scanner_version" default:"3"`
	RenameOnSave    bool   `koanf:"rename_on_save" default:"true"`
	ReportFileName  string `koanf:"report_file_name" default:"bibliothek-report.txt"`

	RemoteEnabled       bool          `koanf:"remote_enabled" default:"true"`
	RemoteTimeout       time.Duration `koanf:"remote_timeout" default:"5s"`
	VolumeCatalogURL    string        `koanf:"volume_catalog_url" default:"https://www.googleapis.com/books/v1"`
	VolumeCatalogAPIKey string        `koanf:"volume_catalog_api_key"`
	LibraryCatalogURL   string        `koanf:"library_catalog_url" default:"https://openlibrary.org"`
	UserAgent           string        `koanf:"user_agent" default:"bibliothek/1.0"`

	WorkerProcesses    int           `koanf:"worker_processes" default:"1"`
	WorkerPollInterval time.Duration `koanf:"worker_poll_interval" default:"5s"`

	LogLevel   string `koanf:"log_level" default:"info"`
	ServerHost string `koanf:"server_host" default:"0.0.0.0"`
	ServerPort int    `koanf:"server_port" default:"3689"`
}

const (
	configFileENV     = "CONFIG_FILE"
	defaultConfigFile = "./config.yaml"
)

// New builds the configuration from defaults, an optional YAML file and the
// environment, in that order of precedence (environment wins).
func New() (*Config, error) {
	// A missing .env is the normal case outside of development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	k := koanf.New(".")

	path := os.Getenv(configFileENV)
	if path == "" {
		path = defaultConfigFile
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", path)
		}
	}

	keys := configKeys()
	err := k.Load(env.Provider("", ".", func(s string) string {
		key := strings.ToLower(s)
		if _, ok := keys[key]; !ok {
			return ""
		}
		return key
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := checkRequired(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewForTest returns a configuration suitable for tests: in-memory database,
// no network access and renames enabled.
func NewForTest() *Config {
	cfg := &Config{}
	_ = defaults.Set(cfg)
	cfg.DatabaseFilePath = ":memory:"
	cfg.ServerHost = "127.0.0.1"
	cfg.RemoteEnabled = false
	cfg.CoverDir = ""
	return cfg
}

func configKeys() map[string]struct{} {
	keys := map[string]struct{}{}
	typ := reflect.TypeOf(Config{})
	for i := 0; i < typ.NumField(); i++ {
		keys[typ.Field(i).Tag.Get("koanf")] = struct{}{}
	}
	return keys
}

func checkRequired(cfg *Config) error {
	val := reflect.ValueOf(cfg).Elem()
	typ := val.Type()
	var missing []string
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.Tag.Get("required") != "true" {
			continue
		}
		if val.Field(i).IsZero() {
			key := toSnakeCase(field.Name)
			missing = append(missing, strings.ToUpper(key)+" (env) / "+key+" (file)")
		}
	}
	if len(missing) > 0 {
		return errors.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return nil
}

func toSnakeCase(s string) string {
	return strcase.ToSnake(s)
}
