package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "./config/local.yaml"

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"prod"`
	ErrorLog   string `yaml:"error_log" env:"ERROR_LOG" env-default:"errors.log"`
	HTTPServer `yaml:"http_server"`
	Backend    Backend `yaml:"backend"`
	Import     Import  `yaml:"import"`
	Journal    Journal `yaml:"journal"`
	CORS       CORS    `yaml:"cors"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:4001"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	// Submit handler timeout; a full import can take many chunk round-trips.
	SubmitTimeout time.Duration `yaml:"submit_timeout" env-default:"5m"`
}

// Backend is the payroll REST API the dashboard talks to.
type Backend struct {
	BaseURL string        `yaml:"base_url" env:"BACKEND_URL" env-default:"http://localhost:3000"`
	Timeout time.Duration `yaml:"timeout" env-default:"5s"`
	Token   string        `yaml:"token" env:"BACKEND_TOKEN"`
}

type Import struct {
	BatchSize   int   `yaml:"batch_size" env-default:"500"`
	MaxUploadMB int64 `yaml:"max_upload_mb" env-default:"20"`
}

// Journal selects where acknowledged chunks are recorded: "memory", "file" or "mysql".
type Journal struct {
	Driver string `yaml:"driver" env:"JOURNAL_DRIVER" env-default:"memory"`
	DSN    string `yaml:"dsn" env:"JOURNAL_DSN"`
	Path   string `yaml:"path" env:"JOURNAL_PATH" env-default:".salary-import-journal.yaml"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env-default:"http://localhost:5173,http://localhost:8081"`
}

// Load reads the config file at path, falling back to environment variables
// when the file does not exist.
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = defaultConfigPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func MustConfig() *Config {
	cfg, err := Load("")
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return cfg
}
