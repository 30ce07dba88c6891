package config

import (
	"context"
	"os"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime settings for the console.
type Config struct {
	// APIBaseURL is the scheme and host every resource path is appended to.
	APIBaseURL string `env:"ARKAD_API_URL, overwrite"`
	// SecretKey is the symmetric key shared with the server out of band.
	// It must be 16, 24 or 32 bytes long.
	SecretKey string `env:"ARKAD_SECRET_KEY, overwrite"`

	DBPath    string `env:"ARKAD_DB_PATH, overwrite"`
	ExportDir string `env:"ARKAD_EXPORT_DIR, overwrite"`
	LogoPath  string `env:"ARKAD_LOGO_PATH, overwrite"`
	LogLevel  string `env:"ARKAD_LOG_LEVEL, overwrite"`
	// LogFormat is "json" (zap) or "text" (slog).
	LogFormat string `env:"ARKAD_LOG_FORMAT, overwrite"`

	// IdleTimeout forces a logout after this long without input.
	IdleTimeout time.Duration `env:"ARKAD_IDLE_TIMEOUT, overwrite"`
	// MessageTTL is how long banners stay visible.
	MessageTTL     time.Duration `env:"ARKAD_MESSAGE_TTL, overwrite"`
	RequestTimeout time.Duration `env:"ARKAD_REQUEST_TIMEOUT, overwrite"`
	PageSize       int           `env:"ARKAD_PAGE_SIZE, overwrite"`

	Upload UploadConfig
}

// UploadConfig bounds image uploads.
type UploadConfig struct {
	// MaxBytes is the pass-through threshold; larger files are recompressed.
	MaxBytes         int64   `env:"ARKAD_UPLOAD_MAX_BYTES, overwrite"`
	MaxSizeMB        float64 `env:"ARKAD_UPLOAD_MAX_SIZE_MB, overwrite"`
	MaxWidthOrHeight int     `env:"ARKAD_UPLOAD_MAX_DIMENSION, overwrite"`
	UseWorker        bool    `env:"ARKAD_UPLOAD_USE_WORKER, overwrite"`
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "https://arkad-server.onrender.com"
	c.DBPath = "console.db"
	c.ExportDir = "exports"
	c.LogLevel = "info"
	c.LogFormat = "json"
	c.IdleTimeout = 15 * time.Minute
	c.MessageTTL = 5 * time.Second
	c.RequestTimeout = 30 * time.Second
	c.PageSize = 5
	c.Upload = UploadConfig{
		MaxBytes:         400 * 1024,
		MaxSizeMB:        0.4,
		MaxWidthOrHeight: 1920,
		UseWorker:        true,
	}
}

// Load builds a Config from defaults, then the JSON file named by -c/-config,
// then environment variables, then command-line flags. Later sources win.
func Load(ctx context.Context, args []string, lookuper envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(ctx, cfg, lookuper); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over the process arguments and environment.
// It panics when any source is malformed.
func LoadConfig() *Config {
	cfg, err := Load(context.Background(), os.Args[1:], envconfig.OsLookuper())
	if err != nil {
		panic(err)
	}
	return cfg
}

func parseEnv(ctx context.Context, cfg *Config, lookuper envconfig.Lookuper) error {
	return envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: lookuper,
	})
}
