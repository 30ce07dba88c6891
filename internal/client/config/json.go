package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/arkadconsole/internal/flagx"
	"github.com/dmitrijs2005/arkadconsole/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Zero values leave the
// corresponding Config field untouched.
type JsonConfig struct {
	APIBaseURL     string         `json:"api_base_url"`
	SecretKey      string         `json:"secret_key"`
	DBPath         string         `json:"db_path"`
	ExportDir      string         `json:"export_dir"`
	LogoPath       string         `json:"logo_path"`
	LogLevel       string         `json:"log_level"`
	LogFormat      string         `json:"log_format"`
	IdleTimeout    timex.Duration `json:"idle_timeout"`
	MessageTTL     timex.Duration `json:"message_ttl"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	PageSize       int            `json:"page_size"`
	Upload         struct {
		MaxBytes         int64   `json:"max_bytes"`
		MaxSizeMB        float64 `json:"max_size_mb"`
		MaxWidthOrHeight int     `json:"max_width_or_height"`
		UseWorker        *bool   `json:"use_worker"`
	} `json:"upload"`
}

func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.SecretKey, jc.SecretKey)
	setString(&cfg.DBPath, jc.DBPath)
	setString(&cfg.ExportDir, jc.ExportDir)
	setString(&cfg.LogoPath, jc.LogoPath)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)

	if jc.IdleTimeout.Duration > 0 {
		cfg.IdleTimeout = jc.IdleTimeout.Duration
	}
	if jc.MessageTTL.Duration > 0 {
		cfg.MessageTTL = jc.MessageTTL.Duration
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.PageSize > 0 {
		cfg.PageSize = jc.PageSize
	}
	if jc.Upload.MaxBytes > 0 {
		cfg.Upload.MaxBytes = jc.Upload.MaxBytes
	}
	if jc.Upload.MaxSizeMB > 0 {
		cfg.Upload.MaxSizeMB = jc.Upload.MaxSizeMB
	}
	if jc.Upload.MaxWidthOrHeight > 0 {
		cfg.Upload.MaxWidthOrHeight = jc.Upload.MaxWidthOrHeight
	}
	if jc.Upload.UseWorker != nil {
		cfg.Upload.UseWorker = *jc.Upload.UseWorker
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
