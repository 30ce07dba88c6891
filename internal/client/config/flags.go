package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/arkadconsole/internal/flagx"
)

// parseFlags overlays cfg with command-line flags. Only the flags handled
// here are passed to the flag set; see flagx.FilterArgs.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-u", "-d", "-o", "-l", "-i", "-p"})

	fs := flag.NewFlagSet("console", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "u", cfg.APIBaseURL, "API base URL")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "local store path")
	fs.StringVar(&cfg.ExportDir, "o", cfg.ExportDir, "PDF export directory")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	idle := fs.Int("i", int(cfg.IdleTimeout.Seconds()), "idle timeout (in seconds)")
	fs.IntVar(&cfg.PageSize, "p", cfg.PageSize, "page size")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			cfg.IdleTimeout = time.Duration(*idle) * time.Second
		}
	})
	return nil
}
