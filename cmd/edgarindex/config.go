package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// config is the fully resolved runtime configuration. Values are layered:
// built-in defaults, then the config file, then environment variables, then
// command line flags.
type config struct {
	UserAgent   string
	FTPAddr     string
	Timeout     time.Duration
	Concurrency int
	Format      string
	Output      string
	Verbose     bool
}

// fileConfig mirrors config for the TOML file. Durations are strings so the
// file can say "45s" instead of nanoseconds.
type fileConfig struct {
	UserAgent   string `toml:"user_agent"`
	FTPAddr     string `toml:"ftp_addr"`
	Timeout     string `toml:"timeout"`
	Concurrency int    `toml:"concurrency"`
	Format      string `toml:"format"`
}

func defaultConfig() *config {
	return &config{
		UserAgent:   "CompanyName <contact@email.com>",
		FTPAddr:     "ftp.sec.gov:21",
		Timeout:     30 * time.Second,
		Concurrency: 4,
		Format:      "csv",
	}
}

func resolveConfig(cmd *cobra.Command) (*config, error) {
	cfg := defaultConfig()
	changed := changedFlags(cmd)

	if err := applyFileConfig(cmd, cfg); err != nil {
		return nil, err
	}
	if err := applyEnvConfig(cfg, changed); err != nil {
		return nil, err
	}
	if err := applyFlagConfig(cmd, cfg, changed); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// changedFlags records which flags were set on the command line, so later
// layers know not to override them.
func changedFlags(cmd *cobra.Command) map[string]bool {
	changed := make(map[string]bool)
	cmd.Flags().Visit(func(f *pflag.Flag) {
		changed[f.Name] = true
	})
	return changed
}

func applyFileConfig(cmd *cobra.Command, cfg *config) error {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}

	if fc.UserAgent != "" {
		cfg.UserAgent = fc.UserAgent
	}
	if fc.FTPAddr != "" {
		cfg.FTPAddr = fc.FTPAddr
	}
	if fc.Timeout != "" {
		timeout, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("parsing config %s: timeout: %w", path, err)
		}
		cfg.Timeout = timeout
	}
	if fc.Concurrency != 0 {
		cfg.Concurrency = fc.Concurrency
	}
	if fc.Format != "" {
		cfg.Format = fc.Format
	}
	return nil
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".edgarindex", "config.toml")
}

// applyEnvConfig overlays EDGARINDEX_* environment variables. A flag set on
// the command line beats its environment variable; a variable that applies
// but does not parse is an error, same as in the config file.
func applyEnvConfig(cfg *config, changed map[string]bool) error {
	if v := os.Getenv("EDGARINDEX_USER_AGENT"); v != "" && !changed["user-agent"] {
		cfg.UserAgent = v
	}
	if v := os.Getenv("EDGARINDEX_FTP_ADDR"); v != "" && !changed["ftp-addr"] {
		cfg.FTPAddr = v
	}
	if v := os.Getenv("EDGARINDEX_TIMEOUT"); v != "" && !changed["timeout"] {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing EDGARINDEX_TIMEOUT: %w", err)
		}
		cfg.Timeout = timeout
	}
	if v := os.Getenv("EDGARINDEX_CONCURRENCY"); v != "" && !changed["concurrency"] {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing EDGARINDEX_CONCURRENCY: %w", err)
		}
		cfg.Concurrency = n
	}
	if v := os.Getenv("EDGARINDEX_FORMAT"); v != "" && !changed["format"] {
		cfg.Format = v
	}
	return nil
}

func applyFlagConfig(cmd *cobra.Command, cfg *config, changed map[string]bool) error {
	flags := cmd.Flags()
	if changed["user-agent"] {
		v, err := flags.GetString("user-agent")
		if err != nil {
			return err
		}
		cfg.UserAgent = v
	}
	if changed["ftp-addr"] {
		v, err := flags.GetString("ftp-addr")
		if err != nil {
			return err
		}
		cfg.FTPAddr = v
	}
	if changed["timeout"] {
		v, err := flags.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = v
	}
	if changed["concurrency"] {
		v, err := flags.GetInt("concurrency")
		if err != nil {
			return err
		}
		cfg.Concurrency = v
	}
	if changed["format"] {
		v, err := flags.GetString("format")
		if err != nil {
			return err
		}
		cfg.Format = v
	}

	output, err := flags.GetString("output")
	if err != nil {
		return err
	}
	cfg.Output = output

	verbose, err := flags.GetBool("verbose")
	if err != nil {
		return err
	}
	cfg.Verbose = verbose
	return nil
}

func (c *config) validate() error {
	if c.UserAgent == "" {
		return fmt.Errorf("user agent must not be empty")
	}
	if c.Format != "csv" && c.Format != "json" {
		return fmt.Errorf("unsupported output format %q", c.Format)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}
