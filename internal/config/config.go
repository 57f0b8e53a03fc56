// Package config loads daemon configuration from CELLNFT_* environment
// variables. Command-line flags bound with BindFlags override them.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/pflag"

	"xdao.co/cellnft/keys"
	"xdao.co/cellnft/typeid"
)

type Config struct {
	Listen      string `env:"CELLNFT_LISTEN"        envDefault:"127.0.0.1:7878"`
	Hasher      string `env:"CELLNFT_HASHER"        envDefault:"blake2b"`
	HashLabel   string `env:"CELLNFT_HASH_LABEL"`
	LogLevel    string `env:"CELLNFT_LOG_LEVEL"     envDefault:"info"`
	MaxMsgBytes int    `env:"CELLNFT_MAX_MSG_BYTES" envDefault:"4194304"`

	// ArchiveDirs replicate every snapshot and evidence document; empty
	// disables archiving.
	ArchiveDirs []string `env:"CELLNFT_ARCHIVE_DIR" envSeparator:","`
	// ArchiveIPFS is an ipfs binary whose local repo also receives the archive.
	ArchiveIPFS string `env:"CELLNFT_ARCHIVE_IPFS"`

	// KeyFile holds a hex root seed; empty leaves evidence unsigned.
	KeyFile      string `env:"CELLNFT_KEY_FILE"`
	SignatureAlg string `env:"CELLNFT_SIGNATURE_ALG" envDefault:"ed25519"`
}

// Load reads the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// LoadFrom reads environ instead of the process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// BindFlags registers one flag per setting, defaulting to the current values.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Listen, "listen", c.Listen, "listen address")
	fs.StringVar(&c.Hasher, "hasher", c.Hasher, "token id hasher ("+strings.Join(typeid.Names(), ", ")+")")
	fs.StringVar(&c.HashLabel, "hash-label", c.HashLabel, "hasher personalization label (default "+typeid.DefaultLabel+")")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
	fs.IntVar(&c.MaxMsgBytes, "max-msg-bytes", c.MaxMsgBytes, "maximum gRPC message size")
	fs.StringSliceVar(&c.ArchiveDirs, "archive-dir", c.ArchiveDirs, "archive directory (repeatable)")
	fs.StringVar(&c.ArchiveIPFS, "archive-ipfs", c.ArchiveIPFS, "also archive into the repo of this ipfs binary")
	fs.StringVar(&c.KeyFile, "key-file", c.KeyFile, "hex seed file for signing evidence")
	fs.StringVar(&c.SignatureAlg, "signature-alg", c.SignatureAlg, "evidence signature algorithm (ed25519, dilithium3)")
}

func (c Config) Validate() error {
	var errs []error
	if c.Listen == "" {
		errs = append(errs, errors.New("listen address is required"))
	}
	if _, err := typeid.ByName(c.Hasher, c.HashLabel); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if c.MaxMsgBytes <= 0 {
		errs = append(errs, fmt.Errorf("max message size must be positive, got %d", c.MaxMsgBytes))
	}
	if c.KeyFile != "" && c.SignatureAlg != keys.AlgEd25519 && c.SignatureAlg != keys.AlgDilithium3 {
		errs = append(errs, fmt.Errorf("unsupported signature algorithm %q", c.SignatureAlg))
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return lvl, nil
}
