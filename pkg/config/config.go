// Package config loads readmesync settings from an optional
// .readmesync.yaml at the project root, environment variables, and flags.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/fulmenhq/readmesync/pkg/normalize"
)

// Config holds all configuration for readmesync
type Config struct {
	Doc       DocConfig       `mapstructure:"doc"`
	Normalize NormalizeConfig `mapstructure:"normalize"`
}

// DocConfig selects which documentation files a run covers.
type DocConfig struct {
	// Path is the single documentation file used when Globs is empty.
	Path string `mapstructure:"path"`
	// Globs, when set, expands to multiple documentation files relative
	// to the project root (doublestar syntax).
	Globs []string `mapstructure:"globs"`
}

// NormalizeConfig overrides the display values substituted for
// placeholders in snapshot content.
type NormalizeConfig struct {
	Hash string `mapstructure:"hash"`
	Repo string `mapstructure:"repo"`
}

var defaultConfig = Config{
	Doc: DocConfig{
		Path: "README.md",
	},
	Normalize: NormalizeConfig{
		Hash: normalize.DefaultHash,
		Repo: normalize.DefaultRepoPath,
	},
}

// Load reads configuration for the project rooted at root. A missing
// config file is not an error; defaults and environment apply. Flags
// bound via BindFlags take highest precedence.
func Load(root string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigName(".readmesync")
	v.SetConfigType("yaml")
	v.AddConfigPath(root)
	v.SetEnvPrefix("READMESYNC")
	v.AutomaticEnv()

	v.SetDefault("doc.path", defaultConfig.Doc.Path)
	v.SetDefault("doc.globs", defaultConfig.Doc.Globs)
	v.SetDefault("normalize.hash", defaultConfig.Normalize.Hash)
	v.SetDefault("normalize.repo", defaultConfig.Normalize.Repo)

	if flags != nil {
		if f := flags.Lookup("readme"); f != nil {
			if err := v.BindPFlag("doc.path", f); err != nil {
				return nil, err
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}
