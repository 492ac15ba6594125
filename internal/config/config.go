// Package config loads process configuration from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ubc-cpsc/canvasgrading/pkg/canvas"
)

// Config holds runtime configuration values for the quiz tools.
type Config struct {
	BaseURL   string
	Token     string
	TokenFile string
}

// Load reads configuration values from environment variables and an
// optional .env file. CLI flags are applied on top of the result before
// calling Resolve.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CANVAS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("base.url", canvas.DefaultBaseURL)

	return Config{
		BaseURL:   v.GetString("base.url"),
		Token:     v.GetString("token"),
		TokenFile: v.GetString("token.file"),
	}, nil
}

// Resolve finalizes the token: when a token file is set its trimmed
// contents win over the literal token. A missing token is an error, since
// every tool needs one.
func (c *Config) Resolve() error {
	if c.TokenFile != "" {
		raw, err := os.ReadFile(c.TokenFile)
		if err != nil {
			return fmt.Errorf("read token file: %w", err)
		}
		c.Token = strings.TrimSpace(string(raw))
	}
	if c.Token == "" {
		return fmt.Errorf("canvas token must be provided")
	}
	return nil
}
