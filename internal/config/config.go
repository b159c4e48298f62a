// Package config loads the command line client's settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	DefaultServer  = "http://localhost:5000/api"
	DefaultState   = "~/.habits"
	DefaultTimeout = 10 * time.Second
)

// Client is the resolved client configuration.
type Client struct {
	// Server is the API base, including the /api prefix.
	Server string
	// StateDir holds persisted credentials.
	StateDir string
	Timeout  time.Duration
}

// Load reads .habits.yaml from $HABITS_CONFIG_PATH, the working directory or
// the home directory, with HABITS_* environment variables taking precedence.
// A missing file is not an error.
func Load() (*Client, error) {
	v := viper.New()
	v.SetDefault("server", DefaultServer)
	v.SetDefault("state", DefaultState)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetConfigName(".habits") // .yaml is implicit
	v.SetEnvPrefix("HABITS")
	v.AutomaticEnv()

	if override := os.Getenv("HABITS_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	server := strings.TrimRight(strings.TrimSpace(v.GetString("server")), "/")
	if server == "" {
		return nil, errors.New("config: server must not be empty")
	}

	state, err := homedir.Expand(v.GetString("state"))
	if err != nil {
		return nil, fmt.Errorf("config: expand state dir: %w", err)
	}

	timeout := v.GetDuration("timeout")
	if timeout <= 0 {
		return nil, fmt.Errorf("config: invalid timeout %q", v.GetString("timeout"))
	}

	return &Client{Server: server, StateDir: state, Timeout: timeout}, nil
}
