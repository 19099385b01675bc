package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const defaultServer = "http://localhost:8080"

// Config is what the CLI remembers between runs.
type Config struct {
	Server string `yaml:"server" mapstructure:"server"`
	Token  string `yaml:"token,omitempty" mapstructure:"token"`
	Email  string `yaml:"email,omitempty" mapstructure:"email"`
}

// DefaultConfigPath returns ~/.uniride/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".uniride", "config.yaml")
	}
	return filepath.Join(home, ".uniride", "config.yaml")
}

// LoadConfig reads path when it exists. UNIRIDE_SERVER and UNIRIDE_TOKEN
// override the file.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("server", defaultServer)
	v.SetEnvPrefix("uniride")
	v.BindEnv("server")
	v.BindEnv("token")

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes the config readable by the owner only, since it holds the token.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
