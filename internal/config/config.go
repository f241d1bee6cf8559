// Package config loads the connection settings for the GitLab instance.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is used when no GitLab instance URL is configured.
const DefaultBaseURL = "https://gitlab.com"

// envConfigPath overrides the default config file location.
const envConfigPath = "SPRINT_STATS_CONFIG"

// Config holds the two required secrets (access token and target group) plus
// the instance URL. Values come from an optional YAML file; environment
// variables override the file.
type Config struct {
	BaseURL string `yaml:"gitlab_url"`
	Token   string `yaml:"gitlab_token"`
	GroupID string `yaml:"gitlab_group_id"`
}

// Load reads the configuration. A non-empty path names an explicit config file
// which must exist; otherwise $SPRINT_STATS_CONFIG or ./config.yaml is used if
// present. A .env file in the working directory is loaded first, and the
// GITLAB_URL, GITLAB_TOKEN and GITLAB_GROUP_ID environment variables win over
// file values.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	explicit := path != ""
	if !explicit {
		if env := os.Getenv(envConfigPath); env != "" {
			path, explicit = env, true
		} else {
			path = "config.yaml"
		}
	}

	cfg := Config{BaseURL: DefaultBaseURL}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	case explicit || !os.IsNotExist(err):
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	if v := os.Getenv("GITLAB_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("GITLAB_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("GITLAB_GROUP_ID"); v != "" {
		cfg.GroupID = v
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Token == "" {
		return Config{}, errors.New("gitlab_token is required (file key gitlab_token or env GITLAB_TOKEN)")
	}
	if cfg.GroupID == "" {
		return Config{}, errors.New("gitlab_group_id is required (file key gitlab_group_id or env GITLAB_GROUP_ID)")
	}
	return cfg, nil
}
