package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileConfig is the optional YAML overlay named by CONFIG_FILE.
type fileConfig struct {
	Storage struct {
		Backend  string `yaml:"backend"`
		LocalDir string `yaml:"localDir"`
		Region   string `yaml:"region"`
		Bucket   string `yaml:"bucket"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"storage"`
	Tiers struct {
		Free             int `yaml:"free"`
		Pro              int `yaml:"pro"`
		Premium          int `yaml:"premium"`
		SubscriptionDays int `yaml:"subscriptionDays"`
	} `yaml:"tiers"`
	Trash struct {
		RetentionDays int `yaml:"retentionDays"`
	} `yaml:"trash"`
}

func loadFile(path string) (fileConfig, error) {
	var cfg fileConfig
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return fileConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}
