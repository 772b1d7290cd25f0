package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	deepthought "github.com/ncerny/deepthought"
	"gopkg.in/yaml.v3"
)

type config struct {
	Port           string         `yaml:"port"`
	AdminPort      string         `yaml:"adminPort"`
	AllowedOrigin  string         `yaml:"allowedOrigin"`
	AllowLocalhost bool           `yaml:"allowLocalhost"`
	MaxBodyBytes   int64          `yaml:"maxBodyBytes"`
	Upstream       upstreamConfig `yaml:"upstream"`
	Log            logConfig      `yaml:"log"`
}

type upstreamConfig struct {
	BaseURL     string  `yaml:"baseURL"`
	APIKey      string  `yaml:"apiKey"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"maxTokens"`
	Temperature float32 `yaml:"temperature"`
}

type logConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// envOverrides maps environment variables onto the config fields they replace.
var envOverrides = []struct {
	name  string
	field func(*config) *string
}{
	{"GROQ_API_KEY", func(c *config) *string { return &c.Upstream.APIKey }},
	{"ALLOWED_ORIGIN", func(c *config) *string { return &c.AllowedOrigin }},
	{"PORT", func(c *config) *string { return &c.Port }},
	{"ADMIN_PORT", func(c *config) *string { return &c.AdminPort }},
	{"DEEPTHOUGHT_UPSTREAM_BASE_URL", func(c *config) *string { return &c.Upstream.BaseURL }},
	{"DEEPTHOUGHT_UPSTREAM_MODEL", func(c *config) *string { return &c.Upstream.Model }},
	{"DEEPTHOUGHT_LOG_LEVEL", func(c *config) *string { return &c.Log.Level }},
}

// loadConfig decodes the embedded defaults, then the file at path, then the environment read
// through getenv. A missing file is only an error when required is set.
func loadConfig(path string, required bool, getenv func(string) string) (config, error) {
	var cfg config
	if err := yaml.NewDecoder(bytes.NewReader(deepthought.DefaultConfig)).Decode(&cfg); err != nil {
		return config{}, fmt.Errorf("error decoding default config: %w", err)
	}

	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			if required || !errors.Is(err, fs.ErrNotExist) {
				return config{}, err
			}
		}
	}

	for _, o := range envOverrides {
		if v := strings.TrimSpace(getenv(o.name)); v != "" {
			*o.field(&cfg) = v
		}
	}

	if err := cfg.validate(); err != nil {
		return config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func decodeFile(path string, cfg *config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		// An empty file decodes to io.EOF and leaves the defaults alone.
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("error decoding config file %s: %w", path, err)
	}
	return nil
}

func (c config) validate() error {
	var errs []error
	if c.Upstream.APIKey == "" {
		errs = append(errs, errors.New("upstream api key is required (GROQ_API_KEY)"))
	}
	if c.Upstream.BaseURL == "" {
		errs = append(errs, errors.New("upstream base url is required"))
	}
	if c.Upstream.Model == "" {
		errs = append(errs, errors.New("upstream model is required"))
	}
	if c.Upstream.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("upstream max tokens must be positive, got %d", c.Upstream.MaxTokens))
	}
	if c.Upstream.Temperature < 0 || c.Upstream.Temperature > 2 {
		errs = append(errs, fmt.Errorf("upstream temperature must be within [0, 2], got %v", c.Upstream.Temperature))
	}
	if c.AllowedOrigin == "" {
		errs = append(errs, errors.New("allowed origin is required (ALLOWED_ORIGIN)"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	if c.AdminPort == "" {
		errs = append(errs, errors.New("admin port is required"))
	}
	if c.Port != "" && c.Port == c.AdminPort {
		errs = append(errs, fmt.Errorf("port and admin port must differ, both are %s", c.Port))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("max body bytes must be positive, got %d", c.MaxBodyBytes))
	}
	return errors.Join(errs...)
}
