package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hairyhenderson/go-remotefs/internal/env"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by the CLI. USERNAME and PASSWORD also support
// the _FILE suffix.
const (
	envBaseURL   = "REMOTEFS_BASE_URL"
	envUsername  = "REMOTEFS_USERNAME"
	envPassword  = "REMOTEFS_PASSWORD"
	envUserAgent = "REMOTEFS_USER_AGENT"
	envLogLevel  = "REMOTEFS_LOG_LEVEL"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultLogLevel = "info"
	defaultListen   = ":8080"
)

type config struct {
	Headers    map[string]string `yaml:"headers,omitempty"`
	BaseURL    string            `yaml:"base_url,omitempty"`
	Username   string            `yaml:"username,omitempty"`
	Password   string            `yaml:"password,omitempty"`
	UserAgent  string            `yaml:"user_agent,omitempty"`
	LogLevel   string            `yaml:"log_level,omitempty"`
	Listen     string            `yaml:"listen,omitempty"`
	Timeout    time.Duration     `yaml:"timeout,omitempty"`
	RequestIDs bool              `yaml:"request_ids,omitempty"`
	Tracing    bool              `yaml:"tracing,omitempty"`
}

func defaultConfig() *config {
	return &config{
		Timeout:  defaultTimeout,
		LogLevel: defaultLogLevel,
		Listen:   defaultListen,
	}
}

// loadConfigFile merges the YAML file at path into c. Fields missing from the
// file are left alone.
func (c *config) loadConfigFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	return nil
}

// loadDotenv loads variables from the given .env files into the process
// environment, without overriding anything already set. A missing file is
// not an error.
func loadDotenv(files ...string) error {
	for _, f := range files {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}

	return nil
}

// applyEnv overrides c with any values set in the environment
func (c *config) applyEnv() {
	setFromEnv(&c.BaseURL, envBaseURL)
	setFromEnv(&c.Username, envUsername)
	setFromEnv(&c.Password, envPassword)
	setFromEnv(&c.UserAgent, envUserAgent)
	setFromEnv(&c.LogLevel, envLogLevel)
}

func setFromEnv(dst *string, key string) {
	if v := env.Getenv(key); v != "" {
		*dst = v
	}
}

// baseURL returns the configured base URL, with Username and Password (when
// set) replacing any userinfo it already has.
func (c *config) baseURL() (string, error) {
	if c.BaseURL == "" {
		return "", errors.New("no base URL configured (use --base-url or " + envBaseURL + ")")
	}

	if c.Username == "" {
		return c.BaseURL, nil
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse base URL: %w", err)
	}

	if c.Password == "" {
		u.User = url.User(c.Username)
	} else {
		u.User = url.UserPassword(c.Username, c.Password)
	}

	return u.String(), nil
}

// header returns the extra request headers, including User-Agent
func (c *config) header() http.Header {
	h := http.Header{}

	for k, v := range c.Headers {
		h.Set(k, v)
	}

	if c.UserAgent != "" {
		h.Set("User-Agent", c.UserAgent)
	}

	return h
}

// parseHeaders parses "Name: value" pairs, as given to --header
func parseHeaders(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))

	for _, p := range pairs {
		k, v, ok := strings.Cut(p, ":")
		k = strings.TrimSpace(k)

		if !ok || k == "" {
			return nil, fmt.Errorf("invalid header %q, expected 'Name: value'", p)
		}

		out[k] = strings.TrimSpace(v)
	}

	return out, nil
}
