// Package config loads client settings from a TOML file, a .env file and
// HYBRIDLLM_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/sherwynjoel/hybridllm/internal/artifact"
	"github.com/sherwynjoel/hybridllm/internal/client"
	"github.com/sherwynjoel/hybridllm/internal/util"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "HYBRIDLLM_"

// DefaultDir holds the config and settings files.
const DefaultDir = "~/.config/hybridllm"

// Config is the resolved client configuration.
type Config struct {
	APIURL           string         `toml:"api_url"`
	Timeout          time.Duration  `toml:"timeout"`
	PrivacyFirstMode bool           `toml:"privacy_first_mode"`
	Debug            bool           `toml:"debug"`
	Profile          string         `toml:"profile"`
	ExcludeDirs      []string       `toml:"exclude_dirs"`
	IgnorePatterns   []string       `toml:"ignore_patterns"`
	CacheSize        int            `toml:"cache_size"`
	FailOn           string         `toml:"fail_on"`
	ReportFormat     string         `toml:"report_format"`
	Passphrase       string         `toml:"-"`
	Artifact         ArtifactConfig `toml:"artifact"`
}

// ArtifactConfig locates the bucket reports are uploaded to.
type ArtifactConfig struct {
	Endpoint  string `toml:"endpoint"`
	Region    string `toml:"region"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	UseSSL    bool   `toml:"use_ssl"`
}

// S3 converts the section into store settings.
func (a ArtifactConfig) S3() artifact.S3Config {
	return artifact.S3Config{
		Endpoint:  a.Endpoint,
		Region:    a.Region,
		AccessKey: a.AccessKey,
		SecretKey: a.SecretKey,
		Bucket:    a.Bucket,
		UseSSL:    a.UseSSL,
	}
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		APIURL:           client.DefaultBaseURL,
		Timeout:          2 * time.Minute,
		PrivacyFirstMode: true,
		Profile:          "default",
		FailOn:           "",
		ReportFormat:     "json",
		Artifact: ArtifactConfig{
			Region: "us-east-1",
			Bucket: "hybridllm-reports",
			UseSSL: true,
		},
	}
}

// DefaultPath is the config file read when no path is given.
func DefaultPath() string {
	return util.ExpandHome(filepath.Join(DefaultDir, "config.toml"))
}

// Load resolves the configuration. An empty path reads DefaultPath if it
// exists; an explicit path must exist. A .env file in the working directory
// is loaded into the environment without overriding variables already set.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if err := cfg.loadFile(util.ExpandHome(path), explicit); err != nil {
		return nil, err
	}

	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string, required bool) error {
	_, err := toml.DecodeFile(path, c)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist) && !required:
		return nil
	default:
		return fmt.Errorf("reading config %s: %w", path, err)
	}
}

func (c *Config) applyEnv() error {
	c.APIURL = firstNonEmpty(env("API_URL"), c.APIURL)
	c.Profile = firstNonEmpty(env("PROFILE"), c.Profile)
	c.FailOn = firstNonEmpty(env("FAIL_ON"), c.FailOn)
	c.ReportFormat = firstNonEmpty(env("REPORT_FORMAT"), c.ReportFormat)
	c.Passphrase = firstNonEmpty(env("REPORT_PASSPHRASE"), c.Passphrase)

	if v := env("EXCLUDE_DIRS"); v != "" {
		c.ExcludeDirs = splitList(v)
	}
	if v := env("IGNORE_PATTERNS"); v != "" {
		c.IgnorePatterns = splitList(v)
	}

	if v := env("TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sTIMEOUT: %w", EnvPrefix, err)
		}
		c.Timeout = d
	}
	if v := env("CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sCACHE_SIZE: %w", EnvPrefix, err)
		}
		c.CacheSize = n
	}
	for name, dst := range map[string]*bool{
		"PRIVACY_FIRST": &c.PrivacyFirstMode,
		"DEBUG":         &c.Debug,
		"S3_USE_SSL":    &c.Artifact.UseSSL,
	} {
		if v := env(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = b
		}
	}

	a := &c.Artifact
	a.Endpoint = firstNonEmpty(env("S3_ENDPOINT"), a.Endpoint)
	a.Region = firstNonEmpty(env("S3_REGION"), a.Region)
	a.AccessKey = firstNonEmpty(env("S3_ACCESS_KEY"), a.AccessKey, strings.TrimSpace(os.Getenv("MINIO_ROOT_USER")))
	a.SecretKey = firstNonEmpty(env("S3_SECRET_KEY"), a.SecretKey, strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD")))
	a.Bucket = firstNonEmpty(env("S3_BUCKET"), a.Bucket)
	return nil
}

// Validate rejects values no command could use.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative")
	}
	return nil
}

func env(name string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + name))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
