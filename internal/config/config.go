package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given. A missing default
// file is not an error.
const DefaultPath = "macrocam.yaml"

// Upload lifecycle policies for the gateway's uploads directory.
const (
	UploadPolicyKeep   = "keep"
	UploadPolicyDelete = "delete"
	UploadPolicyTTL    = "ttl"
)

// Config is the merged configuration for every macrocam subcommand.
type Config struct {
	LogLevel string         `yaml:"log_level"`
	Gateway  GatewayConfig  `yaml:"gateway"`
	Capture  CaptureConfig  `yaml:"capture"`
	Analyzer AnalyzerConfig `yaml:"analyzer"`
}

// GatewayConfig configures `macrocam serve`.
type GatewayConfig struct {
	Port            string        `yaml:"port"`
	UploadsDir      string        `yaml:"uploads_dir"`
	AnalyzerCommand []string      `yaml:"analyzer_command"`
	AnalyzerTimeout time.Duration `yaml:"analyzer_timeout"`
	UploadPolicy    string        `yaml:"upload_policy"`
	UploadsTTL      time.Duration `yaml:"uploads_ttl"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
	HistorySize     int           `yaml:"history_size"`
}

// CaptureConfig configures `macrocam capture`.
type CaptureConfig struct {
	Endpoint      string        `yaml:"endpoint"`
	Timeout       time.Duration `yaml:"timeout"`
	CameraCommand []string      `yaml:"camera_command"`
	CameraDevice  string        `yaml:"camera_device"`
	ImageDir      string        `yaml:"image_dir"`
	LogFile       string        `yaml:"log_file"`
}

// AnalyzerConfig configures `macrocam analyze`.
type AnalyzerConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

// Default returns the built-in configuration. Zero timeouts mean no timeout.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Gateway: GatewayConfig{
			Port:         "5001",
			UploadsDir:   "uploads",
			UploadPolicy: UploadPolicyKeep,
			UploadsTTL:   24 * time.Hour,
			HistorySize:  100,
		},
		Capture: CaptureConfig{
			Endpoint: "http://localhost:5001/analyze-image",
			CameraCommand: []string{
				"libcamera-still", "--nopreview",
				"--width", "{width}", "--height", "{height}",
				"--quality", "{quality}", "--output", "{output}",
			},
			ImageDir: os.TempDir(),
		},
		Analyzer: AnalyzerConfig{
			Provider:    "gemini",
			Temperature: 0.1,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path and
// MACROCAM_* environment variables, in that order of precedence. An empty
// path falls back to DefaultPath when that file exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setFields := func(key string, dst *[]string) {
		if v := os.Getenv(key); v != "" {
			*dst = strings.Fields(v)
		}
	}
	setDuration := func(key string, dst *time.Duration) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = d
		return nil
	}

	setString("MACROCAM_LOG_LEVEL", &c.LogLevel)

	setString("MACROCAM_PORT", &c.Gateway.Port)
	setString("MACROCAM_UPLOADS_DIR", &c.Gateway.UploadsDir)
	setFields("MACROCAM_ANALYZER_COMMAND", &c.Gateway.AnalyzerCommand)
	setString("MACROCAM_UPLOAD_POLICY", &c.Gateway.UploadPolicy)
	if err := setDuration("MACROCAM_ANALYZER_TIMEOUT", &c.Gateway.AnalyzerTimeout); err != nil {
		return err
	}
	if err := setDuration("MACROCAM_UPLOADS_TTL", &c.Gateway.UploadsTTL); err != nil {
		return err
	}
	if v := os.Getenv("MACROCAM_MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MACROCAM_MAX_UPLOAD_BYTES: %w", err)
		}
		c.Gateway.MaxUploadBytes = n
	}

	setString("MACROCAM_ENDPOINT", &c.Capture.Endpoint)
	setFields("MACROCAM_CAMERA_COMMAND", &c.Capture.CameraCommand)
	setString("MACROCAM_CAMERA_DEVICE", &c.Capture.CameraDevice)
	setString("MACROCAM_IMAGE_DIR", &c.Capture.ImageDir)
	if err := setDuration("MACROCAM_UPLOAD_TIMEOUT", &c.Capture.Timeout); err != nil {
		return err
	}

	setString("MACROCAM_PROVIDER", &c.Analyzer.Provider)
	setString("MACROCAM_MODEL", &c.Analyzer.Model)

	return nil
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	switch c.Gateway.UploadPolicy {
	case UploadPolicyKeep, UploadPolicyDelete:
	case UploadPolicyTTL:
		if c.Gateway.UploadsTTL <= 0 {
			return fmt.Errorf("uploads_ttl must be positive with upload_policy %q", UploadPolicyTTL)
		}
	default:
		return fmt.Errorf("invalid upload_policy %q. Must be 'keep', 'delete', or 'ttl'", c.Gateway.UploadPolicy)
	}

	if c.Gateway.MaxUploadBytes < 0 {
		return fmt.Errorf("max_upload_bytes must not be negative")
	}

	if c.Capture.Endpoint == "" {
		return fmt.Errorf("capture endpoint is required")
	}

	return nil
}
