package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/photo-stamper/internal/colour"
	"github.com/kozaktomas/photo-stamper/internal/constants"
	"github.com/kozaktomas/photo-stamper/internal/locator"
	"github.com/kozaktomas/photo-stamper/internal/matcher"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Matching MatchingConfig `yaml:"matching"`
	Output   OutputConfig   `yaml:"output"`
	Web      WebConfig      `yaml:"web"`
}

type MatchingConfig struct {
	Policy    string `yaml:"policy"`    // min or max
	Quantizer string `yaml:"quantizer"` // mediancut, kmeans or dominant
	Locator   string `yaml:"locator"`   // bisect
}

type OutputConfig struct {
	JPEGQuality int    `yaml:"jpeg_quality"`
	LogFile     string `yaml:"log_file"`  // created inside the image folder, empty disables
	Dir         string `yaml:"dir"`       // defaults to <images>/../output
	ErrorDir    string `yaml:"error_dir"` // defaults to <images>/../error
}

type WebConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envString returns the environment variable or defaultVal when unset.
// A variable set to the empty string is kept, so STAMPER_LOG_FILE= disables the run log.
func envString(key, defaultVal string) string {
	if s, ok := os.LookupEnv(key); ok {
		return s
	}
	return defaultVal
}

// Load returns the embedded defaults overridden by the environment.
func Load() *Config {
	cfg, err := LoadFile("")
	if err != nil {
		// The embedded defaults are the only input without a file, so this is a build defect.
		panic("failed to load embedded defaults.yaml: " + err.Error())
	}
	return cfg
}

// LoadFile overlays the YAML file at path on the embedded defaults, then
// applies the environment. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	cfg := Config{
		Output: OutputConfig{
			JPEGQuality: constants.DefaultJPEGQuality,
			LogFile:     constants.DefaultLogFileName,
		},
		Web: WebConfig{
			Host: constants.DefaultWebHost,
			Port: constants.DefaultWebPort,
		},
	}
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		return nil, fmt.Errorf("parsing defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.Matching.Policy = envString("STAMPER_POLICY", cfg.Matching.Policy)
	cfg.Matching.Quantizer = envString("STAMPER_QUANTIZER", cfg.Matching.Quantizer)
	cfg.Matching.Locator = envString("STAMPER_LOCATOR", cfg.Matching.Locator)
	cfg.Output.JPEGQuality = envInt("STAMPER_JPEG_QUALITY", cfg.Output.JPEGQuality)
	cfg.Output.LogFile = envString("STAMPER_LOG_FILE", cfg.Output.LogFile)
	cfg.Web.Host = envString("STAMPER_WEB_HOST", cfg.Web.Host)
	cfg.Web.Port = envInt("STAMPER_WEB_PORT", cfg.Web.Port)

	return &cfg, nil
}

// Validate rejects unknown component names and clamps the JPEG quality to 1..100.
func (c *Config) Validate() error {
	if _, err := matcher.ParsePolicy(c.Matching.Policy); err != nil {
		return err
	}
	if _, err := colour.NewQuantizer(c.Matching.Quantizer); err != nil {
		return err
	}
	if _, err := locator.New(c.Matching.Locator); err != nil {
		return err
	}
	c.Output.JPEGQuality = min(max(c.Output.JPEGQuality, 1), 100)
	return nil
}
