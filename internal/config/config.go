// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration. It is assembled from
// defaults, the YAML config file, environment variables (LOCASCOPE_ prefix)
// and command line flags, in that order of increasing precedence.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger" yaml:"logger"`
	Browser    BrowserConfig    `mapstructure:"browser" yaml:"browser"`
	Explore    ExploreConfig    `mapstructure:"explore" yaml:"explore"`
	Classifier ClassifierConfig `mapstructure:"classifier" yaml:"classifier"`
	OCR        OCRConfig        `mapstructure:"ocr" yaml:"ocr"`
	Output     OutputConfig     `mapstructure:"output" yaml:"output"`
	// Pages lists explicitly configured pages. They are processed before
	// autonomous discovery kicks in.
	Pages []PageConfig `mapstructure:"pages" yaml:"pages"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color names for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the headless browser instance.
type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	IgnoreTLSErrors   bool          `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	UserAgent         string        `mapstructure:"user_agent" yaml:"user_agent"`
	ViewportWidth     int           `mapstructure:"viewport_width" yaml:"viewport_width"`
	ViewportHeight    int           `mapstructure:"viewport_height" yaml:"viewport_height"`
	Args              []string      `mapstructure:"args" yaml:"args"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	// PostLoadWait gives client side frameworks a moment to settle after the
	// document becomes ready.
	PostLoadWait time.Duration `mapstructure:"post_load_wait" yaml:"post_load_wait"`
}

// ExploreConfig tunes the autonomous page and modal discovery.
type ExploreConfig struct {
	// MaxAutoPages bounds how many discovered pages a run will visit on top
	// of the explicitly configured ones.
	MaxAutoPages int `mapstructure:"max_auto_pages" yaml:"max_auto_pages"`
	// MaxModalsPerPage caps how many modal trigger candidates are probed on
	// a single page visit.
	MaxModalsPerPage int `mapstructure:"max_modals_per_page" yaml:"max_modals_per_page"`
	// MaxPathLength discards harvested links whose path exceeds this length.
	MaxPathLength int `mapstructure:"max_path_length" yaml:"max_path_length"`
	// IncludeSubdomains widens the scope from strict same-origin to the
	// registrable domain of the start URL.
	IncludeSubdomains bool          `mapstructure:"include_subdomains" yaml:"include_subdomains"`
	ModalSettleWait   time.Duration `mapstructure:"modal_settle_wait" yaml:"modal_settle_wait"`
	CloseSettleWait   time.Duration `mapstructure:"close_settle_wait" yaml:"close_settle_wait"`
}

// ClassifierConfig configures the two-language text classification.
type ClassifierConfig struct {
	// TargetLanguage is the ISO 639-1 code the application under test should
	// be rendered in.
	TargetLanguage string `mapstructure:"target_language" yaml:"target_language"`
	// CompareLanguage is the ISO 639-1 code of the development language that
	// leaks through when a string is not localized.
	CompareLanguage string  `mapstructure:"compare_language" yaml:"compare_language"`
	MinTextLength   int     `mapstructure:"min_text_length" yaml:"min_text_length"`
	MinConfidence   float64 `mapstructure:"min_confidence" yaml:"min_confidence"`
	// AllowedTerms extends the built-in allow list of domain terms that are
	// acceptable in any language.
	AllowedTerms []string `mapstructure:"allowed_terms" yaml:"allowed_terms"`
}

// OCRConfig configures the external text extraction engine.
type OCRConfig struct {
	Engine   string `mapstructure:"engine" yaml:"engine"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	// APIKey is never written back to disk.
	APIKey              string        `mapstructure:"api_key" yaml:"-"`
	ConfidenceThreshold float64       `mapstructure:"confidence_threshold" yaml:"confidence_threshold"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

// OutputConfig defines where artifacts and reports are written.
type OutputConfig struct {
	ScreenshotDir string   `mapstructure:"screenshot_dir" yaml:"screenshot_dir"`
	ReportDir     string   `mapstructure:"report_dir" yaml:"report_dir"`
	Formats       []string `mapstructure:"formats" yaml:"formats"`
}

// PageConfig describes one explicitly configured page.
type PageConfig struct {
	Name   string        `mapstructure:"name" yaml:"name"`
	URL    string        `mapstructure:"url" yaml:"url"`
	Modals []ModalConfig `mapstructure:"modals" yaml:"modals"`
}

// ModalConfig describes a known modal on a configured page, opened by
// clicking the given CSS selector.
type ModalConfig struct {
	Name     string `mapstructure:"name" yaml:"name"`
	Selector string `mapstructure:"selector" yaml:"selector"`
}

// reportFormats lists the formats the reporting package understands.
var reportFormats = map[string]struct{}{
	"csv":      {},
	"summary":  {},
	"json":     {},
	"html":     {},
	"markdown": {},
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "locascope")
	v.SetDefault("logger.log_file", "locascope.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.viewport_width", 1920)
	v.SetDefault("browser.viewport_height", 1080)
	v.SetDefault("browser.navigation_timeout", "60s")
	v.SetDefault("browser.post_load_wait", "2s")

	// -- Explore --
	v.SetDefault("explore.max_auto_pages", 10)
	v.SetDefault("explore.max_modals_per_page", 5)
	v.SetDefault("explore.max_path_length", 100)
	v.SetDefault("explore.include_subdomains", false)
	v.SetDefault("explore.modal_settle_wait", "500ms")
	v.SetDefault("explore.close_settle_wait", "500ms")

	// -- Classifier --
	v.SetDefault("classifier.target_language", "fr")
	v.SetDefault("classifier.compare_language", "en")
	v.SetDefault("classifier.min_text_length", 4)
	v.SetDefault("classifier.min_confidence", 0.6)

	// -- OCR --
	v.SetDefault("ocr.engine", "google_vision")
	v.SetDefault("ocr.endpoint", "https://vision.googleapis.com/v1/images:annotate")
	v.SetDefault("ocr.confidence_threshold", 0.5)
	v.SetDefault("ocr.request_timeout", "30s")

	// -- Output --
	v.SetDefault("output.screenshot_dir", "screenshots")
	v.SetDefault("output.report_dir", "reports")
	v.SetDefault("output.formats", []string{"csv", "summary", "json", "html"})
}

// NewConfigFromViper creates a validated configuration from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data.
	v.BindEnv("ocr.api_key", "LOCASCOPE_VISION_API_KEY")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Explore.MaxModalsPerPage <= 0 {
		return fmt.Errorf("explore.max_modals_per_page must be a positive integer")
	}
	if c.Explore.MaxAutoPages < 0 {
		return fmt.Errorf("explore.max_auto_pages must not be negative")
	}
	if c.Explore.MaxPathLength <= 0 {
		return fmt.Errorf("explore.max_path_length must be a positive integer")
	}
	if c.Classifier.MinConfidence < 0.0 || c.Classifier.MinConfidence > 1.0 {
		return fmt.Errorf("classifier.min_confidence must be between 0.0 and 1.0")
	}
	if c.Classifier.MinTextLength < 1 {
		return fmt.Errorf("classifier.min_text_length must be at least 1")
	}
	target := strings.ToLower(strings.TrimSpace(c.Classifier.TargetLanguage))
	compare := strings.ToLower(strings.TrimSpace(c.Classifier.CompareLanguage))
	if target == "" || compare == "" {
		return fmt.Errorf("classifier.target_language and classifier.compare_language are required")
	}
	if target == compare {
		return fmt.Errorf("classifier.target_language and classifier.compare_language must differ")
	}
	if c.OCR.ConfidenceThreshold < 0.0 || c.OCR.ConfidenceThreshold > 1.0 {
		return fmt.Errorf("ocr.confidence_threshold must be between 0.0 and 1.0")
	}
	for _, format := range c.Output.Formats {
		if _, ok := reportFormats[format]; !ok {
			return fmt.Errorf("output.formats contains unsupported format %q", format)
		}
	}
	for i, page := range c.Pages {
		if page.Name == "" || page.URL == "" {
			return fmt.Errorf("pages[%d]: name and url are required", i)
		}
		for j, modal := range page.Modals {
			if modal.Name == "" || modal.Selector == "" {
				return fmt.Errorf("pages[%d].modals[%d]: name and selector are required", i, j)
			}
		}
	}
	return nil
}
