package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all configuration for the portfolio generator.
type Config struct {
	// Server
	Port    string `env:"PORT,default=3000"`
	LogMode string `env:"LOG_MODE,default=dev"`

	// Template source: embed, dir, http or gcs
	TemplateSource  string        `env:"TEMPLATE_SOURCE,default=embed"`
	TemplateDir     string        `env:"TEMPLATE_DIR,default=templates"`
	TemplateBaseURL string        `env:"TEMPLATE_BASE_URL"`
	TemplateTimeout time.Duration `env:"TEMPLATE_TIMEOUT,default=10s"`
	GCSBucket       string        `env:"GCS_BUCKET"`
	GCSPrefix       string        `env:"GCS_PREFIX,default=templates"`

	// PDF converter: exec or chromedp
	PDFConverter     string        `env:"PDF_CONVERTER,default=exec"`
	PDFConverterBin  string        `env:"PDF_CONVERTER_BIN,default=wkhtmltopdf"`
	PDFConverterArgs []string      `env:"PDF_CONVERTER_ARGS,delimiter=;,default=--quiet;--enable-local-file-access"`
	PDFTimeout       time.Duration `env:"PDF_TIMEOUT,default=60s"`
	ChromePath       string        `env:"CHROME_PATH"`

	// Persistence; both optional
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH"`

	SanitizeProfile bool `env:"SANITIZE_PROFILE,default=true"`
	TracingStdout   bool `env:"TRACING_STDOUT,default=false"`
}

// Load loads configuration from environment variables.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.TemplateSource = strings.ToLower(c.TemplateSource)
	switch c.TemplateSource {
	case "embed", "dir":
	case "http":
		if c.TemplateBaseURL == "" {
			return fmt.Errorf("TEMPLATE_BASE_URL is required when TEMPLATE_SOURCE=http")
		}
	case "gcs":
		if c.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET is required when TEMPLATE_SOURCE=gcs")
		}
	default:
		return fmt.Errorf("unknown TEMPLATE_SOURCE %q", c.TemplateSource)
	}

	c.PDFConverter = strings.ToLower(c.PDFConverter)
	switch c.PDFConverter {
	case "exec", "chromedp":
	default:
		return fmt.Errorf("unknown PDF_CONVERTER %q", c.PDFConverter)
	}
	if c.PDFTimeout <= 0 {
		return fmt.Errorf("PDF_TIMEOUT must be positive")
	}
	return nil
}
