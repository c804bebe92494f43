package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/procdoc/internal/domain/reports"
)

type Config struct {
	Server struct {
		Port            int               `yaml:"port"`
		APIKeys         map[string]string `yaml:"apiKeys"`
		RateLimit       int               `yaml:"rateLimit"`  // bucket capacity
		RateRefill      int               `yaml:"rateRefill"` // tokens per second
		CORSOrigins     []string          `yaml:"corsOrigins"`
		ShutdownTimeout time.Duration     `yaml:"shutdownTimeout"`
	} `yaml:"server"`

	Reports struct {
		OutputDir           string        `yaml:"outputDir"`
		Prefix              string        `yaml:"prefix"`
		DefaultTemplate     string        `yaml:"defaultTemplate"`
		DefaultCleanupHours float64       `yaml:"defaultCleanupHours"`
		CleanupInterval     time.Duration `yaml:"cleanupInterval"`
	} `yaml:"reports"`

	Branding reports.Branding `yaml:"branding"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql | postgres | "" (history disabled)
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		Prefix     string `yaml:"prefix"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	OpenAI struct {
		APIKey         string  `yaml:"apiKey"`
		Model          string  `yaml:"model"`
		BaseURL        string  `yaml:"baseURL"`
		MaxTokens      int     `yaml:"maxTokens"`
		Temperature    float32 `yaml:"temperature"`
		PromptTemplate string  `yaml:"promptTemplate"`
		CustomPrompt   string  `yaml:"customPrompt"`
	} `yaml:"openai"`
}

// Default returns a config usable without any file
func Default() *Config {
	var cfg Config
	cfg.Server.Port = 8080
	cfg.Server.RateLimit = 60
	cfg.Server.RateRefill = 1
	cfg.Server.ShutdownTimeout = 10 * time.Second
	cfg.Reports.OutputDir = "generated_reports"
	cfg.Reports.Prefix = "Process_Analysis"
	cfg.Reports.DefaultTemplate = reports.DefaultTemplate
	cfg.Reports.DefaultCleanupHours = 24
	cfg.Branding.ProjectName = "Process Documentation"
	cfg.Branding.Color = reports.DefaultBrandColor
	cfg.OpenAI.Temperature = 0.7
	cfg.OpenAI.MaxTokens = 2048
	cfg.OpenAI.PromptTemplate = "default"
	return &cfg
}

// Load baca file config.yaml di atas Default, lalu override dari env.
// File yang tidak ada bukan error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		log.Printf("config file %s not found, using defaults", path)
	default:
		return nil, err
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from PROCDOC_* variables
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	var errs []error
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := lookup(key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	num("PROCDOC_PORT", &c.Server.Port)
	if v, ok := lookup("PROCDOC_API_KEYS"); ok {
		keys, err := parseAPIKeys(v)
		if err != nil {
			errs = append(errs, err)
		} else {
			c.Server.APIKeys = keys
		}
	}
	if v, ok := lookup("PROCDOC_CORS_ORIGINS"); ok {
		c.Server.CORSOrigins = splitList(v)
	}

	str("PROCDOC_OUTPUT_DIR", &c.Reports.OutputDir)
	str("PROCDOC_REPORT_PREFIX", &c.Reports.Prefix)
	str("PROCDOC_DEFAULT_TEMPLATE", &c.Reports.DefaultTemplate)
	float("PROCDOC_CLEANUP_HOURS", &c.Reports.DefaultCleanupHours)
	duration("PROCDOC_CLEANUP_INTERVAL", &c.Reports.CleanupInterval)

	str("PROCDOC_PROJECT_NAME", &c.Branding.ProjectName)
	str("PROCDOC_COMPANY_NAME", &c.Branding.CompanyName)
	str("PROCDOC_BRAND_COLOR", &c.Branding.Color)
	str("PROCDOC_LOGO_PATH", &c.Branding.LogoPath)

	str("PROCDOC_DB_DRIVER", &c.Database.Driver)
	str("PROCDOC_DB_HOST", &c.Database.Host)
	num("PROCDOC_DB_PORT", &c.Database.Port)
	str("PROCDOC_DB_USER", &c.Database.User)
	str("PROCDOC_DB_PASSWORD", &c.Database.Password)
	str("PROCDOC_DB_NAME", &c.Database.Name)
	str("PROCDOC_DB_SSLMODE", &c.Database.SSLMode)

	boolean("PROCDOC_MINIO_ENABLED", &c.Minio.Enabled)
	str("PROCDOC_MINIO_ENDPOINT", &c.Minio.Endpoint)
	str("PROCDOC_MINIO_ACCESS_KEY", &c.Minio.AccessKey)
	str("PROCDOC_MINIO_SECRET_KEY", &c.Minio.SecretKey)
	str("PROCDOC_MINIO_BUCKET", &c.Minio.BucketName)

	str("PROCDOC_OPENAI_API_KEY", &c.OpenAI.APIKey)
	str("PROCDOC_OPENAI_MODEL", &c.OpenAI.Model)
	str("PROCDOC_OPENAI_BASE_URL", &c.OpenAI.BaseURL)
	str("PROCDOC_PROMPT_TEMPLATE", &c.OpenAI.PromptTemplate)
	str("PROCDOC_CUSTOM_PROMPT", &c.OpenAI.CustomPrompt)

	return errors.Join(errs...)
}

// parseAPIKeys reads "client=key,client2=key2"
func parseAPIKeys(v string) (map[string]string, error) {
	out := map[string]string{}
	for _, pair := range splitList(v) {
		name, key, ok := strings.Cut(pair, "=")
		name, key = strings.TrimSpace(name), strings.TrimSpace(key)
		if !ok || name == "" || key == "" {
			return nil, fmt.Errorf("PROCDOC_API_KEYS: malformed entry %q", name)
		}
		out[name] = key
	}
	return out, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate rejects settings the service cannot start with. An unusable logo
// is only logged and dropped.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if strings.TrimSpace(c.Reports.OutputDir) == "" {
		errs = append(errs, errors.New("reports.outputDir is required"))
	}
	if c.Reports.DefaultCleanupHours < 0 {
		errs = append(errs, errors.New("reports.defaultCleanupHours must not be negative"))
	}
	if _, err := reports.LookupTemplate(c.Reports.DefaultTemplate); err != nil {
		errs = append(errs, fmt.Errorf("reports.defaultTemplate: %w", err))
	}
	if err := reports.ValidateColor(c.Branding.Color); err != nil {
		errs = append(errs, fmt.Errorf("branding.brandColor: %w", err))
	}
	if err := reports.ValidateLogo(c.Branding.LogoPath); err != nil {
		log.Printf("branding.logoPath is set but invalid, logo will be skipped: %v", err)
		c.Branding.LogoPath = ""
	}
	switch c.Database.Driver {
	case "", "mysql", "postgres":
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not one of mysql, postgres", c.Database.Driver))
	}
	if c.Minio.Enabled && (c.Minio.Endpoint == "" || c.Minio.BucketName == "") {
		errs = append(errs, errors.New("minio.endpoint and minio.bucketName are required when minio is enabled"))
	}
	return errors.Join(errs...)
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds a lib/pq keyword/value connection string. Every value
// is single-quoted so spaces, quotes and backslashes survive.
func (c *Config) PostgresDSN() string {
	ssl := c.Database.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return strings.Join([]string{
		"host=" + pqQuote(c.Database.Host),
		"port=" + pqQuote(strconv.Itoa(c.Database.Port)),
		"user=" + pqQuote(c.Database.User),
		"password=" + pqQuote(c.Database.Password),
		"dbname=" + pqQuote(c.Database.Name),
		"sslmode=" + pqQuote(ssl),
	}, " ")
}

var pqEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func pqQuote(v string) string {
	return "'" + pqEscaper.Replace(v) + "'"
}
