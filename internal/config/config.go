package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"img2pdf/internal/domain"
	"img2pdf/internal/infra/logging"
)

// DefaultPath is used when CONFIG_PATH is not set.
const DefaultPath = "config.yaml"

// PaperSize is a page size in inches.
type PaperSize struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Config is the complete service configuration. It is loaded once at startup
// and handed to the HTTP server; nothing reads it from a global.
type Config struct {
	Server struct {
		Host        string `yaml:"host"`
		Port        string `yaml:"port"`
		Prefork     bool   `yaml:"prefork"`
		BodyLimitMB int    `yaml:"body_limit_mb"`
	} `yaml:"server"`

	Limits struct {
		AllowedExtensions []string `yaml:"allowed_extensions"`
		MaxFiles          int      `yaml:"max_files"`
		MaxImagePixels    int64    `yaml:"max_image_pixels"`
	} `yaml:"limits"`

	Logger struct {
		File       string `yaml:"file"`
		Level      string `yaml:"level"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"logger"`

	Cache struct {
		PDFCacheEnabled bool          `yaml:"pdf_cache_enabled"`
		PDFCacheTTL     time.Duration `yaml:"pdf_cache_ttl"`
		RedisHost       string        `yaml:"redis_host"`
		RateLimitDB     int           `yaml:"redis_rate_db"`
		PDFCacheDB      int           `yaml:"redis_pdf_db"`
	} `yaml:"cache"`

	RateLimiter struct {
		EnableUserLimiter bool          `yaml:"enable_user_limiter"`
		UserLimit         int           `yaml:"user_limit"`
		Interval          time.Duration `yaml:"interval"`
	} `yaml:"rate_limiter"`

	PDF struct {
		DefaultQuality  int                  `yaml:"default_quality"`
		EstimateQuality int                  `yaml:"estimate_quality"`
		DefaultPaper    string               `yaml:"default_paper"`
		PaperSizes      map[string]PaperSize `yaml:"paper_sizes"`
		FitRatio        float64              `yaml:"fit_ratio"`
		MaxImagePx      int                  `yaml:"max_image_px"`
		Compress        bool                 `yaml:"compress"`
		DownloadName    string               `yaml:"download_name"`
	} `yaml:"pdf"`
}

// BodyLimitBytes returns the request body ceiling in bytes.
func (c Config) BodyLimitBytes() int {
	return c.Server.BodyLimitMB * 1024 * 1024
}

// Default returns the configuration used when no file is present.
func Default() Config {
	var cfg Config
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = ":5000"
	cfg.Server.BodyLimitMB = 50

	cfg.Limits.AllowedExtensions = []string{"png", "jpg", "jpeg"}
	cfg.Limits.MaxFiles = 200
	cfg.Limits.MaxImagePixels = domain.DefaultMaxImagePixels

	cfg.Logger.Level = "info"
	cfg.Logger.MaxSizeMB = 10
	cfg.Logger.MaxBackups = 3
	cfg.Logger.MaxAgeDays = 7

	cfg.Cache.PDFCacheTTL = 10 * time.Minute
	cfg.Cache.PDFCacheDB = 1

	cfg.RateLimiter.Interval = time.Minute

	cfg.PDF.DefaultQuality = 85
	cfg.PDF.EstimateQuality = 75
	cfg.PDF.DefaultPaper = "LETTER"
	cfg.PDF.PaperSizes = map[string]PaperSize{
		"LETTER": {Width: 8.5, Height: 11},
		"A4":     {Width: 8.27, Height: 11.69},
	}
	cfg.PDF.FitRatio = 0.9
	cfg.PDF.Compress = true
	cfg.PDF.DownloadName = "compressed_images.pdf"
	return cfg
}

// Load reads the configuration from CONFIG_PATH (after loading .env, if any).
func Load() Config {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.Warn("Ignoring unreadable .env file", "error", err)
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = DefaultPath
	}
	return LoadFrom(path)
}

// LoadFrom reads the YAML file at path on top of Default. A missing file
// yields the defaults; an unreadable or invalid one panics, as the service
// cannot start with a broken configuration.
func LoadFrom(path string) Config {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg
		}
		panic(fmt.Sprintf("config: read %s: %v", path, err))
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		panic(fmt.Sprintf("config: parse %s: %v", path, err))
	}

	normalize(&cfg)
	if err := validate(cfg); err != nil {
		panic(fmt.Sprintf("config: %s: %v", path, err))
	}
	return cfg
}

func normalize(cfg *Config) {
	exts := make([]string, 0, len(cfg.Limits.AllowedExtensions))
	for _, e := range cfg.Limits.AllowedExtensions {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" {
			exts = append(exts, e)
		}
	}
	cfg.Limits.AllowedExtensions = exts

	sizes := make(map[string]PaperSize, len(cfg.PDF.PaperSizes))
	for name, p := range cfg.PDF.PaperSizes {
		sizes[strings.ToUpper(name)] = p
	}
	cfg.PDF.PaperSizes = sizes
	cfg.PDF.DefaultPaper = strings.ToUpper(cfg.PDF.DefaultPaper)
}

func validate(cfg Config) error {
	if cfg.Server.BodyLimitMB <= 0 {
		return errors.New("server.body_limit_mb must be positive")
	}
	if len(cfg.Limits.AllowedExtensions) == 0 {
		return errors.New("limits.allowed_extensions is empty")
	}
	if cfg.Limits.MaxFiles < 0 {
		return errors.New("limits.max_files must not be negative")
	}
	if cfg.Limits.MaxImagePixels < 0 {
		return errors.New("limits.max_image_pixels must not be negative")
	}
	if cfg.RateLimiter.UserLimit < 0 {
		return errors.New("rate_limiter.user_limit must not be negative")
	}
	if cfg.RateLimiter.UserLimit > 0 && cfg.RateLimiter.Interval <= 0 {
		return errors.New("rate_limiter.interval must be positive")
	}
	if cfg.PDF.FitRatio <= 0 || cfg.PDF.FitRatio > 1 {
		return errors.New("pdf.fit_ratio must be in (0, 1]")
	}
	if cfg.PDF.MaxImagePx < 0 {
		return errors.New("pdf.max_image_px must not be negative")
	}
	paper, ok := cfg.PDF.PaperSizes[cfg.PDF.DefaultPaper]
	if !ok {
		return fmt.Errorf("pdf.default_paper %q is not in pdf.paper_sizes", cfg.PDF.DefaultPaper)
	}
	if paper.Width <= 0 || paper.Height <= 0 {
		return fmt.Errorf("pdf.paper_sizes.%s has no area", cfg.PDF.DefaultPaper)
	}
	if cfg.PDF.DownloadName == "" {
		return errors.New("pdf.download_name is empty")
	}
	return nil
}
