// Package yaml reads the curator configuration file and writes run
// reports, both in YAML.
package yaml

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/fwojciec/curator"
	"gopkg.in/yaml.v3"
)

// Content extractors selectable for reference pages.
const (
	ExtractorReadability = "readability"
	ExtractorTrafilatura = "trafilatura"
)

// Defaults applied to missing configuration values.
const (
	DefaultFetchConcurrency   = 8
	DefaultFetchRetries       = 3
	DefaultFetchTimeout       = 30 * time.Second
	DefaultRPS                = 2.0
	DefaultMaxPages           = 200
	DefaultRenderTimeout      = 45 * time.Second
	DefaultRecycleAfter       = 75
	DefaultSettle             = 5 * time.Second
	DefaultReadySelector      = "div[class*='highlight'] pre, div.nbinput pre"
	DefaultProcessConcurrency = 4
	DefaultProcessRetries     = 2
	DefaultThreshold          = 0.7
	DefaultFallbackConfidence = 0.1
	DefaultInterval           = 7 * 24 * time.Hour
	DefaultRunTimeout         = 30 * time.Minute
	DefaultGalleryDir         = "gallery"
)

// Config is the curator configuration file.
type Config struct {
	Packages []PackageConfig `yaml:"packages,omitempty"`
	Fetch    FetchConfig     `yaml:"fetch"`
	Process  ProcessConfig   `yaml:"process"`
	Run      RunConfig       `yaml:"run"`
	Gallery  GalleryConfig   `yaml:"gallery"`
}

// PackageConfig is one registry entry.
type PackageConfig struct {
	Name        string   `yaml:"name"`
	DocsURL     string   `yaml:"docs_url"`
	RepoURL     string   `yaml:"repo_url,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Family      string   `yaml:"family"`
	Patterns    []string `yaml:"patterns"`
	Priority    int      `yaml:"priority,omitempty"`
	Render      bool     `yaml:"render,omitempty"`
}

// FetchConfig tunes discovery and fetching.
type FetchConfig struct {
	Concurrency int           `yaml:"concurrency,omitempty"`
	Retries     int           `yaml:"retries,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	RPS         float64       `yaml:"rps,omitempty"`
	MaxPages    int           `yaml:"max_pages,omitempty"`
	UserAgent   string        `yaml:"user_agent,omitempty"`
	Render      RenderConfig  `yaml:"render,omitempty"`
}

// RenderConfig tunes the headless browser used for packages marked
// render. Gallery pages that build their examples client-side are held
// until ReadySelector matches or Settle elapses.
type RenderConfig struct {
	Timeout       time.Duration `yaml:"timeout,omitempty"`
	RecycleAfter  int           `yaml:"recycle_after,omitempty"`
	ReadySelector string        `yaml:"ready_selector,omitempty"`
	Settle        time.Duration `yaml:"settle,omitempty"`
}

// ProcessConfig tunes model processing.
type ProcessConfig struct {
	Concurrency        int     `yaml:"concurrency,omitempty"`
	Retries            int     `yaml:"retries,omitempty"`
	Threshold          float64 `yaml:"threshold,omitempty"`
	FallbackConfidence float64 `yaml:"fallback_confidence,omitempty"`
	Model              string  `yaml:"model,omitempty"`
	MaxPromptTokens    int     `yaml:"max_prompt_tokens,omitempty"`
	ContentExtractor   string  `yaml:"content_extractor,omitempty"`
}

// RunConfig holds the run cadence and time budget.
type RunConfig struct {
	Interval time.Duration `yaml:"interval,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
}

// GalleryConfig places rendered files.
type GalleryConfig struct {
	// Dir is relative to the publish root.
	Dir string `yaml:"dir,omitempty"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	c := &Config{}
	c.defaults()
	return c
}

// LoadConfig reads, defaults and validates the file at path. Every failure
// is EINVALID.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, curator.Errorf(curator.EINVALID, "failed to read config %s: %v", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a configuration document. Unknown keys are rejected.
func ParseConfig(data []byte) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, curator.Errorf(curator.EINVALID, "failed to parse config: %v", err)
	}
	c.defaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) defaults() {
	if c.Fetch.Concurrency == 0 {
		c.Fetch.Concurrency = DefaultFetchConcurrency
	}
	if c.Fetch.Retries == 0 {
		c.Fetch.Retries = DefaultFetchRetries
	}
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = DefaultFetchTimeout
	}
	if c.Fetch.RPS == 0 {
		c.Fetch.RPS = DefaultRPS
	}
	if c.Fetch.MaxPages == 0 {
		c.Fetch.MaxPages = DefaultMaxPages
	}
	if c.Fetch.Render.Timeout == 0 {
		c.Fetch.Render.Timeout = DefaultRenderTimeout
	}
	if c.Fetch.Render.RecycleAfter == 0 {
		c.Fetch.Render.RecycleAfter = DefaultRecycleAfter
	}
	if c.Fetch.Render.ReadySelector == "" {
		c.Fetch.Render.ReadySelector = DefaultReadySelector
	}
	if c.Fetch.Render.Settle == 0 {
		c.Fetch.Render.Settle = DefaultSettle
	}
	if c.Process.Concurrency == 0 {
		c.Process.Concurrency = DefaultProcessConcurrency
	}
	if c.Process.Retries == 0 {
		c.Process.Retries = DefaultProcessRetries
	}
	if c.Process.Threshold == 0 {
		c.Process.Threshold = DefaultThreshold
	}
	if c.Process.FallbackConfidence == 0 {
		c.Process.FallbackConfidence = DefaultFallbackConfidence
	}
	if c.Process.ContentExtractor == "" {
		c.Process.ContentExtractor = ExtractorReadability
	}
	if c.Run.Interval == 0 {
		c.Run.Interval = DefaultInterval
	}
	if c.Run.Timeout == 0 {
		c.Run.Timeout = DefaultRunTimeout
	}
	if c.Gallery.Dir == "" {
		c.Gallery.Dir = DefaultGalleryDir
	}
}

// Validate returns an EINVALID error for the first bad value.
func (c *Config) Validate() error {
	switch {
	case c.Fetch.Concurrency < 0, c.Process.Concurrency < 0:
		return curator.Errorf(curator.EINVALID, "concurrency must be positive")
	case c.Fetch.Retries < 0, c.Process.Retries < 0:
		return curator.Errorf(curator.EINVALID, "retries must not be negative")
	case c.Fetch.Timeout < 0, c.Run.Timeout < 0, c.Run.Interval < 0,
		c.Fetch.Render.Timeout < 0, c.Fetch.Render.Settle < 0:
		return curator.Errorf(curator.EINVALID, "durations must not be negative")
	case c.Fetch.RPS < 0:
		return curator.Errorf(curator.EINVALID, "rps must not be negative")
	case c.Fetch.MaxPages < 0, c.Process.MaxPromptTokens < 0, c.Fetch.Render.RecycleAfter < 0:
		return curator.Errorf(curator.EINVALID, "limits must not be negative")
	case c.Process.Threshold < 0 || c.Process.Threshold > 1:
		return curator.Errorf(curator.EINVALID, "threshold must be between 0 and 1")
	case c.Process.FallbackConfidence < 0 || c.Process.FallbackConfidence > 1:
		return curator.Errorf(curator.EINVALID, "fallback_confidence must be between 0 and 1")
	case c.Process.FallbackConfidence >= c.Process.Threshold:
		return curator.Errorf(curator.EINVALID, "fallback_confidence must be below threshold")
	}
	switch c.Process.ContentExtractor {
	case ExtractorReadability, ExtractorTrafilatura:
	default:
		return curator.Errorf(curator.EINVALID, "unknown content_extractor %q", c.Process.ContentExtractor)
	}
	dir := path.Clean(c.Gallery.Dir)
	if path.IsAbs(dir) || dir == ".." || strings.HasPrefix(dir, "../") {
		return curator.Errorf(curator.EINVALID, "gallery dir %q must be relative to the publish root", c.Gallery.Dir)
	}
	_, err := c.Registry()
	return err
}

// Registry builds the package registry. An empty packages list selects
// the built-in catalog.
func (c *Config) Registry() (*curator.Registry, error) {
	if len(c.Packages) == 0 {
		return curator.NewRegistry(curator.DefaultPackages()...)
	}
	pkgs := make([]*curator.Package, 0, len(c.Packages))
	for _, pc := range c.Packages {
		family, err := curator.ParseDocFamily(pc.Family)
		if err != nil {
			return nil, curator.Errorf(curator.EINVALID, "package %q: %s", pc.Name, curator.ErrorMessage(err))
		}
		pkgs = append(pkgs, &curator.Package{
			Name:        pc.Name,
			DocsURL:     pc.DocsURL,
			RepoURL:     pc.RepoURL,
			Description: pc.Description,
			Family:      family,
			Patterns:    pc.Patterns,
			Priority:    pc.Priority,
			Render:      pc.Render,
		})
	}
	return curator.NewRegistry(pkgs...)
}
