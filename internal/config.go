package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/sgk/internal/cache"
	"github.com/starford/sgk/internal/grounding"
	"github.com/starford/sgk/internal/loader"
	"github.com/starford/sgk/internal/search"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Content sources.
const (
	SourceFS   = "fs"
	SourceHTTP = "http"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Content ContentConfig     `yaml:"content"`
	Cache   CacheConfig       `yaml:"cache"`
	Search  SearchConfig      `yaml:"search"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.validateCacheLocation(); err != nil {
		return err
	}
	if err := c.Search.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// validateCacheLocation rejects a persistent cache inside a watched content
// root: each cache write would raise a file event and trigger another reload.
func (c *Config) validateCacheLocation() error {
	if !c.Content.Watch || c.Content.Source != SourceFS || c.Cache.Backend == cache.BackendMemory {
		return nil
	}
	root, err := filepath.Abs(c.Content.Path)
	if err != nil {
		return fmt.Errorf("content: resolve path: %w", err)
	}
	path, err := filepath.Abs(c.Cache.Path)
	if err != nil {
		return fmt.Errorf("cache: resolve path: %w", err)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return nil
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	return fmt.Errorf("cache: path %q is inside watched content path %q", c.Cache.Path, c.Content.Path)
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ContentConfig says where the manifest and book texts come from.
type ContentConfig struct {
	Source   string `yaml:"source"`
	Path     string `yaml:"path"`
	BaseURL  string `yaml:"base_url"`
	Manifest string `yaml:"manifest"`
	// Watch reloads the corpus on file changes (fs source only).
	Watch bool `yaml:"watch"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	if c.Manifest == "" {
		c.Manifest = loader.DefaultManifest
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Source, validation.Required, validation.In(SourceFS, SourceHTTP)),
		validation.Field(&c.Path, validation.When(c.Source == SourceFS, validation.Required)),
		validation.Field(&c.BaseURL, validation.When(c.Source == SourceHTTP, validation.Required)),
	)
}

// CacheConfig selects the chunk cache backend.
type CacheConfig struct {
	Backend string `yaml:"backend"`
	// Path is a directory for the file backend and a database file for sqlite.
	Path string `yaml:"path"`
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	if c.Backend == "" {
		c.Backend = cache.BackendMemory
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.In(cache.BackendMemory, cache.BackendFile, cache.BackendSQLite)),
		validation.Field(&c.Path, validation.When(c.Backend != cache.BackendMemory, validation.Required)),
	)
}

// SearchConfig holds retrieval defaults.
type SearchConfig struct {
	TopK            int `yaml:"top_k"`
	MaxContextChars int `yaml:"max_context_chars"`
	QueryCacheSize  int `yaml:"query_cache_size"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TopK, validation.Required, validation.Min(1), validation.Max(50)),
		validation.Field(&c.MaxContextChars, validation.Required, validation.Min(1)),
		validation.Field(&c.QueryCacheSize, validation.Min(0)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Content: ContentConfig{
			Source:   SourceFS,
			Path:     "./sgk",
			Manifest: loader.DefaultManifest,
		},
		Cache: CacheConfig{
			Backend: cache.BackendMemory,
		},
		Search: SearchConfig{
			TopK:            search.DefaultTopK,
			MaxContextChars: grounding.DefaultMaxChars,
			QueryCacheSize:  search.DefaultQueryCacheSize,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
