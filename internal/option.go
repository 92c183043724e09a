package internal

import (
	"io"

	"github.com/starford/sgk/internal/loader"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	loader    loader.Loader
	logOutput io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLoader overrides the content loader built from the config.
func WithLoader(l loader.Loader) Option {
	return func(a *application) {
		a.loader = l
	}
}

// WithLogOutput redirects the JSON logger (stdout by default). The MCP
// command points it at stderr so stdout stays free for the protocol.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}
