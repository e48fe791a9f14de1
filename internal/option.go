package internal

import "github.com/pattarin/treebank/internal/vision"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *Config
	analyzer vision.Analyzer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithAnalyzer overrides the vision gateway, mainly for tests.
func WithAnalyzer(an vision.Analyzer) Option {
	return func(a *application) {
		a.analyzer = an
	}
}
