package analyzer

import (
	"fmt"

	"billaudit/internal/config"
	"billaudit/internal/port"
)

// Options are provider-independent analyzer settings.
type Options struct {
	MaxTextChars int
}

// ProviderFactory creates a DocumentAnalyzer from a provider config.
type ProviderFactory func(cfg *config.AnalyzerProviderConfig, opts Options) (port.DocumentAnalyzer, error)

// registry of provider factories, populated by init() in each provider package.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewAnalyzer creates a DocumentAnalyzer from a provider config using the registered factory.
func NewAnalyzer(cfg *config.AnalyzerProviderConfig, opts Options) (port.DocumentAnalyzer, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown analyzer provider: %s", cfg.Provider)
	}
	return factory(cfg, opts)
}

// NewFromConfig builds the primary analyzer, chained with the secondary one when configured.
func NewFromConfig(cfg *config.AnalyzerConfig) (port.DocumentAnalyzer, error) {
	opts := Options{MaxTextChars: cfg.MaxTextChars}

	primary, err := NewAnalyzer(&cfg.Primary, opts)
	if err != nil {
		return nil, fmt.Errorf("primary analyzer: %w", err)
	}

	secondaryCfg := cfg.SecondaryConfig()
	if secondaryCfg == nil {
		return primary, nil
	}
	secondary, err := NewAnalyzer(secondaryCfg, opts)
	if err != nil {
		return nil, fmt.Errorf("secondary analyzer: %w", err)
	}
	return NewFallbackAnalyzer(
		[]port.DocumentAnalyzer{primary, secondary},
		[]string{cfg.Primary.Provider, secondaryCfg.Provider},
	), nil
}
