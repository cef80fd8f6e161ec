package services

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/atomikkus/therapies-api/internal/config"
)

// Provider lazily constructs the shared Converter and Extractor exactly once,
// even under concurrent first use. Both are read-only after construction and
// safe to share across requests.
type Provider struct {
	cfg    config.Config
	logger *zap.Logger

	once      sync.Once
	converter *Converter
	extractor *Extractor
	err       error
}

func NewProvider(cfg config.Config, logger *zap.Logger) *Provider {
	return &Provider{cfg: cfg, logger: logger}
}

// Configured reports whether the Mistral credential is present, without
// constructing any client.
func (p *Provider) Configured() bool {
	return strings.TrimSpace(p.cfg.MistralAPIKey) != ""
}

// Clients returns the process-wide Converter and Extractor, constructing them
// on first call. A missing credential fails fast with ErrNotConfigured.
func (p *Provider) Clients() (*Converter, *Extractor, error) {
	p.once.Do(func() {
		client, err := NewClient(p.cfg)
		if err != nil {
			p.err = err
			return
		}
		p.converter = NewConverter(client, p.cfg.OCRModel, p.logger)
		p.extractor = NewExtractor(client, p.cfg.ExtractModel, p.logger)
	})
	return p.converter, p.extractor, p.err
}
