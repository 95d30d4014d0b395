package service

import (
	"context"
	"fmt"
	"time"

	"github.com/brewops/schemasync/internal/domain"
	"github.com/brewops/schemasync/internal/logger"
	"github.com/go-resty/resty/v2"
)

// SchemaGenerator is the capability the orchestrator needs from the
// structured-data generation step: one opaque call per page with a binary
// success/failure outcome.
type SchemaGenerator interface {
	Generate(ctx context.Context, pageID string) error
}

// GeneratorConfig holds configuration for the HTTP schema generator.
type GeneratorConfig struct {
	Endpoint    string
	APIKey      string
	TimeoutSecs int
}

// HTTPGenerator invokes an external schema-generation service over HTTP.
// When no endpoint is configured the generator is disabled and Generate
// becomes a no-op, so local environments can run the pipeline without the
// generation backend.
type HTTPGenerator struct {
	client   *resty.Client
	endpoint string
	enabled  bool
	logger   *logger.Logger
}

// NewHTTPGenerator creates a new HTTP-backed schema generator.
// Parameters:
//   - cfg: generator configuration; nil or an empty endpoint disables it.
//   - log: logger instance.
// Returns:
//   - *HTTPGenerator: initialized generator.
func NewHTTPGenerator(cfg *GeneratorConfig, log *logger.Logger) *HTTPGenerator {
	if cfg == nil || cfg.Endpoint == "" {
		return &HTTPGenerator{enabled: false, logger: log}
	}

	timeout := 120 * time.Second
	if cfg.TimeoutSecs > 0 {
		timeout = time.Duration(cfg.TimeoutSecs) * time.Second
	}

	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}

	return &HTTPGenerator{
		client:   client,
		endpoint: cfg.Endpoint,
		enabled:  true,
		logger:   log,
	}
}

// IsEnabled reports whether a generation endpoint is configured.
func (g *HTTPGenerator) IsEnabled() bool {
	return g.enabled
}

type generateRequest struct {
	PageID string `json:"page_id"`
}

type generateResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Generate asks the external service to produce structured-data output for a
// page. The document itself is owned by that service; only the binary
// outcome matters here.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - pageID: catalog page ID.
// Returns:
//   - error: GenerationError if the call fails; nil when disabled.
func (g *HTTPGenerator) Generate(ctx context.Context, pageID string) error {
	if !g.enabled {
		g.logger.WithField(logger.FieldPageID, pageID).Debug("Schema generator disabled, skipping")
		return nil
	}

	var result generateResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(&generateRequest{PageID: pageID}).
		SetResult(&result).
		Post(g.endpoint)
	if err != nil {
		return domain.NewGenerationError(err)
	}
	if !resp.IsSuccess() {
		return domain.NewGenerationError(fmt.Errorf("generator returned status %d", resp.StatusCode()))
	}
	if !result.Success {
		return domain.NewGenerationError(fmt.Errorf("generator rejected page %s: %s", pageID, result.Error))
	}

	return nil
}
