package generation

import (
	"context"
	"fmt"

	"github.com/actuallystonmai/product-recommendation-service/internal/config"
	"github.com/actuallystonmai/product-recommendation-service/internal/metrics"
	"go.uber.org/zap"
)

// New selects the gateway once at startup. Auto mode without credentials, or a
// backend that cannot be initialised in auto mode, falls back to the mock path.
// An explicitly requested backend that fails to initialise is an error.
func New(ctx context.Context, cfg config.GenerationConfig, m *metrics.Collector, logger *zap.Logger) (Gateway, error) {
	provider := cfg.ResolvedProvider()

	var (
		completer Completer
		err       error
	)
	switch provider {
	case config.ProviderMock:
		logger.Info("no generation backend configured, using mock responses")
		return NewMockGateway(), nil
	case config.ProviderBedrock:
		completer, err = NewBedrockCompleter(ctx, cfg)
	case config.ProviderGemini:
		completer, err = NewGeminiCompleter(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown generation provider %q", provider)
	}

	if err != nil {
		if cfg.Provider == config.ProviderAuto {
			logger.Error("generation backend init failed, using mock responses",
				zap.String("provider", provider), zap.Error(err))
			return NewMockGateway(), nil
		}
		return nil, fmt.Errorf("init %s backend: %w", provider, err)
	}

	breaker := NewBreaker(BreakerConfig{
		Name:                provider,
		ConsecutiveFailures: cfg.BreakerFailures,
		OpenTimeout:         cfg.BreakerTimeout,
	}, logger)

	logger.Info("generation backend configured", zap.String("provider", provider))
	return NewLiveGateway(completer, cfg.Timeout, breaker, m, logger), nil
}
