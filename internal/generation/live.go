package generation

import (
	"context"
	"time"

	"github.com/actuallystonmai/product-recommendation-service/internal/domain"
	"github.com/actuallystonmai/product-recommendation-service/internal/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// Completer is a text-completion backend.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// LiveGateway forwards prompts to a Completer with a timeout and a circuit breaker.
// Every failure other than caller cancellation becomes an *UnavailableError.
type LiveGateway struct {
	completer Completer
	timeout   time.Duration
	breaker   *gobreaker.CircuitBreaker[string]
	metrics   *metrics.Collector
	logger    *zap.Logger
}

func NewLiveGateway(completer Completer, timeout time.Duration, breaker *gobreaker.CircuitBreaker[string], m *metrics.Collector, logger *zap.Logger) *LiveGateway {
	return &LiveGateway{
		completer: completer,
		timeout:   timeout,
		breaker:   breaker,
		metrics:   m,
		logger:    logger.Named("generation").With(zap.String("provider", completer.Name())),
	}
}

func (g *LiveGateway) Live() bool       { return true }
func (g *LiveGateway) Provider() string { return g.completer.Name() }

func (g *LiveGateway) Generate(ctx context.Context, req Request) (domain.RawGeneration, error) {
	start := time.Now()
	text, err := g.breaker.Execute(func() (string, error) {
		cctx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()
		out, err := g.completer.Complete(cctx, req.Prompt)
		if err != nil && ctx.Err() != nil {
			// caller gone; not the backend's fault
			return "", context.Canceled
		}
		return out, err
	})
	elapsed := time.Since(start)
	g.metrics.ObserveGeneration(g.completer.Name(), elapsed, err)

	if err != nil {
		if ctx.Err() != nil {
			return domain.RawGeneration{}, ctx.Err()
		}
		g.logger.Error("generation failed",
			zap.String("kind", req.Kind.String()),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return domain.RawGeneration{}, &UnavailableError{Provider: g.completer.Name(), Cause: err}
	}

	g.logger.Debug("generation completed",
		zap.String("kind", req.Kind.String()),
		zap.Duration("elapsed", elapsed),
		zap.Int("chars", len(text)))
	return domain.RawGeneration{Text: text}, nil
}
