package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/actuallystonmai/product-recommendation-service/internal/assembler"
	"github.com/actuallystonmai/product-recommendation-service/internal/domain"
	"github.com/actuallystonmai/product-recommendation-service/internal/generation"
	"github.com/actuallystonmai/product-recommendation-service/internal/parser"
	"github.com/actuallystonmai/product-recommendation-service/internal/prompt"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type RecommendRequest struct {
	UserPreferences string
	Category        string
	BudgetMax       *float64
	PreviousOrders  []string
}

// Recommend runs the full recommendation pipeline for a bearer token.
//
// Authentication failures, an empty or unreachable catalog and live generation
// failures end the request. A missing identity or order history only makes the
// result less personal.
func (s *Service) Recommend(ctx context.Context, token string, req RecommendRequest) (domain.RecommendationResult, error) {
	r := s.newRun(PipelineRecommend)

	caller, err := s.authenticate(token)
	if err != nil {
		return domain.RecommendationResult{}, r.fail(ctx, StateAuthFailed, err)
	}
	r.advance(StateAuthenticated)

	rc, err := s.gatherContext(ctx, token, caller, req)
	if err != nil {
		if errors.Is(err, domain.ErrCatalogUnavailable) {
			return domain.RecommendationResult{}, r.fail(ctx, StateCatalogUnavailable, err)
		}
		return domain.RecommendationResult{}, r.fail(ctx, StateFailed, err)
	}
	r.advance(StateContextAssembled)

	text, err := s.prompts.Build(prompt.Recommend, prompt.RecommendInput(rc))
	if err != nil {
		return domain.RecommendationResult{}, r.fail(ctx, StateFailed, fmt.Errorf("build prompt: %w", err))
	}
	r.advance(StatePromptBuilt)

	raw, err := s.generate(ctx, generation.Request{
		Kind:     prompt.Recommend,
		Prompt:   text,
		Products: rc.Products,
	})
	if err != nil {
		return domain.RecommendationResult{}, r.fail(ctx, StateGenerationFailed, err)
	}
	r.advance(StateGenerated)

	outcome := parser.Parse(raw)
	if d, ok := outcome.(parser.Degraded); ok {
		s.metrics.ParseDegraded()
		s.logger.Debug("generation output had no usable json, using raw text",
			zap.Int("length", len(d.Text)))
	}
	r.advance(StateParsed)

	result := assembler.Assemble(outcome.Entries(), outcome.Explanation(), rc.Products, rc.Identity != nil)
	r.advance(StateAssembled)
	r.succeed()
	return result, nil
}

// gatherContext fetches identity, catalog and stored order history concurrently.
// Only the catalog is required; a catalog failure cancels the other fetches.
func (s *Service) gatherContext(ctx context.Context, token string, caller domain.Identity, req RecommendRequest) (domain.RecommendationContext, error) {
	var (
		identity *domain.Identity
		products []domain.Product
		stored   []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		identity = s.fetchIdentity(gctx, token)
		return nil
	})
	g.Go(func() error {
		p, err := s.fetchCatalog(gctx, req.Category)
		if err != nil {
			return err
		}
		products = p
		return nil
	})
	if s.orders != nil {
		g.Go(func() error {
			stored = s.fetchOrderHistory(gctx, caller.Subject)
			return nil
		})
	}

	err := g.Wait()
	if ctx.Err() != nil {
		return domain.RecommendationContext{}, ctx.Err()
	}
	if err != nil {
		return domain.RecommendationContext{}, err
	}

	return domain.RecommendationContext{
		Caller:           caller,
		Identity:         identity,
		Products:         products,
		UserPreferences:  req.UserPreferences,
		BudgetMax:        req.BudgetMax,
		PreviousOrderIDs: mergeOrderIDs(req.PreviousOrders, stored),
	}, nil
}

// fetchIdentity returns nil when the identity collaborator has nothing for the token.
func (s *Service) fetchIdentity(ctx context.Context, token string) *domain.Identity {
	id, err := s.identity.Me(ctx, token)
	if err != nil {
		if ctx.Err() == nil {
			s.metrics.CollaboratorFailure("identity")
			s.logger.Debug("continuing without identity", zap.Error(err))
		}
		return nil
	}
	return &id
}

// fetchCatalog fails with ErrCatalogUnavailable when the catalog cannot be reached or
// is empty.
func (s *Service) fetchCatalog(ctx context.Context, category string) ([]domain.Product, error) {
	products, err := s.catalog.Products(ctx, category, s.opts.CatalogLimit)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.metrics.CollaboratorFailure("catalog")
		return nil, fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, err)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("%w: catalog returned no products", domain.ErrCatalogUnavailable)
	}
	return products, nil
}

func (s *Service) fetchOrderHistory(ctx context.Context, subject string) []string {
	ids, err := s.orders.RecentProductIDs(ctx, subject, s.opts.OrderHistoryLimit)
	if err != nil {
		if ctx.Err() == nil {
			s.metrics.CollaboratorFailure("order_history")
			s.logger.Warn("order history unavailable", zap.String("subject", subject), zap.Error(err))
		}
		return nil
	}
	return ids
}

// generate calls the gateway. Caller cancellation is returned as the context error;
// anything else from the gateway is a generation failure.
func (s *Service) generate(ctx context.Context, req generation.Request) (domain.RawGeneration, error) {
	raw, err := s.gateway.Generate(ctx, req)
	if err == nil {
		return raw, nil
	}
	if ctx.Err() != nil {
		return domain.RawGeneration{}, ctx.Err()
	}
	if generation.IsUnavailable(err) {
		return domain.RawGeneration{}, err
	}
	return domain.RawGeneration{}, fmt.Errorf("generate %s: %w", req.Kind, err)
}

// mergeOrderIDs keeps requested ids first, then stored ids not already present.
func mergeOrderIDs(requested, stored []string) []string {
	out := make([]string, 0, len(requested)+len(stored))
	seen := make(map[string]struct{}, len(requested)+len(stored))
	for _, list := range [][]string{requested, stored} {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
