package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/actuallystonmai/product-recommendation-service/internal/domain"
	"github.com/actuallystonmai/product-recommendation-service/internal/generation"
	"github.com/actuallystonmai/product-recommendation-service/internal/prompt"
)

// Query answers a free-text question about the catalog. No authentication.
// The answer is the generator's text as is; the response carries the catalog
// snapshot it was asked about.
func (s *Service) Query(ctx context.Context, query string, queryContext map[string]any) (domain.QueryResult, error) {
	r := s.newRun(PipelineQuery)
	r.advance(StateAuthenticated)

	products, err := s.fetchCatalog(ctx, "")
	if err != nil {
		if errors.Is(err, domain.ErrCatalogUnavailable) {
			return domain.QueryResult{}, r.fail(ctx, StateCatalogUnavailable, err)
		}
		return domain.QueryResult{}, r.fail(ctx, StateFailed, err)
	}
	r.advance(StateContextAssembled)

	text, err := s.prompts.Build(prompt.Query, prompt.Input{
		Products:     products,
		Query:        query,
		QueryContext: queryContext,
	})
	if err != nil {
		return domain.QueryResult{}, r.fail(ctx, StateFailed, fmt.Errorf("build prompt: %w", err))
	}
	r.advance(StatePromptBuilt)

	raw, err := s.generate(ctx, generation.Request{
		Kind:     prompt.Query,
		Prompt:   text,
		Products: products,
		Query:    query,
	})
	if err != nil {
		return domain.QueryResult{}, r.fail(ctx, StateGenerationFailed, err)
	}
	r.advance(StateGenerated)
	r.succeed()

	return domain.QueryResult{Answer: raw.Text, Products: products}, nil
}
