package collaborator

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/actuallystonmai/product-recommendation-service/internal/domain"
	"go.uber.org/zap"
)

type CatalogClient struct {
	baseURL string
	timeout time.Duration
	http    httpDoer
	logger  *zap.Logger
}

func NewCatalogClient(baseURL string, timeout time.Duration, client *http.Client, logger *zap.Logger) *CatalogClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &CatalogClient{
		baseURL: baseURL,
		timeout: timeout,
		http:    client,
		logger:  logger.Named("catalog"),
	}
}

// Products fetches a catalog snapshot. An empty category means all categories.
// Transport failures, non-200 statuses and undecodable bodies are logged and
// returned as domain.ErrCollaboratorUnavailable. Cancellation of ctx is returned as is.
func (c *CatalogClient) Products(ctx context.Context, category string, limit int) ([]domain.Product, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if category != "" {
		q.Set("category", category)
	}
	endpoint := joinURL(c.baseURL, "/products") + "?" + q.Encode()

	var products []domain.Product
	if err := getJSON(ctx, c.http, c.timeout, endpoint, nil, &products); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn("catalog fetch failed", zap.String("category", category), zap.Error(err))
		return nil, fmt.Errorf("%w: catalog: %v", domain.ErrCollaboratorUnavailable, err)
	}

	valid := products[:0]
	for _, p := range products {
		if p.ID == "" || p.Price < 0 {
			c.logger.Debug("skipping invalid product", zap.String("product_id", p.ID))
			continue
		}
		if p.Tags == nil {
			p.Tags = []string{}
		}
		valid = append(valid, p)
	}
	return valid, nil
}
