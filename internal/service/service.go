package service

import (
	"context"

	"github.com/actuallystonmai/product-recommendation-service/internal/domain"
	"github.com/actuallystonmai/product-recommendation-service/internal/generation"
	"github.com/actuallystonmai/product-recommendation-service/internal/metrics"
	"github.com/actuallystonmai/product-recommendation-service/internal/prompt"
	"go.uber.org/zap"
)

const (
	defaultCatalogLimit      = 20
	defaultOrderHistoryLimit = 20
)

type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}

type IdentitySource interface {
	Me(ctx context.Context, token string) (domain.Identity, error)
}

type CatalogSource interface {
	Products(ctx context.Context, category string, limit int) ([]domain.Product, error)
}

// OrderHistory is optional. A nil OrderHistory means no stored orders.
type OrderHistory interface {
	RecentProductIDs(ctx context.Context, userEmail string, limit int) ([]string, error)
}

// TranscriptStore is optional. A nil TranscriptStore makes every chat single-turn.
type TranscriptStore interface {
	Load(ctx context.Context, subject, conversationID string) ([]domain.ChatTurn, error)
	Append(ctx context.Context, subject, conversationID string, turns ...domain.ChatTurn) error
}

type Deps struct {
	Verifier    TokenVerifier
	Identity    IdentitySource
	Catalog     CatalogSource
	Orders      OrderHistory
	Transcripts TranscriptStore
	Gateway     generation.Gateway
	Metrics     *metrics.Collector
	Logger      *zap.Logger
}

type Options struct {
	CatalogLimit      int
	OrderHistoryLimit int
	// Services is echoed by Health, keyed by collaborator name.
	Services map[string]string
}

type Service struct {
	verifier    TokenVerifier
	identity    IdentitySource
	catalog     CatalogSource
	orders      OrderHistory
	transcripts TranscriptStore
	gateway     generation.Gateway
	prompts     *prompt.Builder
	metrics     *metrics.Collector
	logger      *zap.Logger
	opts        Options
}

func NewService(deps Deps, opts Options) *Service {
	if opts.CatalogLimit <= 0 {
		opts.CatalogLimit = defaultCatalogLimit
	}
	if opts.OrderHistoryLimit <= 0 {
		opts.OrderHistoryLimit = defaultOrderHistoryLimit
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		verifier:    deps.Verifier,
		identity:    deps.Identity,
		catalog:     deps.Catalog,
		orders:      deps.Orders,
		transcripts: deps.Transcripts,
		gateway:     deps.Gateway,
		prompts:     prompt.NewBuilder(),
		metrics:     deps.Metrics,
		logger:      logger.Named("service"),
		opts:        opts,
	}
}

// Authenticate verifies token ahead of a pipeline run so callers can reject a bad
// credential before reading the request. A failure is recorded as the pipeline's
// terminal state.
func (s *Service) Authenticate(pipeline Pipeline, token string) (domain.Identity, error) {
	id, err := s.authenticate(token)
	if err != nil {
		s.newRun(pipeline).finish(StateAuthFailed)
		return domain.Identity{}, err
	}
	return id, nil
}

// authenticate verifies the bearer token. An empty token is ErrMissingToken.
func (s *Service) authenticate(token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, domain.ErrMissingToken
	}
	return s.verifier.Verify(token)
}
