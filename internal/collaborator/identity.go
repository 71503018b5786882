package collaborator

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/actuallystonmai/product-recommendation-service/internal/domain"
	"go.uber.org/zap"
)

type IdentityClient struct {
	baseURL string
	timeout time.Duration
	http    httpDoer
	logger  *zap.Logger
}

func NewIdentityClient(baseURL string, timeout time.Duration, client *http.Client, logger *zap.Logger) *IdentityClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &IdentityClient{
		baseURL: baseURL,
		timeout: timeout,
		http:    client,
		logger:  logger.Named("identity"),
	}
}

// userRecord is what the credential service returns from /me. An unknown user
// comes back as an empty object.
type userRecord struct {
	ID    *int64 `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Me resolves the caller behind token. Failures and unknown users are reported as
// domain.ErrCollaboratorUnavailable; cancellation of ctx is returned as is.
func (c *IdentityClient) Me(ctx context.Context, token string) (domain.Identity, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	var rec userRecord
	if err := getJSON(ctx, c.http, c.timeout, joinURL(c.baseURL, "/me"), header, &rec); err != nil {
		if ctx.Err() != nil {
			return domain.Identity{}, ctx.Err()
		}
		c.logger.Warn("identity fetch failed", zap.Error(err))
		return domain.Identity{}, fmt.Errorf("%w: identity: %v", domain.ErrCollaboratorUnavailable, err)
	}
	if rec.Email == "" {
		c.logger.Warn("identity service returned no user")
		return domain.Identity{}, fmt.Errorf("%w: identity: unknown user", domain.ErrCollaboratorUnavailable)
	}

	id := domain.Identity{
		Subject:     rec.Email,
		DisplayName: rec.Name,
		Claims:      map[string]string{"email": rec.Email},
	}
	if rec.ID != nil {
		id.Claims["id"] = fmt.Sprintf("%d", *rec.ID)
	}
	return id, nil
}
