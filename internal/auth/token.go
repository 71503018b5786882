package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/actuallystonmai/product-recommendation-service/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// TokenVerifier validates HS256 bearer tokens issued by the credential service.
type TokenVerifier struct {
	secret []byte
	maxAge time.Duration
	nowFn  func() time.Time
}

// NewTokenVerifier creates a verifier for the shared secret. maxAge > 0 rejects
// tokens whose iat is older than maxAge; zero leaves tokens without exp non-expiring.
func NewTokenVerifier(secret string, maxAge time.Duration) *TokenVerifier {
	return &TokenVerifier{
		secret: []byte(secret),
		maxAge: maxAge,
		nowFn:  time.Now,
	}
}

// Verify decodes token and returns the identity carried by its claims.
func (v *TokenVerifier) Verify(token string) (domain.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Identity{}, domain.ErrMissingToken
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.nowFn),
	)
	if err != nil {
		return domain.Identity{}, classify(err)
	}

	subject, _ := claims["sub"].(string)
	if strings.TrimSpace(subject) == "" {
		return domain.Identity{}, fmt.Errorf("%w: sub claim is required", domain.ErrMalformedToken)
	}

	if v.maxAge > 0 {
		iat, err := claims.GetIssuedAt()
		if err != nil || iat == nil {
			return domain.Identity{}, fmt.Errorf("%w: iat claim is required", domain.ErrMalformedToken)
		}
		if v.nowFn().Sub(iat.Time) > v.maxAge {
			return domain.Identity{}, domain.ErrTokenExpired
		}
	}

	return identityFromClaims(subject, claims), nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenInvalidClaims):
		return fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}
}

func identityFromClaims(subject string, claims jwt.MapClaims) domain.Identity {
	id := domain.Identity{
		Subject: subject,
		Claims:  make(map[string]string, len(claims)),
	}
	if name, ok := claims["name"].(string); ok {
		id.DisplayName = name
	}
	for k, raw := range claims {
		switch val := raw.(type) {
		case string:
			id.Claims[k] = val
		case float64:
			id.Claims[k] = fmt.Sprintf("%.0f", val)
		case bool:
			id.Claims[k] = fmt.Sprintf("%t", val)
		}
	}
	return id
}
