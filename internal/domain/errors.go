package domain

import "errors"

var (
	// auth
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrMalformedToken   = errors.New("token is malformed")
	ErrTokenExpired     = errors.New("token has expired")
	ErrMissingToken     = errors.New("bearer token is missing")

	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
	ErrCatalogUnavailable      = errors.New("product catalog unavailable")
	ErrGenerationUnavailable   = errors.New("generation backend unavailable")

	ErrInvalidInput = errors.New("invalid input")
)

// IsAuthError reports whether err should be surfaced to the caller as 401.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrMalformedToken) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrMissingToken)
}
