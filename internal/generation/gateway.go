package generation

import (
	"context"
	"errors"
	"fmt"

	"github.com/actuallystonmai/product-recommendation-service/internal/domain"
	"github.com/actuallystonmai/product-recommendation-service/internal/prompt"
)

// Request is one generation call. Products, Query and Message are only read by the
// mock path, which has no model to interpret Prompt.
type Request struct {
	Kind     prompt.Kind
	Prompt   string
	Products []domain.Product
	Query    string
	Message  string
}

// Gateway produces raw text for a prompt. Exactly one implementation is selected at
// startup and shared by all requests.
type Gateway interface {
	Generate(ctx context.Context, req Request) (domain.RawGeneration, error)
	// Live reports whether a real backend is configured.
	Live() bool
	Provider() string
}

// UnavailableError reports a failed call to a configured live backend.
type UnavailableError struct {
	Provider string
	Cause    error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("GenerationError.Unavailable: %s: %v", e.Provider, e.Cause)
}

func (e *UnavailableError) Unwrap() []error {
	return []error{domain.ErrGenerationUnavailable, e.Cause}
}

func IsUnavailable(err error) bool {
	var target *UnavailableError
	return errors.As(err, &target)
}
