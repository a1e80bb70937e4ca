package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/booking-ledger/internal/model"
)

// Authorizer is the identity oracle.  Authorize returns nil when the
// current call is attested as coming from principal, and an error wrapping
// model.ErrUnauthorized otherwise.  Signature checks happen before the
// oracle is consulted; the services only ever ask this question.
type Authorizer interface {
	Authorize(ctx context.Context, principal string) error
}

type principalKey struct{}

// WithPrincipal records the authenticated principal of the current call.
func WithPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// PrincipalFrom returns the principal stored by WithPrincipal.
func PrincipalFrom(ctx context.Context) (string, bool) {
	p, ok := ctx.Value(principalKey{}).(string)
	return p, ok && p != ""
}

// ContextAuthorizer attests a principal when it equals the one the
// authentication middleware stored in the context.
type ContextAuthorizer struct{}

func (ContextAuthorizer) Authorize(ctx context.Context, principal string) error {
	current, ok := PrincipalFrom(ctx)
	if !ok {
		return fmt.Errorf("no authenticated principal: %w", model.ErrUnauthorized)
	}
	if current != principal {
		return fmt.Errorf("caller %q cannot act as %q: %w", current, principal, model.ErrUnauthorized)
	}
	return nil
}

// TrustedAuthorizer attests every non-empty principal.  It is used by the
// operator CLI, which runs with direct database access.
type TrustedAuthorizer struct{}

func (TrustedAuthorizer) Authorize(_ context.Context, principal string) error {
	if principal == "" {
		return fmt.Errorf("empty principal: %w", model.ErrUnauthorized)
	}
	return nil
}
