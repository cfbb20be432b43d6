// Package registry resolves human-readable payment names (FIO-style
// address registry) to public addresses before classification.
package registry

import (
	"context"
	"errors"
)

// ErrInvalidName is returned when the input is not a registered payment
// name at all. The dispatcher treats this one failure as "not a name,
// continue with the raw input"; every other resolver failure aborts the
// dispatch.
var ErrInvalidName = errors.New("registry: not a valid payment name")

// Resolver looks up the public address registered for a payment name,
// scoped to the wallet's chain code and the selected currency code.
type Resolver interface {
	ResolvePublicAddress(ctx context.Context, name, chainCode, currencyCode string) (string, error)
}
