// Package engine defines the wallet engine contract the dispatcher
// consumes. The engine owns keys, URI decoding, transaction signing and
// broadcast; this package only names the operations, it never
// reimplements them.
package engine

import "context"

// CurrencyInfo describes a wallet's native asset identity.
type CurrencyInfo struct {
	PluginID     string // chain identity, e.g. "bitcoin"
	CurrencyCode string // native code, e.g. "BTC"
	DisplayName  string
}

// Denomination is one display denomination of an asset.
type Denomination struct {
	Name       string
	Multiplier string // base units per denomination unit, decimal string
}

// TokenInfo describes a token carried inside a parsed URI.
type TokenInfo struct {
	ContractAddress string
	CurrencyCode    string
	CurrencyName    string
	Denominations   []Denomination
}

// URIMetadata is free-form metadata attached to a parsed URI.
type URIMetadata struct {
	Name    string
	Notes   string
	Gateway bool // address belongs to a gateway/bridge
}

// ParsedURI is the engine's decoded representation of a currency URI.
// The fields are mutually informative flags; the dispatcher selects a
// terminal action from them in a fixed priority order.
type ParsedURI struct {
	PublicAddress      string
	LegacyAddress      string
	NativeAmount       string
	CurrencyCode       string
	Token              *TokenInfo
	PrivateKeys        []string
	PaymentProtocolURL string
	UniqueIdentifier   string
	Metadata           *URIMetadata
}

// ReceiveAddress is a freshly derived receive address.
type ReceiveAddress struct {
	PublicAddress string
	LegacyAddress string
}

// SpendTarget is one output of a spend.
type SpendTarget struct {
	PublicAddress string
	NativeAmount  string
	OtherParams   map[string]any
}

// SpendInfo is the payload handed to the send flow.
type SpendInfo struct {
	SpendTargets     []SpendTarget
	Metadata         *URIMetadata
	UniqueIdentifier string
	NativeAmount     string
	LockInputs       bool
}

// SweepRequest asks the engine to sweep funds held by raw private keys.
type SweepRequest struct {
	PrivateKeys  []string
	SpendTargets []SpendTarget
}

// UnsignedTx and SignedTx are opaque transaction handles owned by the
// engine.
type (
	UnsignedTx any
	SignedTx   any
)

// Wallet is a single engine wallet instance, referenced by the
// dispatcher through its immutable ID.
type Wallet interface {
	ID() string
	Name() string
	CurrencyInfo() CurrencyInfo

	// Balance returns the wallet's balance for a currency code as a
	// base-unit decimal string; empty string means unknown.
	Balance(currencyCode string) string

	// EnabledTokens lists the token codes enabled on this wallet.
	EnabledTokens(ctx context.Context) ([]string, error)

	// ParseURI decodes a currency/payment URI against this wallet.
	ParseURI(ctx context.Context, uri, currencyCode string) (*ParsedURI, error)

	// ReceiveAddress derives a fresh receive address. currencyCode may be
	// empty for the native asset.
	ReceiveAddress(ctx context.Context, currencyCode string) (*ReceiveAddress, error)

	SweepPrivateKeys(ctx context.Context, req SweepRequest) (UnsignedTx, error)
	SignTx(ctx context.Context, tx UnsignedTx) (SignedTx, error)
	BroadcastTx(ctx context.Context, tx SignedTx) error
}

// Account is the engine account holding the wallet set.
type Account interface {
	// CurrencyWallets maps wallet IDs to wallet instances.
	CurrencyWallets() map[string]Wallet
}
