// Package enginetest provides an in-memory wallet engine used by tests
// and the demo scan command.
package enginetest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/orbitwallet/linkdispatch/internal/engine"
)

// Wallet is a scriptable in-memory engine.Wallet.
type Wallet struct {
	WalletID   string
	WalletName string
	Info       engine.CurrencyInfo
	Balances   map[string]string
	Tokens     []string

	// ParseFunc overrides ParseURI when set; otherwise ParseResult /
	// ParseErr are returned as-is.
	ParseFunc   func(uri, currencyCode string) (*engine.ParsedURI, error)
	ParseResult *engine.ParsedURI
	ParseErr    error

	ReceiveFunc func(currencyCode string) (*engine.ReceiveAddress, error)
	Address     string

	SweepErr     error
	SignErr      error
	BroadcastErr error

	mu             sync.Mutex
	ParseCalls     []string
	ReceiveCalls   []string
	SweepRequests  []engine.SweepRequest
	SignedTxs      []engine.UnsignedTx
	BroadcastedTxs []engine.SignedTx
}

var _ engine.Wallet = (*Wallet)(nil)

func (w *Wallet) ID() string   { return w.WalletID }
func (w *Wallet) Name() string { return w.WalletName }

func (w *Wallet) CurrencyInfo() engine.CurrencyInfo { return w.Info }

func (w *Wallet) Balance(currencyCode string) string {
	return w.Balances[strings.ToUpper(currencyCode)]
}

func (w *Wallet) EnabledTokens(ctx context.Context) ([]string, error) {
	return w.Tokens, nil
}

func (w *Wallet) ParseURI(ctx context.Context, uri, currencyCode string) (*engine.ParsedURI, error) {
	w.mu.Lock()
	w.ParseCalls = append(w.ParseCalls, uri)
	w.mu.Unlock()
	if w.ParseFunc != nil {
		return w.ParseFunc(uri, currencyCode)
	}
	if w.ParseErr != nil {
		return nil, w.ParseErr
	}
	if w.ParseResult != nil {
		return w.ParseResult, nil
	}
	return &engine.ParsedURI{PublicAddress: uri}, nil
}

func (w *Wallet) ReceiveAddress(ctx context.Context, currencyCode string) (*engine.ReceiveAddress, error) {
	w.mu.Lock()
	w.ReceiveCalls = append(w.ReceiveCalls, currencyCode)
	w.mu.Unlock()
	if w.ReceiveFunc != nil {
		return w.ReceiveFunc(currencyCode)
	}
	if w.Address == "" {
		return nil, fmt.Errorf("no address configured for wallet %s", w.WalletID)
	}
	return &engine.ReceiveAddress{PublicAddress: w.Address}, nil
}

func (w *Wallet) SweepPrivateKeys(ctx context.Context, req engine.SweepRequest) (engine.UnsignedTx, error) {
	w.mu.Lock()
	w.SweepRequests = append(w.SweepRequests, req)
	w.mu.Unlock()
	if w.SweepErr != nil {
		return nil, w.SweepErr
	}
	return "unsigned:" + strings.Join(req.PrivateKeys, ","), nil
}

func (w *Wallet) SignTx(ctx context.Context, tx engine.UnsignedTx) (engine.SignedTx, error) {
	w.mu.Lock()
	w.SignedTxs = append(w.SignedTxs, tx)
	w.mu.Unlock()
	if w.SignErr != nil {
		return nil, w.SignErr
	}
	return fmt.Sprintf("signed:%v", tx), nil
}

func (w *Wallet) BroadcastTx(ctx context.Context, tx engine.SignedTx) error {
	w.mu.Lock()
	w.BroadcastedTxs = append(w.BroadcastedTxs, tx)
	w.mu.Unlock()
	return w.BroadcastErr
}

// Account is a fixed wallet set implementing engine.Account.
type Account struct {
	Wallets map[string]engine.Wallet
}

var _ engine.Account = (*Account)(nil)

func (a *Account) CurrencyWallets() map[string]engine.Wallet { return a.Wallets }

// NewAccount builds an account from a list of wallets keyed by ID.
func NewAccount(wallets ...*Wallet) *Account {
	m := make(map[string]engine.Wallet, len(wallets))
	for _, w := range wallets {
		m[w.WalletID] = w
	}
	return &Account{Wallets: m}
}
