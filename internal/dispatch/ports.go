package dispatch

import (
	"context"

	"github.com/orbitwallet/linkdispatch/internal/core/domain"
	"github.com/orbitwallet/linkdispatch/internal/engine"
)

// ConfirmRequest is a yes/no question for the user.
type ConfirmRequest struct {
	Title        string
	Message      string
	ConfirmLabel string
	CancelLabel  string
}

// WarningRequest is a skippable warning the user may acknowledge or
// decline.
type WarningRequest struct {
	Title string
	Body  string
}

// ChoiceOption is one button of a multiple-choice prompt.
type ChoiceOption struct {
	Key   string
	Label string
}

// ChoiceRequest is a multiple-choice question; the answer is the chosen
// option key, or empty when dismissed.
type ChoiceRequest struct {
	Title   string
	Message string
	Options []ChoiceOption
}

// WalletPickRequest scopes a wallet picker to the wallets that can
// serve one requested asset.
type WalletPickRequest struct {
	Title                string
	ExcludeWalletIDs     []string
	AllowedCurrencyCodes []string
}

// WalletPick is the user's selection; a nil pick means the picker was
// dismissed.
type WalletPick struct {
	WalletID     string
	CurrencyCode string
}

// Prompter asks the human a question and awaits the answer. Every
// irreversible or privacy-sensitive action goes through it. Waits are
// unbounded; the human can take arbitrarily long.
type Prompter interface {
	Confirm(ctx context.Context, req ConfirmRequest) (bool, error)
	ConfirmContinue(ctx context.Context, req WarningRequest) (bool, error)
	Choose(ctx context.Context, req ChoiceRequest) (string, error)
	PickWallet(ctx context.Context, req WalletPickRequest) (*WalletPick, error)
}

// SendParams pre-populates the send flow.
type SendParams struct {
	SpendInfo    engine.SpendInfo
	WalletID     string
	CurrencyCode string
}

// AddTokenParams pre-populates the add/edit-token flow.
type AddTokenParams struct {
	ContractAddress string
	CurrencyCode    string
	CurrencyName    string
	DecimalPlaces   string
	WalletID        string
}

// Navigator performs terminal navigation into the surrounding
// application.
type Navigator interface {
	ShowSend(params SendParams)
	ShowAddToken(params AddTokenParams)
	ShowBuy(walletID, currencyCode string)
	ShowExchange(walletID, currencyCode string)
}

// Alerter is the single "show the user an error" side channel. ShowAlert
// blocks until the user dismisses the modal.
type Alerter interface {
	ShowError(err error)
	ShowAlert(ctx context.Context, title, body string)
}

// PayloadSender delivers an RPA address payload to the requester.
type PayloadSender interface {
	Send(ctx context.Context, postURL string, payload map[string]string) error
}

// PaymentProtocolResolver fetches spend parameters from a
// payment-protocol URL (BIP70-style secondary fetch). A nil SpendInfo
// with nil error means no usable spend info; the dispatcher skips
// navigation.
type PaymentProtocolResolver interface {
	Resolve(ctx context.Context, parsed *engine.ParsedURI, wallet engine.Wallet) (*engine.SpendInfo, error)
}

// SettingsSource supplies the selected-wallet context dispatches
// resolve native URIs against.
type SettingsSource interface {
	Selection(ctx context.Context) (*domain.Selection, error)
}

// PromptTracker remembers which wallets were already shown a once-only
// prompt.
type PromptTracker interface {
	// MarkShown returns true the first time a wallet is marked for a
	// prompt kind.
	MarkShown(ctx context.Context, kind, walletID string) (bool, error)
}

// AuditSink records completed dispatches.
type AuditSink interface {
	Save(ctx context.Context, record *domain.DispatchRecord) error
}
