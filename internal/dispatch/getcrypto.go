package dispatch

import (
	"context"
	"fmt"
	"slices"

	"github.com/orbitwallet/linkdispatch/internal/wallets"
)

const getCryptoPromptKind = "get_crypto"

// CheckAndShowGetCryptoModal offers buy/exchange navigation when the
// selected wallet holds a zero balance for the selected currency. Each
// wallet sees the prompt at most once per session; failures here are
// logged quietly, never surfaced to the user.
func (d *Dispatcher) CheckAndShowGetCryptoModal(ctx context.Context, walletID, currencyCode string) {
	if walletID == "" || currencyCode == "" {
		sel, err := d.settings.Selection(ctx)
		if err != nil {
			d.log.Debug("get-crypto selection load failed", "error", err)
			return
		}
		if walletID == "" {
			walletID = sel.WalletID
		}
		if currencyCode == "" {
			currencyCode = sel.CurrencyCode
		}
	}
	wallet := d.account.CurrencyWallets()[walletID]
	if wallet == nil {
		return
	}
	if !wallets.ZeroBalance(wallets.AvailableBalance(wallet, currencyCode)) {
		return
	}
	if d.prompts != nil {
		first, err := d.prompts.MarkShown(ctx, getCryptoPromptKind, walletID)
		if err != nil {
			d.log.Debug("get-crypto prompt tracking failed", "error", err)
			return
		}
		if !first {
			return
		}
	}

	displayBuy := slices.Contains(d.cfg.BuyCryptoChains, wallet.CurrencyInfo().PluginID)
	options := []ChoiceOption{}
	if displayBuy {
		options = append(options, ChoiceOption{Key: "buy", Label: fmt.Sprintf("Buy %s", currencyCode)})
	}
	options = append(options,
		ChoiceOption{Key: "exchange", Label: "Exchange"},
		ChoiceOption{Key: "decline", Label: "Not now"},
	)

	answer, err := d.prompter.Choose(ctx, ChoiceRequest{
		Title: "Get crypto",
		Message: fmt.Sprintf("This wallet has no %s yet. Top it up to start sending and receiving.",
			currencyCode),
		Options: options,
	})
	if err != nil {
		d.log.Debug("get-crypto prompt failed", "error", err)
		return
	}
	switch answer {
	case "buy":
		d.nav.ShowBuy(walletID, currencyCode)
	case "exchange":
		d.nav.ShowExchange(walletID, currencyCode)
	}
}
