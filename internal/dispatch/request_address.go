package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/orbitwallet/linkdispatch/internal/core/domain"
	"github.com/orbitwallet/linkdispatch/internal/deeplink"
	"github.com/orbitwallet/linkdispatch/internal/engine"
	"github.com/orbitwallet/linkdispatch/internal/wallets"
)

// requestAddress orchestrates a request-for-payment-address link:
// validate, confirm with the user, check satisfiability, collect wallet
// selections per asset, then deliver the address payload or follow the
// redirect.
func (d *Dispatcher) requestAddress(ctx context.Context, rec *domain.DispatchRecord, link *domain.RequestAddressLink, sc *scanContext) {
	d.session.DisableScan(ctx)

	// Validation is collect-and-surface: every failed check is reported
	// individually before the flow halts. No picker is shown after a
	// validation failure.
	var invalid bool
	if len(link.Assets) == 0 {
		invalid = true
		d.alerter.ShowError(ErrNoAssets)
	}
	if link.Post == "" && link.Redir == "" {
		invalid = true
		d.alerter.ShowError(ErrMissingTarget)
	}
	if link.Post != "" && link.Redir != "" {
		invalid = true
		d.alerter.ShowError(ErrAmbiguousTarget)
	}
	if invalid {
		rec.Outcome = domain.OutcomeError
		rec.Error = "request for payment address failed validation"
		return
	}

	nativeCodes := make([]string, len(link.Assets))
	for i, asset := range link.Assets {
		nativeCodes[i] = asset.NativeCode
	}

	payerSuffix := ""
	if link.Payer != "" {
		payerSuffix = " from " + link.Payer
	}
	ok, err := d.prompter.Confirm(ctx, ConfirmRequest{
		Title: "Confirm request?",
		Message: fmt.Sprintf("Got a request for payment address (%s)%s. Choose wallets for the request?",
			strings.Join(nativeCodes, ", "), payerSuffix),
		ConfirmLabel: "Yes",
		CancelLabel:  "No",
	})
	d.countPrompt("request_address_confirm", ok, err)
	if err != nil {
		d.fail(rec, err)
		return
	}
	if !ok {
		rec.Outcome = domain.OutcomeDeclined
		return
	}

	// Satisfiability: the account must hold a wallet for at least one
	// requested native code, and every requested token must be enabled
	// somewhere.
	currencyWallets := d.account.CurrencyWallets()
	if !wallets.HasNativeCurrencyWallet(currencyWallets, nativeCodes) {
		d.fail(rec, ErrNoMatchingWallet)
		return
	}
	tokenEnabled := false
	for _, asset := range link.Assets {
		supporting, err := wallets.AssetSupportingWalletIDs(ctx, currencyWallets, asset.NativeCode, asset.TokenCode)
		if err != nil {
			d.fail(rec, err)
			return
		}
		if len(supporting) > 0 {
			tokenEnabled = true
			break
		}
	}
	if !tokenEnabled {
		d.fail(rec, ErrTokenNotEnabled)
		return
	}

	payload := d.collectSelections(ctx, link.Assets, currencyWallets)
	if len(payload) == 0 {
		d.fail(rec, ErrNoWalletsSelected)
		return
	}

	switch {
	case link.Redir != "":
		d.followRedirect(ctx, rec, link.Redir, sc)
	case link.Post != "":
		if err := d.sender.Send(ctx, link.Post, payload); err != nil {
			d.fail(rec, err)
			return
		}
		rec.Outcome = domain.OutcomeDelivered
	default:
		// Unreachable after validation; surfaced generically.
		d.fail(rec, ErrInvalidRequestAddress)
	}
}

// collectSelections shows one wallet picker per requested asset, scoped
// to the wallets that match the asset's native code and filtered to the
// exact requested currency code. Dismissed pickers and per-wallet
// address failures skip the asset; every successful pick records one
// payload entry keyed "{walletNativeCode}_{requestedCode}".
func (d *Dispatcher) collectSelections(
	ctx context.Context,
	assets []domain.AssetDescriptor,
	currencyWallets map[string]engine.Wallet,
) map[string]string {
	payload := make(map[string]string)
	for _, asset := range assets {
		nativeCode := strings.ToUpper(asset.NativeCode)
		requestedCode := nativeCode
		if asset.TokenCode != "" {
			requestedCode = strings.ToUpper(asset.TokenCode)
		}

		var exclude []string
		for walletID, wallet := range currencyWallets {
			if !strings.EqualFold(wallet.CurrencyInfo().CurrencyCode, nativeCode) {
				exclude = append(exclude, walletID)
			}
		}

		pick, err := d.prompter.PickWallet(ctx, WalletPickRequest{
			Title:                "Select wallet",
			ExcludeWalletIDs:     exclude,
			AllowedCurrencyCodes: []string{requestedCode},
		})
		if err != nil {
			d.alerter.ShowError(fmt.Errorf("wallet selection for %s: %w", requestedCode, err))
			continue
		}
		if pick == nil {
			continue
		}
		wallet, found := currencyWallets[pick.WalletID]
		if !found {
			continue
		}
		addr, err := wallet.ReceiveAddress(ctx, pick.CurrencyCode)
		if err != nil {
			d.alerter.ShowError(fmt.Errorf("receive address for %s: %w", requestedCode, err))
			continue
		}
		key := fmt.Sprintf("%s_%s", wallet.CurrencyInfo().CurrencyCode, pick.CurrencyCode)
		payload[key] = addr.PublicAddress
	}
	return payload
}

// followRedirect re-classifies the redirect target and feeds it back
// through the orchestrator. A target that is itself a request-address
// link carrying its own redirect is rejected outright, and chains
// deeper than the configured limit are cut; redirect chains must
// terminate in a non-RPA-redir link.
func (d *Dispatcher) followRedirect(ctx context.Context, rec *domain.DispatchRecord, redir string, sc *scanContext) {
	redirLink, err := deeplink.Classify(redir)
	if err != nil {
		d.fail(rec, err)
		return
	}
	if redirLink.Type == domain.LinkTypeRequestAddress && redirLink.RequestAddress.Redir != "" {
		d.fail(rec, ErrRedirectLoop)
		return
	}
	if sc.depth+1 > d.cfg.MaxRedirectDepth {
		d.fail(rec, fmt.Errorf("%w: redirect chain exceeds depth %d", ErrRedirectLoop, d.cfg.MaxRedirectDepth))
		return
	}

	next := &scanContext{
		wallet:       sc.wallet,
		walletID:     sc.walletID,
		currencyCode: sc.currencyCode,
		depth:        sc.depth + 1,
	}
	redirRec := &domain.DispatchRecord{
		ID:        rec.ID,
		LinkType:  redirLink.Type,
		Outcome:   domain.OutcomeIgnored,
		CreatedAt: rec.CreatedAt,
	}
	d.dispatchLink(ctx, redirRec, redirLink, next)
	rec.Outcome = domain.OutcomeRedirected
	if redirRec.Outcome == domain.OutcomeError {
		rec.Outcome = domain.OutcomeError
		rec.Error = redirRec.Error
	}
}
