package dispatch

import (
	"context"
	"fmt"
	"net/url"

	"github.com/orbitwallet/linkdispatch/internal/core/domain"
)

// returnAddress handles a link asking this wallet to send back a fresh
// receive address via the success URI. Scanning resumes as soon as the
// confirm prompt resolves, before any address generation.
func (d *Dispatcher) returnAddress(ctx context.Context, rec *domain.DispatchRecord, link *domain.ReturnAddressLink, sc *scanContext) {
	d.session.DisableScan(ctx)

	if sc.wallet == nil {
		d.fail(rec, fmt.Errorf("no wallet selected"))
		return
	}
	pluginID := sc.wallet.CurrencyInfo().PluginID
	if link.CurrencyName != pluginID {
		rec.Outcome = domain.OutcomeError
		rec.Error = fmt.Sprintf("currency mismatch: link wants %s, wallet is %s", link.CurrencyName, pluginID)
		d.wait(ctx, d.cfg.AlertDelay)
		d.alerter.ShowAlert(ctx, "Currency mismatch",
			fmt.Sprintf("This address request is for %s, but the selected wallet is a %s wallet.",
				link.CurrencyName, pluginID))
		d.session.EnableScan(ctx)
		return
	}

	successURL, err := url.Parse(link.SuccessURI)
	if err != nil {
		d.fail(rec, fmt.Errorf("parse success uri: %w", err))
		d.session.EnableScan(ctx)
		return
	}

	d.wait(ctx, d.cfg.ConfirmDelay)
	ok, err := d.prompter.Confirm(ctx, ConfirmRequest{
		Title: "Send address?",
		Message: fmt.Sprintf("%s is requesting a %s receive address. The address will be sent to %s.",
			sourceOr(link.SourceName), link.CurrencyName, successURL.Host),
		ConfirmLabel: "Send address",
		CancelLabel:  "Cancel",
	})
	d.countPrompt("return_address_confirm", ok, err)
	// Scanning resumes regardless of the answer.
	d.session.EnableScan(ctx)
	if err != nil {
		d.fail(rec, err)
		return
	}
	if !ok {
		rec.Outcome = domain.OutcomeDeclined
		return
	}

	addr, err := sc.wallet.ReceiveAddress(ctx, "")
	if err != nil {
		d.log.Warn("receive address generation failed", "error", err)
		rec.Outcome = domain.OutcomeError
		rec.Error = err.Error()
		return
	}
	decoded, err := url.QueryUnescape(link.SuccessURI)
	if err != nil {
		d.log.Warn("success uri decode failed", "error", err)
		rec.Outcome = domain.OutcomeError
		rec.Error = err.Error()
		return
	}
	finalURL := decoded + "?address=" + url.QueryEscape(addr.PublicAddress)
	if err := d.launcher.OpenURL(ctx, finalURL); err != nil {
		d.log.Warn("callback open failed", "error", err)
		rec.Outcome = domain.OutcomeError
		rec.Error = err.Error()
		return
	}
	rec.Outcome = domain.OutcomeLaunched
}

func sourceOr(sourceName string) string {
	if sourceName == "" {
		return "A website"
	}
	return sourceName
}
