// Package dispatch implements the scanned-URI / deep-link dispatch
// pipeline: classify an arbitrary string, validate it against wallet
// and account state, and route it to exactly one terminal action.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/orbitwallet/linkdispatch/internal/core/domain"
	"github.com/orbitwallet/linkdispatch/internal/deeplink"
	"github.com/orbitwallet/linkdispatch/internal/delivery"
	"github.com/orbitwallet/linkdispatch/internal/engine"
	"github.com/orbitwallet/linkdispatch/internal/events"
	"github.com/orbitwallet/linkdispatch/internal/launcher"
	"github.com/orbitwallet/linkdispatch/internal/metrics"
	"github.com/orbitwallet/linkdispatch/internal/registry"
)

// Config tunes dispatcher behavior. Zero values take defaults.
type Config struct {
	// AlertDelay is the pause before modal error/mismatch alerts.
	AlertDelay time.Duration
	// ConfirmDelay is the pause before the return-address confirm prompt.
	ConfirmDelay time.Duration
	// MaxRedirectDepth bounds RPA redirect chains.
	MaxRedirectDepth int
	// ErrorAlertTitle/Body are the default invalid-URI alert texts.
	ErrorAlertTitle string
	ErrorAlertBody  string
	// AppName appears in sweep and get-crypto prompts.
	AppName string
	// BuyCryptoChains lists plugin IDs whose get-crypto prompt offers a
	// buy option in addition to exchange.
	BuyCryptoChains []string
}

func (c Config) withDefaults() Config {
	if c.AlertDelay == 0 {
		c.AlertDelay = 500 * time.Millisecond
	}
	if c.ConfirmDelay == 0 {
		c.ConfirmDelay = time.Second
	}
	if c.MaxRedirectDepth == 0 {
		c.MaxRedirectDepth = 3
	}
	if c.ErrorAlertTitle == "" {
		c.ErrorAlertTitle = "Invalid address"
	}
	if c.ErrorAlertBody == "" {
		c.ErrorAlertBody = "The scanned data is not a valid address or payment request."
	}
	if c.AppName == "" {
		c.AppName = "Orbit"
	}
	return c
}

// Options wires the dispatcher's collaborators. Account, Settings,
// Prompter, Navigator and Alerter are required.
type Options struct {
	Account   engine.Account
	Settings  SettingsSource
	Prompter  Prompter
	Navigator Navigator
	Alerter   Alerter

	Launcher launcher.Launcher
	Sender   PayloadSender
	Payments PaymentProtocolResolver
	Registry registry.Resolver
	Prompts  PromptTracker
	Audit    AuditSink
	Emitter  events.Emitter
	Logger   *slog.Logger
	Config   Config
}

// Dispatcher is the single entry point of the pipeline. One dispatch is
// in flight at a time; concurrent requests are ignored while the
// session guard is held.
type Dispatcher struct {
	cfg      Config
	account  engine.Account
	settings SettingsSource
	prompter Prompter
	nav      Navigator
	alerter  Alerter
	launcher launcher.Launcher
	sender   PayloadSender
	payments PaymentProtocolResolver
	registry registry.Resolver
	prompts  PromptTracker
	audit    AuditSink
	emitter  events.Emitter
	session  *Session
	log      *slog.Logger
}

func New(opts Options) (*Dispatcher, error) {
	switch {
	case opts.Account == nil:
		return nil, errors.New("dispatch: account is required")
	case opts.Settings == nil:
		return nil, errors.New("dispatch: settings source is required")
	case opts.Prompter == nil:
		return nil, errors.New("dispatch: prompter is required")
	case opts.Navigator == nil:
		return nil, errors.New("dispatch: navigator is required")
	case opts.Alerter == nil:
		return nil, errors.New("dispatch: alerter is required")
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	emitter := opts.Emitter
	if emitter == nil {
		emitter = events.NewLogEmitter(log)
	}
	launch := opts.Launcher
	if launch == nil {
		launch = launcher.NewLogLauncher(log)
	}
	sender := opts.Sender
	if sender == nil {
		sender = delivery.NewHTTPSender(0)
	}

	return &Dispatcher{
		cfg:      opts.Config.withDefaults(),
		account:  opts.Account,
		settings: opts.Settings,
		prompter: opts.Prompter,
		nav:      opts.Navigator,
		alerter:  opts.Alerter,
		launcher: launch,
		sender:   sender,
		payments: opts.Payments,
		registry: opts.Registry,
		prompts:  opts.Prompts,
		audit:    opts.Audit,
		emitter:  emitter,
		session:  NewSession(emitter, log),
		log:      log,
	}, nil
}

// Session exposes the scan guard, e.g. for the QR entry point and
// status reporting.
func (d *Dispatcher) Session() *Session { return d.session }

// HandleScan is the QR/camera entry point: scan events arriving while a
// dispatch is in flight are dropped.
func (d *Dispatcher) HandleScan(ctx context.Context, raw string) {
	if !d.session.ScanEnabled() {
		d.log.Debug("scan ignored, scanning disabled")
		return
	}
	d.Dispatch(ctx, raw)
}

// Dispatch classifies raw input and routes it to exactly one handling
// flow. It runs to completion or failure; all errors surface through
// the alerter, never to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, raw string) {
	d.DispatchWithErrorText(ctx, raw, "", "")
}

// DispatchWithErrorText is Dispatch with caller-supplied texts for the
// invalid-URI alert.
func (d *Dispatcher) DispatchWithErrorText(ctx context.Context, raw, errorTitle, errorBody string) {
	if raw == "" {
		return
	}
	if !d.session.Begin(ctx) {
		d.log.Warn("dispatch rejected", "error", ErrDispatchInFlight)
		return
	}
	defer d.session.Finish()

	start := time.Now()
	rec := &domain.DispatchRecord{
		ID:        uuid.NewString(),
		LinkType:  domain.LinkTypeOther,
		Outcome:   domain.OutcomeIgnored,
		CreatedAt: start,
	}
	defer func() {
		rec.Duration = time.Since(start)
		d.finish(context.WithoutCancel(ctx), rec)
	}()

	sel, err := d.settings.Selection(ctx)
	if err != nil {
		d.fail(rec, fmt.Errorf("load wallet selection: %w", err))
		return
	}
	sc := &scanContext{
		currencyCode: sel.CurrencyCode,
		walletID:     sel.WalletID,
		errorTitle:   errorTitle,
		errorBody:    errorBody,
	}
	if sel.WalletID != "" {
		sc.wallet = d.account.CurrencyWallets()[sel.WalletID]
	}

	raw = d.preResolveName(ctx, rec, raw, sc)
	if rec.Outcome == domain.OutcomeError {
		return
	}

	link, err := deeplink.Classify(raw)
	if err != nil {
		d.fail(rec, err)
		return
	}
	rec.LinkType = link.Type
	d.dispatchLink(ctx, rec, link, sc)
}

// scanContext carries per-dispatch state: the selected wallet, the
// remembered payment-name alias, the redirect depth, and alert text
// overrides.
type scanContext struct {
	wallet       engine.Wallet
	walletID     string
	currencyCode string
	alias        string
	depth        int
	errorTitle   string
	errorBody    string
}

// preResolveName attempts the payment-name registry lookup. On success
// the resolved address substitutes the input and the original is
// remembered as the alias. ErrInvalidName falls through to the original
// input; any other failure aborts the dispatch.
func (d *Dispatcher) preResolveName(ctx context.Context, rec *domain.DispatchRecord, raw string, sc *scanContext) string {
	if d.registry == nil || sc.wallet == nil || !looksLikePaymentName(raw) {
		return raw
	}
	lowered := strings.ToLower(raw)
	addr, err := d.registry.ResolvePublicAddress(ctx, lowered, sc.wallet.CurrencyInfo().CurrencyCode, sc.currencyCode)
	switch {
	case err == nil:
		sc.alias = lowered
		return addr
	case errors.Is(err, registry.ErrInvalidName):
		return raw
	default:
		d.fail(rec, err)
		return raw
	}
}

// dispatchLink routes one classified link. Redirect recursion re-enters
// here with sc.depth advanced.
func (d *Dispatcher) dispatchLink(ctx context.Context, rec *domain.DispatchRecord, link *domain.DeepLink, sc *scanContext) {
	switch link.Type {
	case domain.LinkTypeReturnAddress:
		d.returnAddress(ctx, rec, link.ReturnAddress, sc)
	case domain.LinkTypeRequestAddress:
		d.requestAddress(ctx, rec, link.RequestAddress, sc)
	case domain.LinkTypeOther:
		d.nativeURI(ctx, rec, link.Raw, sc)
	default:
		if err := d.launcher.LaunchDeepLink(ctx, link); err != nil {
			d.fail(rec, err)
			return
		}
		rec.Outcome = domain.OutcomeLaunched
	}
}

// nativeURI is the plain currency/payment URI path: engine parse,
// address warnings, then the priority-ordered terminal action.
func (d *Dispatcher) nativeURI(ctx context.Context, rec *domain.DispatchRecord, raw string, sc *scanContext) {
	if sc.wallet == nil {
		d.fail(rec, errors.New("no wallet selected"))
		return
	}

	parsed, err := sc.wallet.ParseURI(ctx, raw, sc.currencyCode)
	if err != nil {
		rec.Outcome = domain.OutcomeError
		rec.Error = err.Error()
		d.session.DisableScan(ctx)
		d.wait(ctx, d.cfg.AlertDelay)
		title, body := sc.errorTitle, sc.errorBody
		if title == "" {
			title = d.cfg.ErrorAlertTitle
		}
		if body == "" {
			body = d.cfg.ErrorAlertBody
		}
		d.alerter.ShowAlert(ctx, title, body)
		d.session.EnableScan(ctx)
		return
	}
	d.emit(ctx, domain.EventParseURISucceeded, map[string]any{"parsedUri": parsed})

	approved, err := d.AddressWarnings(ctx, parsed, sc.currencyCode)
	if err != nil {
		d.fail(rec, err)
		return
	}
	if !approved {
		rec.Outcome = domain.OutcomeDeclined
		d.session.EnableScan(ctx)
		return
	}

	switch act := selectAction(parsed).(type) {
	case addTokenAction:
		d.nav.ShowAddToken(AddTokenParams{
			ContractAddress: act.Token.ContractAddress,
			CurrencyCode:    strings.ToUpper(act.Token.CurrencyCode),
			CurrencyName:    act.Token.CurrencyName,
			DecimalPlaces:   tokenDecimalPlaces(act.Token),
			WalletID:        sc.walletID,
		})
		rec.Outcome = domain.OutcomeAddToken

	case sendLegacyAction:
		d.nav.ShowSend(SendParams{
			SpendInfo:    spendInfoFromParsed(parsed),
			WalletID:     sc.walletID,
			CurrencyCode: sc.currencyCode,
		})
		rec.Outcome = domain.OutcomeSend

	case sweepAction:
		d.sweep(ctx, rec, sc, act.PrivateKeys)

	case paymentProtocolAction:
		if d.payments == nil {
			d.fail(rec, errors.New("payment protocol requests are not supported"))
			return
		}
		info, err := d.payments.Resolve(ctx, parsed, sc.wallet)
		if err != nil {
			d.fail(rec, fmt.Errorf("resolve payment protocol request: %w", err))
			return
		}
		if info == nil {
			rec.Outcome = domain.OutcomeIgnored
			return
		}
		d.nav.ShowSend(SendParams{
			SpendInfo:    *info,
			WalletID:     sc.walletID,
			CurrencyCode: sc.currencyCode,
		})
		rec.Outcome = domain.OutcomeSend

	case sendPublicAction:
		target := engine.SpendTarget{
			PublicAddress: act.PublicAddress,
			NativeAmount:  act.NativeAmount,
		}
		if sc.alias != "" {
			target.OtherParams = map[string]any{
				"aliasName":        sc.alias,
				"isSendUsingAlias": true,
			}
		}
		d.nav.ShowSend(SendParams{
			SpendInfo: engine.SpendInfo{
				SpendTargets:     []engine.SpendTarget{target},
				Metadata:         parsed.Metadata,
				UniqueIdentifier: parsed.UniqueIdentifier,
				NativeAmount:     act.NativeAmount,
			},
			WalletID:     sc.walletID,
			CurrencyCode: sc.currencyCode,
		})
		rec.Outcome = domain.OutcomeSend
	}
}

// sweep confirms and performs a private-key sweep: build the unsigned
// transaction, sign, broadcast, each step awaited in sequence.
func (d *Dispatcher) sweep(ctx context.Context, rec *domain.DispatchRecord, sc *scanContext, privateKeys []string) {
	ok, err := d.prompter.Confirm(ctx, ConfirmRequest{
		Title:        "Sweep from private key",
		Message:      fmt.Sprintf("Import all funds held by this private key into %s?", d.cfg.AppName),
		ConfirmLabel: "Import",
		CancelLabel:  "Cancel",
	})
	d.countPrompt("sweep_confirm", ok, err)
	if err != nil {
		d.fail(rec, err)
		return
	}
	if !ok {
		rec.Outcome = domain.OutcomeDeclined
		return
	}

	unsigned, err := sc.wallet.SweepPrivateKeys(ctx, engine.SweepRequest{PrivateKeys: privateKeys})
	if err != nil {
		d.fail(rec, fmt.Errorf("sweep private keys: %w", err))
		return
	}
	signed, err := sc.wallet.SignTx(ctx, unsigned)
	if err != nil {
		d.fail(rec, fmt.Errorf("sign sweep transaction: %w", err))
		return
	}
	if err := sc.wallet.BroadcastTx(ctx, signed); err != nil {
		d.fail(rec, fmt.Errorf("broadcast sweep transaction: %w", err))
		return
	}
	rec.Outcome = domain.OutcomeSweep
}

func spendInfoFromParsed(p *engine.ParsedURI) engine.SpendInfo {
	address := p.PublicAddress
	if address == "" {
		address = p.LegacyAddress
	}
	return engine.SpendInfo{
		SpendTargets: []engine.SpendTarget{{
			PublicAddress: address,
			NativeAmount:  p.NativeAmount,
		}},
		Metadata:         p.Metadata,
		UniqueIdentifier: p.UniqueIdentifier,
		NativeAmount:     p.NativeAmount,
	}
}

// fail records an error outcome and surfaces it to the user.
func (d *Dispatcher) fail(rec *domain.DispatchRecord, err error) {
	rec.Outcome = domain.OutcomeError
	rec.Error = err.Error()
	d.alerter.ShowError(err)
}

// finish restores scanning, records metrics, and writes the audit
// entry. Called once per dispatch, after the terminal state.
func (d *Dispatcher) finish(ctx context.Context, rec *domain.DispatchRecord) {
	d.session.EnableScan(ctx)
	metrics.DispatchesTotal.WithLabelValues(string(rec.LinkType), string(rec.Outcome)).Inc()
	metrics.DispatchDuration.WithLabelValues(string(rec.LinkType)).Observe(rec.Duration.Seconds())
	if d.audit == nil {
		return
	}
	saveCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := d.audit.Save(saveCtx, rec); err != nil {
		d.log.Warn("audit save failed", "dispatch", rec.ID, "error", err)
	}
}

func (d *Dispatcher) emit(ctx context.Context, eventType domain.EventType, payload map[string]any) {
	if err := d.emitter.Emit(ctx, events.New(eventType, payload)); err != nil {
		d.log.Warn("lifecycle event emit failed", "type", eventType, "error", err)
	}
}

func (d *Dispatcher) countPrompt(kind string, approved bool, err error) {
	answer := "declined"
	switch {
	case err != nil:
		answer = "error"
	case approved:
		answer = "approved"
	}
	metrics.PromptsTotal.WithLabelValues(kind, answer).Inc()
}

// wait sleeps for the configured delay, honoring cancellation.
func (d *Dispatcher) wait(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}

// looksLikePaymentName reports whether input has the name@domain shape
// registries accept. Anything with a scheme or spaces is a URI or
// garbage, not a name.
func looksLikePaymentName(raw string) bool {
	if strings.ContainsAny(raw, " \t\n") || strings.Contains(raw, "://") {
		return false
	}
	at := strings.Count(raw, "@")
	if at != 1 {
		return false
	}
	name, dom, _ := strings.Cut(raw, "@")
	return name != "" && dom != ""
}
