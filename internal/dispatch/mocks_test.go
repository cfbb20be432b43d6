package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/orbitwallet/linkdispatch/internal/core/domain"
	"github.com/orbitwallet/linkdispatch/internal/engine"
	"github.com/orbitwallet/linkdispatch/internal/engine/enginetest"
	"github.com/orbitwallet/linkdispatch/internal/launcher"
	"github.com/orbitwallet/linkdispatch/internal/registry"
)

// scriptedPrompter answers prompts from pre-loaded scripts and records
// every request it saw.
type scriptedPrompter struct {
	mu              sync.Mutex
	ConfirmAnswers  []bool
	ContinueAnswers []bool
	ChooseAnswers   []string
	Picks           []*WalletPick
	Err             error

	ConfirmReqs  []ConfirmRequest
	ContinueReqs []WarningRequest
	ChooseReqs   []ChoiceRequest
	PickReqs     []WalletPickRequest

	// BlockConfirm, when set, is received from before Confirm answers;
	// used to hold a dispatch in flight.
	BlockConfirm chan struct{}
}

func (p *scriptedPrompter) Confirm(ctx context.Context, req ConfirmRequest) (bool, error) {
	if p.BlockConfirm != nil {
		<-p.BlockConfirm
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ConfirmReqs = append(p.ConfirmReqs, req)
	if p.Err != nil {
		return false, p.Err
	}
	if len(p.ConfirmAnswers) == 0 {
		return false, nil
	}
	answer := p.ConfirmAnswers[0]
	p.ConfirmAnswers = p.ConfirmAnswers[1:]
	return answer, nil
}

func (p *scriptedPrompter) ConfirmContinue(ctx context.Context, req WarningRequest) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ContinueReqs = append(p.ContinueReqs, req)
	if p.Err != nil {
		return false, p.Err
	}
	if len(p.ContinueAnswers) == 0 {
		return true, nil
	}
	answer := p.ContinueAnswers[0]
	p.ContinueAnswers = p.ContinueAnswers[1:]
	return answer, nil
}

func (p *scriptedPrompter) Choose(ctx context.Context, req ChoiceRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ChooseReqs = append(p.ChooseReqs, req)
	if p.Err != nil {
		return "", p.Err
	}
	if len(p.ChooseAnswers) == 0 {
		return "", nil
	}
	answer := p.ChooseAnswers[0]
	p.ChooseAnswers = p.ChooseAnswers[1:]
	return answer, nil
}

func (p *scriptedPrompter) PickWallet(ctx context.Context, req WalletPickRequest) (*WalletPick, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.PickReqs = append(p.PickReqs, req)
	if p.Err != nil {
		return nil, p.Err
	}
	if len(p.Picks) == 0 {
		return nil, nil
	}
	pick := p.Picks[0]
	p.Picks = p.Picks[1:]
	return pick, nil
}

// fakeNavigator records terminal navigations.
type fakeNavigator struct {
	SendCalls     []SendParams
	AddTokenCalls []AddTokenParams
	BuyCalls      []string
	ExchangeCalls []string
}

func (n *fakeNavigator) ShowSend(params SendParams)         { n.SendCalls = append(n.SendCalls, params) }
func (n *fakeNavigator) ShowAddToken(params AddTokenParams) { n.AddTokenCalls = append(n.AddTokenCalls, params) }
func (n *fakeNavigator) ShowBuy(walletID, currencyCode string) {
	n.BuyCalls = append(n.BuyCalls, walletID+":"+currencyCode)
}
func (n *fakeNavigator) ShowExchange(walletID, currencyCode string) {
	n.ExchangeCalls = append(n.ExchangeCalls, walletID+":"+currencyCode)
}

// fakeAlerter records the error side channel.
type fakeAlerter struct {
	Errors []error
	Alerts []string // "title|body"
}

func (a *fakeAlerter) ShowError(err error) { a.Errors = append(a.Errors, err) }
func (a *fakeAlerter) ShowAlert(ctx context.Context, title, body string) {
	a.Alerts = append(a.Alerts, title+"|"+body)
}

// fakeLauncher records handoffs.
type fakeLauncher struct {
	Launched []*domain.DeepLink
	Opened   []string
	Err      error
}

var _ launcher.Launcher = (*fakeLauncher)(nil)

func (l *fakeLauncher) LaunchDeepLink(ctx context.Context, link *domain.DeepLink) error {
	l.Launched = append(l.Launched, link)
	return l.Err
}

func (l *fakeLauncher) OpenURL(ctx context.Context, rawURL string) error {
	l.Opened = append(l.Opened, rawURL)
	return l.Err
}

// fakeSender records payload deliveries.
type fakeSender struct {
	URLs     []string
	Payloads []map[string]string
	Err      error
}

func (s *fakeSender) Send(ctx context.Context, postURL string, payload map[string]string) error {
	s.URLs = append(s.URLs, postURL)
	s.Payloads = append(s.Payloads, payload)
	return s.Err
}

// fakePayments is a scripted payment-protocol resolver.
type fakePayments struct {
	Info  *engine.SpendInfo
	Err   error
	Calls int
}

func (p *fakePayments) Resolve(ctx context.Context, parsed *engine.ParsedURI, wallet engine.Wallet) (*engine.SpendInfo, error) {
	p.Calls++
	return p.Info, p.Err
}

// fakeResolver is a scripted name-registry resolver.
type fakeResolver struct {
	Addresses map[string]string // name -> address
	Err       error
}

func (r *fakeResolver) ResolvePublicAddress(ctx context.Context, name, chainCode, currencyCode string) (string, error) {
	if r.Err != nil {
		return "", r.Err
	}
	if addr, ok := r.Addresses[name]; ok {
		return addr, nil
	}
	return "", registry.ErrInvalidName
}

// staticSettings serves a fixed selection.
type staticSettings struct {
	sel domain.Selection
}

func (s staticSettings) Selection(ctx context.Context) (*domain.Selection, error) {
	sel := s.sel
	return &sel, nil
}

// memTracker is an in-memory once-only prompt tracker.
type memTracker struct {
	seen map[string]bool
}

func (t *memTracker) MarkShown(ctx context.Context, kind, walletID string) (bool, error) {
	if t.seen == nil {
		t.seen = make(map[string]bool)
	}
	key := kind + ":" + walletID
	if t.seen[key] {
		return false, nil
	}
	t.seen[key] = true
	return true, nil
}

// testHarness bundles a dispatcher with its fakes.
type testHarness struct {
	dispatcher *Dispatcher
	prompter   *scriptedPrompter
	nav        *fakeNavigator
	alerter    *fakeAlerter
	launcher   *fakeLauncher
	sender     *fakeSender
	wallet     *enginetest.Wallet
	account    *enginetest.Account
}

type harnessOption func(*Options)

func withResolver(r *fakeResolver) harnessOption {
	return func(o *Options) { o.Registry = r }
}

func withPayments(p PaymentProtocolResolver) harnessOption {
	return func(o *Options) { o.Payments = p }
}

func withConfig(cfg Config) harnessOption {
	return func(o *Options) { o.Config = cfg }
}

func withExtraWallets(extra ...*enginetest.Wallet) harnessOption {
	return func(o *Options) {
		account := o.Account.(*enginetest.Account)
		for _, w := range extra {
			account.Wallets[w.WalletID] = w
		}
	}
}

// newHarness builds a dispatcher around a single selected BTC wallet
// with all delays zeroed for tests.
func newHarness(t *testing.T, opts ...harnessOption) *testHarness {
	t.Helper()

	wallet := &enginetest.Wallet{
		WalletID:   "w-btc",
		WalletName: "My Bitcoin",
		Info:       engine.CurrencyInfo{PluginID: "bitcoin", CurrencyCode: "BTC"},
		Address:    "bc1qselected",
	}
	account := enginetest.NewAccount(wallet)

	h := &testHarness{
		prompter: &scriptedPrompter{},
		nav:      &fakeNavigator{},
		alerter:  &fakeAlerter{},
		launcher: &fakeLauncher{},
		sender:   &fakeSender{},
		wallet:   wallet,
		account:  account,
	}

	options := Options{
		Account:   account,
		Settings:  staticSettings{sel: domain.Selection{WalletID: "w-btc", CurrencyCode: "BTC"}},
		Prompter:  h.prompter,
		Navigator: h.nav,
		Alerter:   h.alerter,
		Launcher:  h.launcher,
		Sender:    h.sender,
		Prompts:   &memTracker{},
		Logger:    slog.Default(),
		Config: Config{
			AlertDelay:   -1,
			ConfirmDelay: -1,
		},
	}
	for _, opt := range opts {
		opt(&options)
	}

	d, err := New(options)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	h.dispatcher = d
	return h
}
