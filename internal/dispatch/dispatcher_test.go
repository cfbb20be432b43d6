package dispatch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/orbitwallet/linkdispatch/internal/core/domain"
	"github.com/orbitwallet/linkdispatch/internal/engine"
)

func TestDispatchEmptyInputIsNoOp(t *testing.T) {
	h := newHarness(t)

	h.dispatcher.Dispatch(context.Background(), "")

	if len(h.wallet.ParseCalls) != 0 {
		t.Errorf("expected no parse calls, got %d", len(h.wallet.ParseCalls))
	}
	if len(h.alerter.Errors) != 0 || len(h.alerter.Alerts) != 0 {
		t.Errorf("expected no alerts, got errors=%v alerts=%v", h.alerter.Errors, h.alerter.Alerts)
	}
	if !h.dispatcher.Session().ScanEnabled() {
		t.Error("scanning should remain enabled after an empty dispatch")
	}
}

func TestDispatchPublicAddress(t *testing.T) {
	h := newHarness(t)
	h.wallet.ParseResult = &engine.ParsedURI{
		PublicAddress: "bc1qdest",
		NativeAmount:  "150000",
	}

	h.dispatcher.Dispatch(context.Background(), "bitcoin:bc1qdest?amount=0.0015")

	if len(h.wallet.ParseCalls) != 1 || h.wallet.ParseCalls[0] != "bitcoin:bc1qdest?amount=0.0015" {
		t.Fatalf("unexpected parse calls: %v", h.wallet.ParseCalls)
	}
	if len(h.nav.SendCalls) != 1 {
		t.Fatalf("expected one send navigation, got %d", len(h.nav.SendCalls))
	}
	send := h.nav.SendCalls[0]
	if send.WalletID != "w-btc" || send.CurrencyCode != "BTC" {
		t.Errorf("send routed to wallet=%s code=%s", send.WalletID, send.CurrencyCode)
	}
	if len(send.SpendInfo.SpendTargets) != 1 {
		t.Fatalf("expected one spend target, got %d", len(send.SpendInfo.SpendTargets))
	}
	target := send.SpendInfo.SpendTargets[0]
	if target.PublicAddress != "bc1qdest" || target.NativeAmount != "150000" {
		t.Errorf("unexpected spend target: %+v", target)
	}
	if target.OtherParams != nil {
		t.Errorf("no alias expected, got %v", target.OtherParams)
	}
	if !h.dispatcher.Session().ScanEnabled() {
		t.Error("scanning should be re-enabled after dispatch")
	}
}

func TestDispatchTokenTakesPriority(t *testing.T) {
	h := newHarness(t)
	h.wallet.ParseResult = &engine.ParsedURI{
		LegacyAddress: "1LegacyAddr",
		Token: &engine.TokenInfo{
			ContractAddress: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48",
			CurrencyCode:    "usdc",
			CurrencyName:    "USD Coin",
			Denominations:   []engine.Denomination{{Multiplier: "1000000"}},
		},
	}

	h.dispatcher.Dispatch(context.Background(), "token:0xa0b8...")

	if len(h.nav.AddTokenCalls) != 1 {
		t.Fatalf("expected one add-token navigation, got %d", len(h.nav.AddTokenCalls))
	}
	got := h.nav.AddTokenCalls[0]
	if got.CurrencyCode != "USDC" {
		t.Errorf("currency code = %q, want USDC", got.CurrencyCode)
	}
	if got.DecimalPlaces != "6" {
		t.Errorf("decimal places = %q, want 6", got.DecimalPlaces)
	}
	if got.WalletID != "w-btc" {
		t.Errorf("wallet id = %q", got.WalletID)
	}
	if len(h.nav.SendCalls) != 0 {
		t.Errorf("token must win over the legacy address, got send calls %v", h.nav.SendCalls)
	}
}

func TestDispatchInvalidURIShowsAlert(t *testing.T) {
	h := newHarness(t)
	h.wallet.ParseErr = errors.New("unrecognized format")

	h.dispatcher.Dispatch(context.Background(), "garbage-data")

	if len(h.alerter.Alerts) != 1 {
		t.Fatalf("expected one alert, got %v", h.alerter.Alerts)
	}
	if !strings.HasPrefix(h.alerter.Alerts[0], "Invalid address|") {
		t.Errorf("alert = %q, want default invalid-address text", h.alerter.Alerts[0])
	}
	if len(h.nav.SendCalls) != 0 || len(h.nav.AddTokenCalls) != 0 {
		t.Error("no navigation expected after a parse failure")
	}
	if !h.dispatcher.Session().ScanEnabled() {
		t.Error("scanning should be re-enabled after the alert")
	}
}

func TestDispatchCustomErrorText(t *testing.T) {
	h := newHarness(t)
	h.wallet.ParseErr = errors.New("unrecognized format")

	h.dispatcher.DispatchWithErrorText(context.Background(), "garbage-data", "Oops", "That code did not work.")

	if len(h.alerter.Alerts) != 1 {
		t.Fatalf("expected one alert, got %v", h.alerter.Alerts)
	}
	if h.alerter.Alerts[0] != "Oops|That code did not work." {
		t.Errorf("alert = %q", h.alerter.Alerts[0])
	}
}

func TestDispatchGatewayWarningDeclined(t *testing.T) {
	h := newHarness(t)
	h.wallet.ParseResult = &engine.ParsedURI{
		LegacyAddress: "1LegacyAddr",
		Metadata:      &engine.URIMetadata{Gateway: true},
	}
	h.prompter.ContinueAnswers = []bool{false}

	h.dispatcher.Dispatch(context.Background(), "bitcoin:1LegacyAddr")

	// Declining the gateway warning must short-circuit the legacy one.
	if len(h.prompter.ContinueReqs) != 1 {
		t.Fatalf("expected one warning, got %d", len(h.prompter.ContinueReqs))
	}
	if len(h.nav.SendCalls) != 0 {
		t.Error("no navigation expected after a declined warning")
	}
	if !h.dispatcher.Session().ScanEnabled() {
		t.Error("scanning should be re-enabled after decline")
	}
}

func TestDispatchBothWarningsApproved(t *testing.T) {
	h := newHarness(t)
	h.wallet.ParseResult = &engine.ParsedURI{
		LegacyAddress: "1LegacyAddr",
		Metadata:      &engine.URIMetadata{Gateway: true},
	}
	h.prompter.ContinueAnswers = []bool{true, true}

	h.dispatcher.Dispatch(context.Background(), "bitcoin:1LegacyAddr")

	if len(h.prompter.ContinueReqs) != 2 {
		t.Fatalf("expected gateway then legacy warning, got %d", len(h.prompter.ContinueReqs))
	}
	if !strings.Contains(h.prompter.ContinueReqs[0].Title, "gateway") {
		t.Errorf("first warning = %q, want the gateway warning", h.prompter.ContinueReqs[0].Title)
	}
	if len(h.nav.SendCalls) != 1 {
		t.Fatalf("expected the legacy send after both approvals, got %d calls", len(h.nav.SendCalls))
	}
	if h.nav.SendCalls[0].SpendInfo.SpendTargets[0].PublicAddress != "1LegacyAddr" {
		t.Errorf("spend target = %+v", h.nav.SendCalls[0].SpendInfo.SpendTargets[0])
	}
}

func TestDispatchSweepConfirmed(t *testing.T) {
	h := newHarness(t)
	h.wallet.ParseResult = &engine.ParsedURI{PrivateKeys: []string{"L1aW4aubDFB7yfras2S1mME"}}
	h.prompter.ConfirmAnswers = []bool{true}

	h.dispatcher.Dispatch(context.Background(), "L1aW4aubDFB7yfras2S1mME")

	if len(h.wallet.SweepRequests) != 1 {
		t.Fatalf("expected one sweep, got %d", len(h.wallet.SweepRequests))
	}
	if len(h.wallet.SignedTxs) != 1 || len(h.wallet.BroadcastedTxs) != 1 {
		t.Errorf("sweep not signed and broadcast: signed=%d broadcast=%d",
			len(h.wallet.SignedTxs), len(h.wallet.BroadcastedTxs))
	}
}

func TestDispatchSweepDeclined(t *testing.T) {
	h := newHarness(t)
	h.wallet.ParseResult = &engine.ParsedURI{PrivateKeys: []string{"L1aW4aubDFB7yfras2S1mME"}}
	h.prompter.ConfirmAnswers = []bool{false}

	h.dispatcher.Dispatch(context.Background(), "L1aW4aubDFB7yfras2S1mME")

	if len(h.wallet.SweepRequests) != 0 {
		t.Errorf("declined sweep must not touch the wallet, got %d requests", len(h.wallet.SweepRequests))
	}
}

func TestDispatchPaymentProtocol(t *testing.T) {
	payments := &fakePayments{
		Info: &engine.SpendInfo{
			SpendTargets: []engine.SpendTarget{{PublicAddress: "bc1qmerchant", NativeAmount: "75000"}},
		},
	}
	h := newHarness(t, withPayments(payments))
	h.wallet.ParseResult = &engine.ParsedURI{PaymentProtocolURL: "https://merchant.example/i/abc"}

	h.dispatcher.Dispatch(context.Background(), "bitcoin:?r=https://merchant.example/i/abc")

	if payments.Calls != 1 {
		t.Fatalf("expected one payment protocol fetch, got %d", payments.Calls)
	}
	if len(h.nav.SendCalls) != 1 {
		t.Fatalf("expected send navigation, got %d", len(h.nav.SendCalls))
	}
	if h.nav.SendCalls[0].SpendInfo.SpendTargets[0].PublicAddress != "bc1qmerchant" {
		t.Errorf("spend info = %+v", h.nav.SendCalls[0].SpendInfo)
	}
}

func TestDispatchPaymentProtocolNoSpendInfo(t *testing.T) {
	payments := &fakePayments{}
	h := newHarness(t, withPayments(payments))
	h.wallet.ParseResult = &engine.ParsedURI{PaymentProtocolURL: "https://merchant.example/i/abc"}

	h.dispatcher.Dispatch(context.Background(), "bitcoin:?r=https://merchant.example/i/abc")

	if payments.Calls != 1 {
		t.Fatalf("expected one payment protocol fetch, got %d", payments.Calls)
	}
	if len(h.nav.SendCalls) != 0 {
		t.Errorf("no spend info means no navigation, got %v", h.nav.SendCalls)
	}
	if len(h.alerter.Errors) != 0 {
		t.Errorf("no error expected, got %v", h.alerter.Errors)
	}
}

func TestDispatchAliasResolution(t *testing.T) {
	resolver := &fakeResolver{Addresses: map[string]string{"alice@wallet": "bc1qalias"}}
	h := newHarness(t, withResolver(resolver))

	h.dispatcher.Dispatch(context.Background(), "Alice@Wallet")

	if len(h.wallet.ParseCalls) != 1 || h.wallet.ParseCalls[0] != "bc1qalias" {
		t.Fatalf("parser should receive the resolved address, got %v", h.wallet.ParseCalls)
	}
	if len(h.nav.SendCalls) != 1 {
		t.Fatalf("expected send navigation, got %d", len(h.nav.SendCalls))
	}
	target := h.nav.SendCalls[0].SpendInfo.SpendTargets[0]
	if target.OtherParams == nil {
		t.Fatal("alias params missing from spend target")
	}
	if target.OtherParams["aliasName"] != "alice@wallet" {
		t.Errorf("aliasName = %v, want the lowercased input", target.OtherParams["aliasName"])
	}
	if target.OtherParams["isSendUsingAlias"] != true {
		t.Errorf("isSendUsingAlias = %v", target.OtherParams["isSendUsingAlias"])
	}
}

func TestDispatchUnknownNameFallsThrough(t *testing.T) {
	resolver := &fakeResolver{Addresses: map[string]string{}}
	h := newHarness(t, withResolver(resolver))

	h.dispatcher.Dispatch(context.Background(), "bc1qplainaddress")

	if len(h.wallet.ParseCalls) != 1 || h.wallet.ParseCalls[0] != "bc1qplainaddress" {
		t.Fatalf("unknown names must fall through to the raw input, got %v", h.wallet.ParseCalls)
	}
	if len(h.alerter.Errors) != 0 {
		t.Errorf("an unknown name is not an error, got %v", h.alerter.Errors)
	}
}

func TestDispatchRegistryFailureAborts(t *testing.T) {
	resolver := &fakeResolver{Err: errors.New("registry unreachable")}
	h := newHarness(t, withResolver(resolver))

	h.dispatcher.Dispatch(context.Background(), "alice@wallet")

	if len(h.wallet.ParseCalls) != 0 {
		t.Errorf("registry failures must abort before parsing, got %v", h.wallet.ParseCalls)
	}
	if len(h.alerter.Errors) != 1 {
		t.Fatalf("expected the failure surfaced, got %v", h.alerter.Errors)
	}
}

func TestDispatchAppLoginHandsOff(t *testing.T) {
	h := newHarness(t)

	h.dispatcher.Dispatch(context.Background(), "orbit://login/lobby-1234")

	if len(h.launcher.Launched) != 1 {
		t.Fatalf("expected one launcher handoff, got %d", len(h.launcher.Launched))
	}
	if h.launcher.Launched[0].Type != domain.LinkTypeAppLogin {
		t.Errorf("launched link type = %s", h.launcher.Launched[0].Type)
	}
	if len(h.wallet.ParseCalls) != 0 {
		t.Errorf("app login must not hit the engine parser, got %v", h.wallet.ParseCalls)
	}
}

func TestDispatchSingleFlight(t *testing.T) {
	h := newHarness(t)
	h.wallet.ParseResult = &engine.ParsedURI{PrivateKeys: []string{"key"}}
	h.prompter.ConfirmAnswers = []bool{false}
	h.prompter.BlockConfirm = make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.dispatcher.Dispatch(context.Background(), "key")
	}()

	deadline := time.Now().Add(2 * time.Second)
	for h.dispatcher.Session().State() != StateDispatching {
		if time.Now().After(deadline) {
			t.Fatal("first dispatch never started")
		}
		time.Sleep(time.Millisecond)
	}

	// A second dispatch while the first awaits the user is dropped.
	h.dispatcher.Dispatch(context.Background(), "bitcoin:bc1qother")

	close(h.prompter.BlockConfirm)
	wg.Wait()

	if got := len(h.wallet.ParseCalls); got != 1 {
		t.Errorf("expected exactly one parse, got %d: %v", got, h.wallet.ParseCalls)
	}
	if h.dispatcher.Session().State() != StateIdle {
		t.Errorf("session state = %s, want idle", h.dispatcher.Session().State())
	}
}

func TestHandleScanDroppedWhileDisabled(t *testing.T) {
	h := newHarness(t)
	h.dispatcher.Session().DisableScan(context.Background())

	h.dispatcher.HandleScan(context.Background(), "bitcoin:bc1qdest")

	if len(h.wallet.ParseCalls) != 0 {
		t.Errorf("scan must be dropped while disabled, got %v", h.wallet.ParseCalls)
	}
}

func TestLooksLikePaymentName(t *testing.T) {
	cases := map[string]bool{
		"alice@wallet":            true,
		"Alice@Wallet":            true,
		"bc1qplainaddress":        false,
		"bitcoin:bc1q?amount=1":   false,
		"https://bitpay.com/i/x":  false,
		"@wallet":                 false,
		"alice@":                  false,
		"a@b@c":                   false,
		"name with spaces@domain": false,
	}
	for input, want := range cases {
		if got := looksLikePaymentName(input); got != want {
			t.Errorf("looksLikePaymentName(%q) = %v, want %v", input, got, want)
		}
	}
}
