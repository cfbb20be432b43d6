package prompt

import (
	"context"
	"strings"
	"testing"

	"github.com/orbitwallet/linkdispatch/internal/dispatch"
	"github.com/orbitwallet/linkdispatch/internal/engine"
	"github.com/orbitwallet/linkdispatch/internal/engine/enginetest"
)

func TestConfirmAnswers(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"yes\n", true},
		{"Import\n", true},
		{"n\n", false},
		{"\n", false},
	}
	for _, tt := range tests {
		var out strings.Builder
		p := NewTerminalPrompter(strings.NewReader(tt.input), &out, enginetest.NewAccount())
		got, err := p.Confirm(context.Background(), dispatch.ConfirmRequest{
			Title:        "Sweep from private key",
			Message:      "Import?",
			ConfirmLabel: "Import",
			CancelLabel:  "Cancel",
		})
		if err != nil {
			t.Fatalf("Confirm(%q) failed: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestChoose(t *testing.T) {
	req := dispatch.ChoiceRequest{
		Title: "Get crypto",
		Options: []dispatch.ChoiceOption{
			{Key: "buy", Label: "Buy BTC"},
			{Key: "exchange", Label: "Exchange"},
		},
	}

	var out strings.Builder
	p := NewTerminalPrompter(strings.NewReader("2\n"), &out, enginetest.NewAccount())
	got, err := p.Choose(context.Background(), req)
	if err != nil {
		t.Fatalf("Choose failed: %v", err)
	}
	if got != "exchange" {
		t.Errorf("Choose = %q, want exchange", got)
	}

	p = NewTerminalPrompter(strings.NewReader("9\n"), &out, enginetest.NewAccount())
	got, _ = p.Choose(context.Background(), req)
	if got != "" {
		t.Errorf("out-of-range choice = %q, want dismissal", got)
	}
}

func TestPickWallet(t *testing.T) {
	account := enginetest.NewAccount(
		&enginetest.Wallet{WalletID: "w-btc", WalletName: "Bitcoin", Info: engine.CurrencyInfo{CurrencyCode: "BTC"}},
	)
	var out strings.Builder
	p := NewTerminalPrompter(strings.NewReader("1\n"), &out, account)

	pick, err := p.PickWallet(context.Background(), dispatch.WalletPickRequest{
		Title:                "Select wallet",
		AllowedCurrencyCodes: []string{"BTC"},
	})
	if err != nil {
		t.Fatalf("PickWallet failed: %v", err)
	}
	if pick == nil || pick.WalletID != "w-btc" || pick.CurrencyCode != "BTC" {
		t.Errorf("pick = %+v", pick)
	}

	p = NewTerminalPrompter(strings.NewReader("0\n"), &out, account)
	pick, err = p.PickWallet(context.Background(), dispatch.WalletPickRequest{Title: "Select wallet"})
	if err != nil {
		t.Fatalf("PickWallet failed: %v", err)
	}
	if pick != nil {
		t.Errorf("cancel should dismiss, got %+v", pick)
	}
}

func TestPickWalletAllExcluded(t *testing.T) {
	account := enginetest.NewAccount(
		&enginetest.Wallet{WalletID: "w-btc", WalletName: "Bitcoin"},
	)
	var out strings.Builder
	p := NewTerminalPrompter(strings.NewReader(""), &out, account)

	pick, err := p.PickWallet(context.Background(), dispatch.WalletPickRequest{
		ExcludeWalletIDs: []string{"w-btc"},
	})
	if err != nil {
		t.Fatalf("PickWallet failed: %v", err)
	}
	if pick != nil {
		t.Errorf("no candidates should dismiss without reading input, got %+v", pick)
	}
}
