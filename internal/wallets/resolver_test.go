package wallets

import (
	"context"
	"sort"
	"testing"

	"github.com/orbitwallet/linkdispatch/internal/engine"
	"github.com/orbitwallet/linkdispatch/internal/engine/enginetest"
)

func walletSet() map[string]engine.Wallet {
	return map[string]engine.Wallet{
		"w-btc": &enginetest.Wallet{
			WalletID: "w-btc",
			Info:     engine.CurrencyInfo{PluginID: "bitcoin", CurrencyCode: "BTC"},
		},
		"w-eth-1": &enginetest.Wallet{
			WalletID: "w-eth-1",
			Info:     engine.CurrencyInfo{PluginID: "ethereum", CurrencyCode: "ETH"},
			Tokens:   []string{"USDC", "DAI"},
		},
		"w-eth-2": &enginetest.Wallet{
			WalletID: "w-eth-2",
			Info:     engine.CurrencyInfo{PluginID: "ethereum", CurrencyCode: "ETH"},
			Tokens:   []string{"LINK"},
		},
	}
}

func TestAssetSupportingWalletIDs(t *testing.T) {
	ctx := context.Background()
	set := walletSet()

	cases := []struct {
		name       string
		nativeCode string
		tokenCode  string
		want       []string
	}{
		{"native only", "btc", "", []string{"w-btc"}},
		{"native case insensitive", "BtC", "bTc", []string{"w-btc"}},
		{"token filters wallets", "ETH", "usdc", []string{"w-eth-1"}},
		{"token on second wallet", "eth", "LINK", []string{"w-eth-2"}},
		{"token nowhere enabled", "ETH", "SHIB", nil},
		{"unknown native", "XMR", "", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := AssetSupportingWalletIDs(ctx, set, tc.nativeCode, tc.tokenCode)
			if err != nil {
				t.Fatalf("AssetSupportingWalletIDs failed: %v", err)
			}
			sort.Strings(got)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestHasNativeCurrencyWallet(t *testing.T) {
	set := walletSet()
	if !HasNativeCurrencyWallet(set, []string{"ltc", "eTh"}) {
		t.Error("expected ETH wallet to match")
	}
	if HasNativeCurrencyWallet(set, []string{"LTC", "XMR"}) {
		t.Error("expected no match for LTC/XMR")
	}
}

func TestAvailableBalance(t *testing.T) {
	w := &enginetest.Wallet{
		Info: engine.CurrencyInfo{CurrencyCode: "ATOM"},
		Balances: map[string]string{
			"ATOM":        "1000",
			"ATOM:LOCKED": "250",
		},
	}
	if got := AvailableBalance(w, ""); got != "750" {
		t.Errorf("AvailableBalance = %q, want 750", got)
	}
}

func TestZeroBalance(t *testing.T) {
	cases := map[string]bool{
		"":       true,
		"0":      true,
		"000":    true,
		"1":      false,
		"100000": false,
		"junk":   false,
	}
	for balance, want := range cases {
		if got := ZeroBalance(balance); got != want {
			t.Errorf("ZeroBalance(%q) = %v, want %v", balance, got, want)
		}
	}
}
