// Package wallets resolves which wallets of an account can satisfy an
// asset descriptor, including enabled-token lookups.
package wallets

import (
	"context"
	"fmt"
	"strings"

	"github.com/orbitwallet/linkdispatch/internal/engine"
)

// AssetSupportingWalletIDs returns the IDs of all wallets whose native
// currency matches nativeCode and, when tokenCode is non-empty, that
// have the token enabled. All code comparisons are case-insensitive.
// A tokenCode equal to the wallet's native code counts as satisfied
// without a token lookup.
func AssetSupportingWalletIDs(
	ctx context.Context,
	currencyWallets map[string]engine.Wallet,
	nativeCode, tokenCode string,
) ([]string, error) {
	var supporting []string
	for walletID, wallet := range currencyWallets {
		walletNative := wallet.CurrencyInfo().CurrencyCode
		if !strings.EqualFold(walletNative, nativeCode) {
			continue
		}
		if tokenCode == "" || strings.EqualFold(tokenCode, walletNative) {
			supporting = append(supporting, walletID)
			continue
		}
		enabled, err := wallet.EnabledTokens(ctx)
		if err != nil {
			return nil, fmt.Errorf("list enabled tokens for wallet %s: %w", walletID, err)
		}
		for _, code := range enabled {
			if strings.EqualFold(code, tokenCode) {
				supporting = append(supporting, walletID)
				break
			}
		}
	}
	return supporting, nil
}

// HasNativeCurrencyWallet reports whether any wallet's native currency
// matches any of the given native codes, case-insensitively.
func HasNativeCurrencyWallet(currencyWallets map[string]engine.Wallet, nativeCodes []string) bool {
	for _, wallet := range currencyWallets {
		walletNative := wallet.CurrencyInfo().CurrencyCode
		for _, code := range nativeCodes {
			if strings.EqualFold(walletNative, code) {
				return true
			}
		}
	}
	return false
}
