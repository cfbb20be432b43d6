package wallets

import (
	"math/big"

	"github.com/orbitwallet/linkdispatch/internal/engine"
)

const fallbackWalletName = "Unnamed wallet"

// stakingLockedSuffix marks the locked sub-balance a staking-capable
// chain reports alongside the spendable balance.
const stakingLockedSuffix = ":locked"

// DisplayName returns the wallet's name, or a fallback when the engine
// reports none.
func DisplayName(w engine.Wallet) string {
	if name := w.Name(); name != "" {
		return name
	}
	return fallbackWalletName
}

// AvailableBalance returns the spendable balance for a currency code as
// a base-unit decimal string, subtracting any staking-locked
// sub-balance. Unparseable balances are returned verbatim.
func AvailableBalance(w engine.Wallet, currencyCode string) string {
	if currencyCode == "" {
		currencyCode = w.CurrencyInfo().CurrencyCode
	}
	balance := w.Balance(currencyCode)
	if balance == "" {
		return "0"
	}
	locked := w.Balance(currencyCode + stakingLockedSuffix)
	if locked == "" {
		return balance
	}
	total, ok := new(big.Int).SetString(balance, 10)
	if !ok {
		return balance
	}
	lockedInt, ok := new(big.Int).SetString(locked, 10)
	if !ok {
		return balance
	}
	return new(big.Int).Sub(total, lockedInt).String()
}

// ZeroBalance reports whether a base-unit balance string is empty or
// represents zero.
func ZeroBalance(balance string) bool {
	if balance == "" {
		return true
	}
	n, ok := new(big.Int).SetString(balance, 10)
	if !ok {
		return false
	}
	return n.Sign() == 0
}
