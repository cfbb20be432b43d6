package dispatch

import (
	"strconv"
	"strings"

	"github.com/orbitwallet/linkdispatch/internal/engine"
)

// terminalAction is the tagged result of matching a parsed URI against
// the terminal-action priority contract.
type terminalAction interface{ isTerminalAction() }

type addTokenAction struct {
	Token *engine.TokenInfo
}

type sendLegacyAction struct{}

type sweepAction struct {
	PrivateKeys []string
}

type paymentProtocolAction struct {
	URL string
}

type sendPublicAction struct {
	PublicAddress string
	NativeAmount  string
}

func (addTokenAction) isTerminalAction()        {}
func (sendLegacyAction) isTerminalAction()      {}
func (sweepAction) isTerminalAction()           {}
func (paymentProtocolAction) isTerminalAction() {}
func (sendPublicAction) isTerminalAction()      {}

// selectAction maps a parsed URI to exactly one terminal action. The
// order is a contract: token, then legacy address, then private keys,
// then payment-protocol URL without an explicit public address, then
// the public-address form. First match wins.
func selectAction(parsed *engine.ParsedURI) terminalAction {
	switch {
	case parsed.Token != nil:
		return addTokenAction{Token: parsed.Token}
	case parsed.LegacyAddress != "":
		return sendLegacyAction{}
	case len(parsed.PrivateKeys) > 0:
		return sweepAction{PrivateKeys: parsed.PrivateKeys}
	case parsed.PaymentProtocolURL != "" && parsed.PublicAddress == "":
		return paymentProtocolAction{URL: parsed.PaymentProtocolURL}
	default:
		return sendPublicAction{
			PublicAddress: parsed.PublicAddress,
			NativeAmount:  parsed.NativeAmount,
		}
	}
}

const defaultTokenDecimals = "18"

// decimalPlacesFromMultiplier converts a denomination multiplier to a
// decimal-place count: "1000000" yields "6". Anything that is not a
// power of ten yields the default of 18.
func decimalPlacesFromMultiplier(multiplier string) string {
	if multiplier == "" || multiplier[0] != '1' {
		return defaultTokenDecimals
	}
	zeros := multiplier[1:]
	if strings.Trim(zeros, "0") != "" {
		return defaultTokenDecimals
	}
	return strconv.Itoa(len(zeros))
}

// tokenDecimalPlaces derives the decimal places for a token from its
// first denomination, defaulting when absent.
func tokenDecimalPlaces(token *engine.TokenInfo) string {
	if len(token.Denominations) == 0 {
		return defaultTokenDecimals
	}
	m := token.Denominations[0].Multiplier
	if m == "" {
		return defaultTokenDecimals
	}
	return decimalPlacesFromMultiplier(m)
}
