package dispatch

import (
	"testing"

	"github.com/orbitwallet/linkdispatch/internal/engine"
)

func TestSelectActionPriority(t *testing.T) {
	token := &engine.TokenInfo{CurrencyCode: "USDC"}

	tests := []struct {
		name   string
		parsed *engine.ParsedURI
		want   string
	}{
		{
			name: "token wins over everything",
			parsed: &engine.ParsedURI{
				Token:              token,
				LegacyAddress:      "1Legacy",
				PrivateKeys:        []string{"k"},
				PaymentProtocolURL: "https://pp",
				PublicAddress:      "bc1q",
			},
			want: "addToken",
		},
		{
			name: "legacy wins over private keys",
			parsed: &engine.ParsedURI{
				LegacyAddress: "1Legacy",
				PrivateKeys:   []string{"k"},
			},
			want: "sendLegacy",
		},
		{
			name:   "private keys win over payment protocol",
			parsed: &engine.ParsedURI{PrivateKeys: []string{"k"}, PaymentProtocolURL: "https://pp"},
			want:   "sweep",
		},
		{
			name:   "payment protocol without public address",
			parsed: &engine.ParsedURI{PaymentProtocolURL: "https://pp"},
			want:   "paymentProtocol",
		},
		{
			name:   "public address suppresses payment protocol",
			parsed: &engine.ParsedURI{PaymentProtocolURL: "https://pp", PublicAddress: "bc1q"},
			want:   "sendPublic",
		},
		{
			name:   "plain public address",
			parsed: &engine.ParsedURI{PublicAddress: "bc1q", NativeAmount: "100"},
			want:   "sendPublic",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			switch selectAction(tt.parsed).(type) {
			case addTokenAction:
				got = "addToken"
			case sendLegacyAction:
				got = "sendLegacy"
			case sweepAction:
				got = "sweep"
			case paymentProtocolAction:
				got = "paymentProtocol"
			case sendPublicAction:
				got = "sendPublic"
			}
			if got != tt.want {
				t.Errorf("selectAction = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDecimalPlacesFromMultiplier(t *testing.T) {
	tests := []struct {
		multiplier string
		want       string
	}{
		{"1", "0"},
		{"10", "1"},
		{"1000000", "6"},
		{"1000000000000000000", "18"},
		{"", "18"},
		{"500", "18"},
		{"1500", "18"},
		{"2000000", "18"},
	}
	for _, tt := range tests {
		if got := decimalPlacesFromMultiplier(tt.multiplier); got != tt.want {
			t.Errorf("decimalPlacesFromMultiplier(%q) = %s, want %s", tt.multiplier, got, tt.want)
		}
	}
}

func TestTokenDecimalPlaces(t *testing.T) {
	withMultiplier := &engine.TokenInfo{
		Denominations: []engine.Denomination{{Multiplier: "100000000"}},
	}
	if got := tokenDecimalPlaces(withMultiplier); got != "8" {
		t.Errorf("tokenDecimalPlaces = %s, want 8", got)
	}
	if got := tokenDecimalPlaces(&engine.TokenInfo{}); got != "18" {
		t.Errorf("tokenDecimalPlaces without denominations = %s, want 18", got)
	}
}
