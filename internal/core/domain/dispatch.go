package domain

import "time"

// DispatchOutcome is the terminal result of a single dispatch.
type DispatchOutcome string

const (
	OutcomeSend       DispatchOutcome = "send"
	OutcomeAddToken   DispatchOutcome = "add_token"
	OutcomeSweep      DispatchOutcome = "sweep"
	OutcomeLaunched   DispatchOutcome = "launched"
	OutcomeDelivered  DispatchOutcome = "delivered"
	OutcomeRedirected DispatchOutcome = "redirected"
	OutcomeDeclined   DispatchOutcome = "declined"
	OutcomeIgnored    DispatchOutcome = "ignored"
	OutcomeError      DispatchOutcome = "error"
)

// DispatchRecord is the audit entry written for every dispatch. The raw
// input is deliberately not stored; scanned payloads can carry private
// keys.
type DispatchRecord struct {
	ID        string
	LinkType  LinkType
	Outcome   DispatchOutcome
	Error     string
	Duration  time.Duration
	CreatedAt time.Time
}

// Selection is the wallet context the dispatcher resolves native URIs
// against.
type Selection struct {
	WalletID     string
	CurrencyCode string
}
