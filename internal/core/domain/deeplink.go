package domain

// LinkType identifies the recognized deep-link families.
type LinkType string

const (
	LinkTypeOther          LinkType = "other"
	LinkTypeReturnAddress  LinkType = "returnAddress"
	LinkTypeRequestAddress LinkType = "requestAddress"
	LinkTypeAppLogin       LinkType = "appLogin"
	LinkTypeBitPay         LinkType = "bitPay"
)

// AssetDescriptor identifies a requested currency/token pair independent
// of any wallet. Comparisons against wallet currency codes are
// case-insensitive.
type AssetDescriptor struct {
	NativeCode string
	TokenCode  string // empty means the native asset itself
}

// DeepLink is a tagged union over the recognized link families. Type
// selects the active variant; the matching pointer is non-nil and the
// others are nil. LinkTypeOther carries only Raw.
type DeepLink struct {
	Type LinkType
	Raw  string

	ReturnAddress  *ReturnAddressLink
	RequestAddress *RequestAddressLink
	AppLogin       *AppLoginLink
	BitPay         *BitPayLink
}

// ReturnAddressLink asks the wallet to send back a fresh receive address
// for a currency via the success URI callback.
type ReturnAddressLink struct {
	CurrencyName string
	SourceName   string
	SuccessURI   string
}

// RequestAddressLink is a request-for-payment-address (RPA) link.
// After validation it holds at least one asset and exactly one of
// Post / Redir.
type RequestAddressLink struct {
	Assets []AssetDescriptor
	Post   string
	Redir  string
	Payer  string
}

// AppLoginLink is a third-party login handoff.
type AppLoginLink struct {
	LobbyID string
}

// BitPayLink references a server-hosted payment request.
type BitPayLink struct {
	PaymentProtocolURL string
}
