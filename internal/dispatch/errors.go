package dispatch

import "errors"

// Validation errors: the request-address flow collects and surfaces
// each one individually before halting.
var (
	ErrNoAssets        = errors.New("no currencies found in request for payment address")
	ErrMissingTarget   = errors.New("post or redir address not found in request for payment address")
	ErrAmbiguousTarget = errors.New("both post and redir address were specified in request for payment address")
)

// Capability errors: the account cannot satisfy the request; the user
// is told how to remediate.
var (
	ErrNoMatchingWallet = errors.New(
		"no wallets found that support the native currencies listed in the request for payment address")
	ErrTokenNotEnabled = errors.New(
		"no wallets found that have enabled a token listed in the request for payment address; " +
			"enable the token under the wallet's token settings")
	ErrNoWalletsSelected = errors.New("no wallets selected for request for payment address")
)

// ErrRedirectLoop rejects redirect chains that could recurse forever: a
// redirect target that is itself a request-address link carrying a
// redirect, or a chain deeper than the configured limit.
var ErrRedirectLoop = errors.New("invalid redir in request for payment address")

// ErrInvalidRequestAddress covers the defensive should-not-happen case
// of a validated link with neither delivery target.
var ErrInvalidRequestAddress = errors.New("invalid request for payment address URI")

// ErrDispatchInFlight is reported when a dispatch is requested while
// another one is still running.
var ErrDispatchInFlight = errors.New("a scan is already being handled")
