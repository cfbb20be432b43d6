// Package deeplink classifies raw scanned or deep-linked strings into
// the recognized link families. Classification is pure: no engine
// calls, no state.
package deeplink

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/orbitwallet/linkdispatch/internal/core/domain"
)

// ErrMalformedLink is returned for structurally malformed input, e.g.
// an unparseable URL. Unrecognized but well-formed input is not an
// error; it classifies as LinkTypeOther.
var ErrMalformedLink = errors.New("malformed link")

const (
	requestAddressScheme      = "reqaddr"
	requestAddressSchemeAlias = "rpa"
	returnAddressSchemeSuffix = "-ret"
	appLoginScheme            = "orbit"
	appLoginHost              = "login"
	bitPayHost                = "bitpay.com"
)

// Classify determines which link family a raw string belongs to.
// Anything well-formed but unmatched becomes LinkTypeOther, to be
// handed to the wallet engine's own URI parser.
func Classify(raw string) (*domain.DeepLink, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedLink, err)
	}
	scheme := strings.ToLower(u.Scheme)

	switch {
	case scheme == requestAddressScheme || scheme == requestAddressSchemeAlias:
		return requestAddressLink(raw, u)

	case strings.HasSuffix(scheme, returnAddressSchemeSuffix):
		q := u.Query()
		return &domain.DeepLink{
			Type: domain.LinkTypeReturnAddress,
			Raw:  raw,
			ReturnAddress: &domain.ReturnAddressLink{
				CurrencyName: strings.TrimSuffix(scheme, returnAddressSchemeSuffix),
				SourceName:   q.Get("sourceName"),
				SuccessURI:   q.Get("successUri"),
			},
		}, nil

	case scheme == appLoginScheme && u.Host == appLoginHost:
		return &domain.DeepLink{
			Type:     domain.LinkTypeAppLogin,
			Raw:      raw,
			AppLogin: &domain.AppLoginLink{LobbyID: strings.Trim(u.Path, "/")},
		}, nil

	case scheme == "https" && (u.Host == bitPayHost || u.Host == "www."+bitPayHost):
		return &domain.DeepLink{
			Type:   domain.LinkTypeBitPay,
			Raw:    raw,
			BitPay: &domain.BitPayLink{PaymentProtocolURL: raw},
		}, nil
	}

	return &domain.DeepLink{Type: domain.LinkTypeOther, Raw: raw}, nil
}

func requestAddressLink(raw string, u *url.URL) (*domain.DeepLink, error) {
	q := u.Query()
	assets, err := parseAssetList(q.Get("assets"))
	if err != nil {
		return nil, err
	}
	return &domain.DeepLink{
		Type: domain.LinkTypeRequestAddress,
		Raw:  raw,
		RequestAddress: &domain.RequestAddressLink{
			Assets: assets,
			Post:   q.Get("post"),
			Redir:  q.Get("redir"),
			Payer:  q.Get("payer"),
		},
	}, nil
}

// parseAssetList parses the RPA assets grammar: a comma-delimited list
// of nativeCode[:tokenCode] entries. An empty parameter yields an empty
// list; the request-address flow reports that as a validation failure,
// not the classifier.
func parseAssetList(list string) ([]domain.AssetDescriptor, error) {
	if list == "" {
		return nil, nil
	}
	var assets []domain.AssetDescriptor
	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		native, token, _ := strings.Cut(entry, ":")
		if native == "" {
			return nil, fmt.Errorf("%w: asset entry %q has no native code", ErrMalformedLink, entry)
		}
		assets = append(assets, domain.AssetDescriptor{NativeCode: native, TokenCode: token})
	}
	return assets, nil
}
