package dispatch

import (
	"context"
	"fmt"

	"github.com/orbitwallet/linkdispatch/internal/engine"
)

// AddressWarnings evaluates the skippable address warnings for a parsed
// URI in fixed order: the gateway/bridge warning first, then the
// legacy-address warning. Each shows only when its trigger holds;
// skipped counts as approved. Both must be approved for the overall
// result to be true.
func (d *Dispatcher) AddressWarnings(ctx context.Context, parsed *engine.ParsedURI, currencyCode string) (bool, error) {
	approve := true

	if parsed.Metadata != nil && parsed.Metadata.Gateway {
		ok, err := d.prompter.ConfirmContinue(ctx, WarningRequest{
			Title: fmt.Sprintf("%s gateway address", currencyCode),
			Body: "This address belongs to a gateway or bridge. Funds sent to it are handed to a " +
				"third party; make sure you trust the destination before continuing.",
		})
		d.countPrompt("gateway_warning", ok, err)
		if err != nil {
			return false, err
		}
		approve = approve && ok
	}

	if approve && parsed.LegacyAddress != "" {
		ok, err := d.prompter.ConfirmContinue(ctx, WarningRequest{
			Title: "Legacy address",
			Body: "This is an older address format. Sending to it usually works, but the recipient's " +
				"wallet may expect the newer format.",
		})
		d.countPrompt("legacy_warning", ok, err)
		if err != nil {
			return false, err
		}
		approve = approve && ok
	}

	return approve, nil
}
