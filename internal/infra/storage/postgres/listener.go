package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sethvargo/go-retry"
)

// SelectionChannel is the NOTIFY channel raised on wallet-selection
// changes.
const SelectionChannel = "linkdispatch_selection"

// SelectionListener holds a dedicated LISTEN connection and invokes a
// callback for every selection-change notification. Other processes
// use it to drop cached selections.
type SelectionListener struct {
	url    string
	onConn func(walletID string)
	log    *slog.Logger
}

// NewSelectionListener creates a listener for the selection channel.
// The callback receives the new wallet ID.
func NewSelectionListener(url string, onChange func(walletID string), log *slog.Logger) *SelectionListener {
	if log == nil {
		log = slog.Default()
	}
	return &SelectionListener{url: url, onConn: onChange, log: log}
}

// Start runs the listen loop until the context is canceled. Connection
// failures reconnect with exponential backoff.
func (l *SelectionListener) Start(ctx context.Context) {
	backoff := retry.NewExponential(time.Second)
	backoff = retry.WithMaxDuration(5*time.Minute, backoff)

	for ctx.Err() == nil {
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			if err := l.listen(ctx); err != nil {
				l.log.Warn("selection listener reconnecting", "error", err)
				return retry.RetryableError(err)
			}
			return nil
		})
		if err != nil && ctx.Err() == nil {
			l.log.Error("selection listener gave up, restarting backoff", "error", err)
		}
	}
}

func (l *SelectionListener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.url)
	if err != nil {
		return fmt.Errorf("connect for listen: %w", err)
	}
	defer conn.Close(context.WithoutCancel(ctx))

	if _, err := conn.Exec(ctx, "LISTEN "+SelectionChannel); err != nil {
		return fmt.Errorf("listen on %s: %w", SelectionChannel, err)
	}
	l.log.Info("listening for selection changes", "channel", SelectionChannel)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("wait for notification: %w", err)
		}
		if l.onConn != nil {
			l.onConn(notification.Payload)
		}
	}
}
