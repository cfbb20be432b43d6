// Package prompt implements the user-interaction ports on a terminal.
// It backs the scan command; an embedding application supplies its own
// implementations.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/orbitwallet/linkdispatch/internal/dispatch"
	"github.com/orbitwallet/linkdispatch/internal/engine"
	"github.com/orbitwallet/linkdispatch/internal/wallets"
)

// TerminalPrompter asks questions on stdin/stdout.
type TerminalPrompter struct {
	in      *bufio.Reader
	out     io.Writer
	account engine.Account
}

var _ dispatch.Prompter = (*TerminalPrompter)(nil)

// NewTerminalPrompter creates a prompter reading from in and writing to
// out. The account backs the wallet picker listing.
func NewTerminalPrompter(in io.Reader, out io.Writer, account engine.Account) *TerminalPrompter {
	return &TerminalPrompter{
		in:      bufio.NewReader(in),
		out:     out,
		account: account,
	}
}

func (p *TerminalPrompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *TerminalPrompter) Confirm(ctx context.Context, req dispatch.ConfirmRequest) (bool, error) {
	fmt.Fprintf(p.out, "\n%s\n%s\n[%s / %s] > ", req.Title, req.Message, req.ConfirmLabel, req.CancelLabel)
	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes" || strings.EqualFold(answer, req.ConfirmLabel), nil
}

func (p *TerminalPrompter) ConfirmContinue(ctx context.Context, req dispatch.WarningRequest) (bool, error) {
	fmt.Fprintf(p.out, "\nWARNING: %s\n%s\nContinue? [y/N] > ", req.Title, req.Body)
	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

func (p *TerminalPrompter) Choose(ctx context.Context, req dispatch.ChoiceRequest) (string, error) {
	fmt.Fprintf(p.out, "\n%s\n%s\n", req.Title, req.Message)
	for i, opt := range req.Options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, opt.Label)
	}
	fmt.Fprint(p.out, "> ")
	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	idx, err := strconv.Atoi(answer)
	if err != nil || idx < 1 || idx > len(req.Options) {
		return "", nil
	}
	return req.Options[idx-1].Key, nil
}

func (p *TerminalPrompter) PickWallet(ctx context.Context, req dispatch.WalletPickRequest) (*dispatch.WalletPick, error) {
	excluded := make(map[string]bool, len(req.ExcludeWalletIDs))
	for _, id := range req.ExcludeWalletIDs {
		excluded[id] = true
	}

	type candidate struct {
		id   string
		name string
	}
	var candidates []candidate
	for id, w := range p.account.CurrencyWallets() {
		if excluded[id] {
			continue
		}
		candidates = append(candidates, candidate{id: id, name: wallets.DisplayName(w)})
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	code := ""
	if len(req.AllowedCurrencyCodes) > 0 {
		code = req.AllowedCurrencyCodes[0]
	}
	fmt.Fprintf(p.out, "\n%s (%s)\n", req.Title, code)
	for i, c := range candidates {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, c.name)
	}
	fmt.Fprint(p.out, "  0) Cancel\n> ")
	answer, err := p.readLine()
	if err != nil {
		return nil, err
	}
	idx, err := strconv.Atoi(answer)
	if err != nil || idx < 1 || idx > len(candidates) {
		return nil, nil
	}
	return &dispatch.WalletPick{WalletID: candidates[idx-1].id, CurrencyCode: code}, nil
}

// TerminalAlerter prints alerts to the terminal. ShowAlert waits for a
// keypress, mirroring a modal dismissal.
type TerminalAlerter struct {
	in  *bufio.Reader
	out io.Writer
}

var _ dispatch.Alerter = (*TerminalAlerter)(nil)

func NewTerminalAlerter(in io.Reader, out io.Writer) *TerminalAlerter {
	return &TerminalAlerter{in: bufio.NewReader(in), out: out}
}

func (a *TerminalAlerter) ShowError(err error) {
	fmt.Fprintf(a.out, "\nERROR: %v\n", err)
}

func (a *TerminalAlerter) ShowAlert(ctx context.Context, title, body string) {
	fmt.Fprintf(a.out, "\n%s\n%s\n[press enter] ", title, body)
	_, _ = a.in.ReadString('\n')
}

// LogNavigator records navigations in the structured log. The scan
// command uses it in place of a real UI.
type LogNavigator struct {
	log *slog.Logger
}

var _ dispatch.Navigator = (*LogNavigator)(nil)

func NewLogNavigator(log *slog.Logger) *LogNavigator {
	if log == nil {
		log = slog.Default()
	}
	return &LogNavigator{log: log}
}

func (n *LogNavigator) ShowSend(params dispatch.SendParams) {
	n.log.Info("navigate: send",
		"wallet", params.WalletID,
		"currency", params.CurrencyCode,
		"targets", len(params.SpendInfo.SpendTargets))
}

func (n *LogNavigator) ShowAddToken(params dispatch.AddTokenParams) {
	n.log.Info("navigate: add token",
		"wallet", params.WalletID,
		"currency", params.CurrencyCode,
		"contract", params.ContractAddress,
		"decimals", params.DecimalPlaces)
}

func (n *LogNavigator) ShowBuy(walletID, currencyCode string) {
	n.log.Info("navigate: buy", "wallet", walletID, "currency", currencyCode)
}

func (n *LogNavigator) ShowExchange(walletID, currencyCode string) {
	n.log.Info("navigate: exchange", "wallet", walletID, "currency", currencyCode)
}
