// Package bot contains the command parser and the dispatcher that turns
// parsed commands into band operations and outbound messages.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/behalfbot/behalf/internal/band"
	"github.com/behalfbot/behalf/internal/models"
)

// DefaultHistoryLimit is how many transactions the history command shows
// unless configured otherwise.
const DefaultHistoryLimit = 10

// Messenger delivers a text message to a user identified by their chat
// handle. The Telegram client implements it; tests use a capturing fake.
type Messenger interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Dispatcher maps parsed commands to handlers. It is stateless per
// invocation: every incoming message is handled independently and the only
// persistent state lives in storage behind the band manager.
type Dispatcher struct {
	bands        *band.Manager
	messenger    Messenger
	historyLimit int
}

// NewDispatcher creates a Dispatcher. historyLimit <= 0 falls back to
// DefaultHistoryLimit.
func NewDispatcher(bands *band.Manager, messenger Messenger, historyLimit int) *Dispatcher {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Dispatcher{
		bands:        bands,
		messenger:    messenger,
		historyLimit: historyLimit,
	}
}

// HandleMessage parses the raw text and runs the matching handler. The
// sender has already been resolved to a User by the transport. It always
// acknowledges the message: domain errors become reply text, storage errors
// become a generic apology, unknown keywords stay silent.
func (d *Dispatcher) HandleMessage(ctx context.Context, user *models.User, text string) bool {
	cmd, err := ParseMessage(text)
	if err != nil {
		d.deliver(ctx, user, replyDidNotCatch)
		return true
	}

	switch cmd.Name {
	case CommandStart, "start":
		d.handleStart(ctx, user)
	case CommandCreate:
		d.handleCreate(ctx, user)
	case CommandJoin:
		d.handleJoin(ctx, user, cmd.Args)
	case CommandLeave:
		d.handleLeave(ctx, user)
	case CommandBand:
		d.handleBandInfo(ctx, user)
	case CommandStatus:
		d.handleStatus(ctx, user)
	case CommandHelp:
		d.handleHelp(ctx, user)
	case CommandHistory:
		d.handleHistory(ctx, user)
	case CommandTransaction:
		d.handleTransaction(ctx, user, cmd.Amount, cmd.Comment)
	default:
		// Unknown keywords get no reply at all. They never reach the
		// labeled counter either: user-typed words must not mint new
		// label values.
		unknownCommands.Inc()
		return true
	}

	commandsHandled.WithLabelValues(cmd.Name).Inc()
	return true
}

func (d *Dispatcher) handleStart(ctx context.Context, user *models.User) {
	d.deliver(ctx, user, replyWelcome)
	d.handleHelp(ctx, user)
}

func (d *Dispatcher) handleCreate(ctx context.Context, user *models.User) {
	messages := []string{replyBandCreated}

	b, err := d.bands.CreateBand(ctx, user)
	var already *band.AlreadyInBandError
	switch {
	case errors.As(err, &already):
		// Reuse the existing band's code instead of failing the
		// interaction.
		b = already.Band
		messages = []string{replyAlreadyInBand}
	case err != nil:
		d.internalError(ctx, user, "create band", err)
		return
	}

	messages = append(messages, fmt.Sprintf(replyBandCode, b.ID))
	d.deliver(ctx, user, messages...)
}

func (d *Dispatcher) handleJoin(ctx context.Context, user *models.User, args []string) {
	if len(args) == 0 {
		d.deliver(ctx, user, replyJoinUsage)
		return
	}

	// Join codes are stored uppercase, the parser lower-cases everything.
	code := strings.ToUpper(args[0])

	b, err := d.bands.JoinBand(ctx, code, user)
	var already *band.AlreadyInBandError
	switch {
	case errors.As(err, &already):
		d.deliver(ctx, user, replyAlreadyInBand)
		return
	case errors.Is(err, band.ErrBandNotExist):
		d.deliver(ctx, user, replyBandNotExist)
		return
	case errors.Is(err, band.ErrBandFull):
		d.deliver(ctx, user, replyBandFull)
		return
	case err != nil:
		d.internalError(ctx, user, "join band", err)
		return
	}

	partner, err := d.bands.Partner(ctx, user)
	if err != nil {
		slog.Error("Partner lookup after join failed", "band_id", b.ID, "error", err)
	}

	messages := []string{replyJoined}
	if partner != nil {
		messages = append(messages, fmt.Sprintf(replyPartnerIntro, partner.Name))
		d.deliver(ctx, partner, replyPartnerJoined, fmt.Sprintf(replyPartnerIntro, user.Name))
	}
	d.deliver(ctx, user, messages...)
}

func (d *Dispatcher) handleLeave(ctx context.Context, user *models.User) {
	// Capture the partner before leaving, afterwards the membership is gone.
	partner, err := d.bands.Partner(ctx, user)
	if errors.Is(err, band.ErrNotInBand) {
		d.deliver(ctx, user, replyNotInBand)
		return
	}
	if err != nil {
		d.internalError(ctx, user, "leave band", err)
		return
	}

	if _, err := d.bands.LeaveBand(ctx, user); err != nil {
		if errors.Is(err, band.ErrNotInBand) {
			d.deliver(ctx, user, replyNotInBand)
			return
		}
		d.internalError(ctx, user, "leave band", err)
		return
	}

	d.deliver(ctx, user, replyLeft)
	if partner != nil {
		d.deliver(ctx, partner, replyPartnerLeft)
	}
}

func (d *Dispatcher) handleBandInfo(ctx context.Context, user *models.User) {
	if !user.InBand() {
		d.deliver(ctx, user, replyNotInBand)
		return
	}

	partner, err := d.bands.Partner(ctx, user)
	if err != nil {
		d.internalError(ctx, user, "band info", err)
		return
	}

	messages := []string{fmt.Sprintf(replyBandInfo, user.BandID)}
	if partner != nil {
		messages = append(messages, fmt.Sprintf(replyBandPartner, partner.Name))
	} else {
		messages = append(messages, replyBandSolo)
	}
	d.deliver(ctx, user, messages...)
}

func (d *Dispatcher) handleStatus(ctx context.Context, user *models.User) {
	balance, err := d.bands.Balance(ctx, user)
	if errors.Is(err, band.ErrNotInBand) {
		d.deliver(ctx, user, replyStatusNoBand)
		return
	}
	if err != nil {
		d.internalError(ctx, user, "status", err)
		return
	}

	switch {
	case balance == 0:
		d.deliver(ctx, user, replyStatusEven)
	case balance > 0:
		d.deliver(ctx, user, fmt.Sprintf(replyStatusOwed, formatAmount(balance)))
	default:
		d.deliver(ctx, user, fmt.Sprintf(replyStatusOwe, formatAmount(-balance)))
	}
}

func (d *Dispatcher) handleHelp(ctx context.Context, user *models.User) {
	d.deliver(ctx, user,
		fmt.Sprintf(replyHelpCommands, d.historyLimit),
		replyHelpTransactions,
	)
}

func (d *Dispatcher) handleHistory(ctx context.Context, user *models.User) {
	txs, err := d.bands.History(ctx, user, d.historyLimit)
	if errors.Is(err, band.ErrNotInBand) {
		d.deliver(ctx, user, replyNotInBand)
		return
	}
	if err != nil {
		d.internalError(ctx, user, "history", err)
		return
	}

	// The store returns newest first; the chat reads top to bottom, so
	// reverse into chronological order.
	messages := make([]string, 0, len(txs))
	for i := len(txs) - 1; i >= 0; i-- {
		tx := txs[i]
		messages = append(messages, formatEntry(tx.Amount, tx.Comment, tx.UserID == user.ID))
	}
	d.deliver(ctx, user, messages...)
}

func (d *Dispatcher) handleTransaction(ctx context.Context, user *models.User, amount float64, comment string) {
	tx, err := d.bands.CreateTransaction(ctx, user, amount/2, comment)
	switch {
	case errors.Is(err, band.ErrNotInBand):
		d.deliver(ctx, user, replyNotInBand)
		return
	case errors.Is(err, band.ErrNoPartner):
		d.deliver(ctx, user, replyNoPartner)
		return
	case err != nil:
		d.internalError(ctx, user, "new transaction", err)
		return
	}

	partner, err := d.bands.Partner(ctx, user)
	if err != nil {
		slog.Error("Partner lookup after transaction failed", "band_id", tx.BandID, "error", err)
	} else if partner == nil {
		slog.Warn("Partner left before notification", "band_id", tx.BandID)
	}

	d.deliver(ctx, user, fmt.Sprintf(replyNewTransaction, formatEntry(tx.Amount, tx.Comment, true)))
	if partner != nil {
		d.deliver(ctx, partner, fmt.Sprintf(replyNewTransaction, formatEntry(tx.Amount, tx.Comment, false)))
	}
}

// deliver fans the messages out to the recipient, logging delivery failures
// and carrying on. A failed send to one recipient never rolls back messages
// already delivered to another; there is no atomicity across the fan-out.
func (d *Dispatcher) deliver(ctx context.Context, to *models.User, messages ...string) {
	for _, msg := range messages {
		if err := d.messenger.Send(ctx, to.ChatID, msg); err != nil {
			sendFailures.Inc()
			slog.Error("Message delivery failed",
				"chat_id", to.ChatID,
				"user_id", to.ID,
				"error", err,
			)
		}
	}
}

// internalError logs a storage-level failure and apologizes to the user.
func (d *Dispatcher) internalError(ctx context.Context, user *models.User, op string, err error) {
	slog.Error("Command failed", "op", op, "user_id", user.ID, "error", err)
	d.deliver(ctx, user, replySomethingWrong)
}
