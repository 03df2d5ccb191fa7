package bot

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Command names the dispatcher recognizes. Anything else is silently
// ignored, which keeps the bot quiet when people chat near it.
const (
	CommandStart   = "/start"
	CommandCreate  = "create"
	CommandJoin    = "join"
	CommandLeave   = "leave"
	CommandBand    = "band"
	CommandStatus  = "status"
	CommandHelp    = "help"
	CommandHistory = "history"

	// CommandTransaction is synthetic: the parser produces it whenever the
	// message starts with a number instead of a keyword.
	CommandTransaction = "transaction"
)

// ErrEmptyInput is returned for messages with no tokens at all.
var ErrEmptyInput = errors.New("empty input")

// Command is the parsed form of an incoming message.
type Command struct {
	// Name is the command keyword, or CommandTransaction for numeric input.
	Name string

	// Args are the tokens following the keyword.
	Args []string

	// Amount and Comment are set only for CommandTransaction. Amount is the
	// raw user-entered value, not yet halved.
	Amount  float64
	Comment string
}

// ParseMessage turns raw message text into a Command.
//
// The text is lower-cased and split on whitespace runs (spaces, tabs,
// newlines; empty tokens are skipped). A numeric first token classifies the
// message as a new transaction: the number is the amount and the rest of the
// tokens, joined by single spaces, become the comment. Any other first token
// is the command keyword with the remaining tokens as arguments.
//
// ParseFloat also accepts "inf" and "nan"; those are not amounts and take
// the keyword path instead.
func ParseMessage(text string) (Command, error) {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return Command{}, ErrEmptyInput
	}

	if amount, err := strconv.ParseFloat(words[0], 64); err == nil && !math.IsInf(amount, 0) && !math.IsNaN(amount) {
		return Command{
			Name:    CommandTransaction,
			Amount:  amount,
			Comment: strings.Join(words[1:], " "),
		}, nil
	}

	return Command{Name: words[0], Args: words[1:]}, nil
}
