package bot

import (
	"fmt"
	"strconv"
)

// Reply texts. Everything the bot says lives here so the handlers stay
// readable and the wording can be reviewed in one place.
const (
	replyWelcome = "Hi! I'm behalf. I help you and a friend keep track of shared expenses."

	replyBandCreated    = "Band created."
	replyBandCode       = "Your join code is %s."
	replyAlreadyInBand  = "You are already in a band."
	replyJoinUsage      = "Send the join code with the command, e.g. \"join AB12CD34\"."
	replyBandNotExist   = "I can't find a band with that code."
	replyBandFull       = "That band already has two members."
	replyJoined         = "You joined the band."
	replyPartnerIntro   = "I'll help you and %s keep track of your expenses."
	replyPartnerJoined  = "Your friend joined the band."
	replyLeft           = "You left the band."
	replyPartnerLeft    = "Your friend left the band."
	replyNotInBand      = "You are not in a band."
	replyBandInfo       = "You are in a band. Your join code is %s."
	replyBandPartner    = "Your friend is %s."
	replyBandSolo       = "There is no one else in it yet."
	replyStatusNoBand   = "You are not in a band, so there is no status to report."
	replyStatusEven     = "All even. No one owes anyone."
	replyStatusOwed     = "Your friend owes you %s."
	replyStatusOwe      = "You owe your friend %s."
	replyNoPartner      = "You need a partner in your band before recording expenses."
	replyNewTransaction = "New transaction:\n%s"
	replyDidNotCatch    = "I didn't catch that. Send \"help\" for the list of commands."
	replySomethingWrong = "Something went wrong on my side, please try again."
)

const replyHelpCommands = `Available commands:

help
|| shows this list of commands;

create
|| creates a band and shows the join code to share with your friend;

join #
|| adds you to a band, # is the band's join code;

leave
|| removes you from your current band and notifies your friend;

band
|| shows your band's join code and members;

history
|| shows the last %d transactions;

status
|| shows who owes whom.`

const replyHelpTransactions = `To record an expense just send me the sum and an optional comment. The sum is split in half, the result is put on your friend's tab and they get a notification.

Example:

200 cookies

Your friend's tab grows by 100 and they get a notification with the comment "cookies".`

// formatAmount renders a monetary amount without trailing zeros, so halved
// sums read "12.5" rather than "12.500000".
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatEntry renders a single ledger line: "+ 100 (lunch)". The sign is +
// when the amount is credited to the reader, - when it is owed by them. The
// comment is appended in parentheses only when non-empty.
func formatEntry(amount float64, comment string, credited bool) string {
	sign := "-"
	if credited {
		sign = "+"
	}
	entry := fmt.Sprintf("%s %s", sign, formatAmount(amount))
	if comment != "" {
		entry += fmt.Sprintf(" (%s)", comment)
	}
	return entry
}
