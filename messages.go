package moredecimal

import "github.com/etnz/moredecimal/date"

// Key identifies a message of the catalog.
type Key string

// Messages emitted by the decimal changer, with their arguments.
const (
	// security name, decimal count
	MsgAlreadyScaled Key = "already-scaled"
	// account full name, entry
	MsgUnexpectedEntry Key = "unexpected-entry"
	// transaction count, investment account name
	MsgStaged Key = "staged"
	// error text, target decimal count, account full name, local date
	MsgValidationFailure Key = "validation-failure"
	// transactions, plural suffix, accounts, plural suffix, security name, decimal count
	MsgCommitSummary Key = "commit-summary"
	// security name, staged decimal count, current decimal count
	MsgStaleStaging Key = "stale-staging"
	MsgNothingStaged Key = "nothing-staged"
)

// Catalog formats localized messages.
type Catalog interface {
	// Sprintf formats the message registered under key. An unknown key is
	// used as the format itself.
	Sprintf(key Key, args ...any) string
	// Date formats a day in the catalog's locale.
	Date(d date.Date) string
	// Plural returns the plural marker for n, empty when n == 1.
	Plural(n int) string
}

// Sink receives the messages for the user.
type Sink interface {
	AddText(text string)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(text string)

func (f SinkFunc) AddText(text string) { f(text) }

// reporter writes catalog messages to a sink.
type reporter struct {
	catalog Catalog
	sink    Sink
}

func (r reporter) writeFormatted(key Key, args ...any) {
	r.sink.AddText(r.catalog.Sprintf(key, args...))
}
