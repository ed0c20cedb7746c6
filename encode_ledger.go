package moredecimal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/etnz/moredecimal/date"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// RecordKind identifies the kind of a line in a book file.
type RecordKind string

const (
	KindSecurity    RecordKind = "security"
	KindAccount     RecordKind = "account"
	KindTransaction RecordKind = "txn"
)

// securityRecord is a specialized struct for decoding json.
type securityRecord struct {
	Name     string `json:"name"`
	Ticker   string `json:"ticker"`
	Currency string `json:"currency"`
	Decimals int    `json:"decimals"`
	Hidden   bool   `json:"hidden"`
}

type accountRecord struct {
	Name   string `json:"name"`
	Parent string `json:"parent"`
	Type   string `json:"type"`
}

type splitRecord struct {
	ID       string          `json:"id"`
	Account  string          `json:"account"`
	Shares   int64           `json:"shares"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func (s splitRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("id", s.ID)
	w.Append("account", s.Account)
	w.Append("shares", s.Shares)
	if !s.Amount.IsZero() {
		w.Append("amount", s.Amount)
	}
	w.Optional("currency", s.Currency)
	return w.MarshalJSON()
}

type txnRecord struct {
	ID          string        `json:"id"`
	Date        date.Date     `json:"date"`
	Description string        `json:"description"`
	Account     string        `json:"account"`
	Splits      []splitRecord `json:"splits"`
}

// DecodeLedger decodes a book from a stream of JSONL data. Each line holds one
// security, account or transaction; a record can only refer to records that
// come before it.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	ledger := NewLedger()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var identifier struct {
			Kind RecordKind `json:"kind"`
		}
		if err := json.Unmarshal(lineBytes, &identifier); err != nil {
			return nil, fmt.Errorf("line %d: could not identify record %q: %w", line, string(lineBytes), err)
		}

		var err error
		switch identifier.Kind {
		case KindSecurity:
			var rec securityRecord
			if err = json.Unmarshal(lineBytes, &rec); err == nil {
				err = ledger.AddSecurity(Security(rec))
			}
		case KindAccount:
			var rec accountRecord
			if err = json.Unmarshal(lineBytes, &rec); err == nil {
				var t AccountType
				if t, err = ParseAccountType(rec.Type); err == nil {
					err = ledger.AddAccount(Account{Name: rec.Name, Parent: rec.Parent, Type: t})
				}
			}
		case KindTransaction:
			var rec txnRecord
			if err = json.Unmarshal(lineBytes, &rec); err == nil {
				tx := Transaction{ID: rec.ID, Date: rec.Date, Description: rec.Description, Account: rec.Account}
				for _, s := range rec.Splits {
					tx.Splits = append(tx.Splits, Split{ID: s.ID, Account: s.Account, Shares: s.Shares, Amount: M(s.Amount, s.Currency)})
				}
				err = ledger.AddTransaction(tx)
			}
		default:
			err = fmt.Errorf("unknown record kind %q", identifier.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ledger, nil
}

// EncodeLedger writes the ledger as JSONL in a canonical form: securities,
// then accounts, then transactions, each with a fixed field order.
func EncodeLedger(w io.Writer, ledger *Ledger) error {
	bw := bufio.NewWriter(w)
	write := func(v json.Marshaler) error {
		b, err := v.MarshalJSON()
		if err != nil {
			return err
		}
		bw.Write(b)
		return bw.WriteByte('\n')
	}

	for _, s := range ledger.securities {
		var o jsonObjectWriter
		o.Append("kind", KindSecurity)
		o.Append("name", s.Name)
		o.Optional("ticker", s.Ticker)
		o.Optional("currency", s.Currency)
		o.Append("decimals", s.Decimals)
		o.Optional("hidden", s.Hidden)
		if err := write(&o); err != nil {
			return fmt.Errorf("security %q: %w", s.Name, err)
		}
	}
	for _, a := range ledger.accounts {
		var o jsonObjectWriter
		o.Append("kind", KindAccount)
		o.Append("name", a.Name)
		o.Optional("parent", a.Parent)
		o.Append("type", a.Type.String())
		if err := write(&o); err != nil {
			return fmt.Errorf("account %q: %w", a.FullName(), err)
		}
	}
	for _, t := range ledger.transactions {
		splits := make([]splitRecord, len(t.Splits))
		for i, s := range t.Splits {
			splits[i] = splitRecord{ID: s.ID, Account: s.Account, Shares: s.Shares, Amount: s.Amount.Decimal(), Currency: s.Amount.Currency()}
		}
		var o jsonObjectWriter
		o.Append("kind", KindTransaction)
		o.Append("id", t.ID)
		o.Append("date", t.Date)
		o.Optional("description", t.Description)
		o.Optional("account", t.Account)
		o.Append("splits", splits)
		if err := write(&o); err != nil {
			return fmt.Errorf("transaction %q: %w", t.ID, err)
		}
	}
	return bw.Flush()
}
