// Package renderer renders books and reports as markdown.
package renderer

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/etnz/moredecimal"
	md "github.com/nao1215/markdown"
)

// SecuritiesMarkdown renders the list of securities with their decimal places.
func SecuritiesMarkdown(securities []moredecimal.Security) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Securities")
	if len(securities) == 0 {
		doc.PlainText("No securities.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Security", "Ticker", "Currency", "Decimals", "Smallest Unit"},
		Rows:   [][]string{},
	}
	for _, s := range securities {
		name := s.Name
		if s.Hidden {
			name += " (hidden)"
		}
		table.Rows = append(table.Rows, []string{
			name,
			s.Ticker,
			s.Currency,
			strconv.Itoa(s.Decimals),
			moredecimal.FormatShares(1, s.Decimals),
		})
	}
	doc.Table(table)
	return doc.String()
}

// ReportMarkdown renders where a security is held.
func ReportMarkdown(r moredecimal.Report) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	sec := r.Security
	doc.H1(fmt.Sprintf("Positions in %s", sec.Name))
	doc.PlainText(fmt.Sprintf("%s is stored with %s decimal places.", md.Bold(sec.Name), md.Code(strconv.Itoa(sec.Decimals))))

	if len(r.Positions) == 0 {
		doc.PlainText("No investment account holds this security.")
		return doc.String()
	}

	places := int32(sec.Decimals)
	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Account", "Shares", "Entries", "Cost"},
		Rows:   [][]string{},
	}
	for _, p := range r.Positions {
		table.Rows = append(table.Rows, []string{
			p.Account,
			p.Shares.StringFixed(places),
			strconv.Itoa(p.Entries),
			p.Cost.String(),
		})
	}
	table.Rows = append(table.Rows, []string{
		md.Bold("Total"),
		r.Total.StringFixed(places),
		"",
		r.Cost.String(),
	})
	doc.Table(table)
	return doc.String()
}
