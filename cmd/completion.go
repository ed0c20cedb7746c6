package cmd

import (
	"context"
	"flag"
	"strconv"

	"github.com/etnz/moredecimal"
	"github.com/etnz/moredecimal/catalog"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Complete runs the shell completion of the mdc command when the shell asks
// for it, and exits. It returns immediately otherwise.
func Complete(name string) {
	completion(flag.CommandLine).Complete(name)
}

// completion describes the mdc command line for the shell.
func completion(flags *flag.FlagSet) *complete.Command {
	books := predict.Or(
		predict.Files("*.jsonl"),
		predict.Files("*.db"),
		predict.Files("*.sqlite"),
		predict.Files("*.sqlite3"),
	)
	securities := complete.PredictFunc(func(prefix string) []string {
		return securityNames(flags)
	})
	decimals := make(predict.Set, 0, moredecimal.MaxDecimals+1)
	for i := 0; i <= moredecimal.MaxDecimals; i++ {
		decimals = append(decimals, strconv.Itoa(i))
	}

	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"book":   books,
			"locale": predict.Set(catalog.Locales()),
			"config": predict.Files("*.toml"),
		},
		Sub: map[string]*complete.Command{
			"securities": {
				Flags: map[string]complete.Predictor{
					"s":   securities,
					"raw": predict.Nothing,
				},
			},
			"decimals": {
				Flags: map[string]complete.Predictor{
					"s": securities,
					"n": decimals,
				},
			},
			"tui":       {},
			"serve-mcp": {},
			"convert": {
				Flags: map[string]complete.Predictor{"o": books},
			},
			"format-book": {
				Flags: map[string]complete.Predictor{"o": predict.Files("*.jsonl")},
			},
			"help":     {},
			"commands": {},
			"flags":    {},
		},
	}
}

// securityNames returns the names of the securities in the configured book,
// or nothing when the book cannot be read.
func securityNames(flags *flag.FlagSet) []string {
	if err := Configure(flags); err != nil {
		return nil
	}
	ctx := context.Background()
	b, err := openBook(ctx, *bookPath)
	if err != nil {
		return nil
	}
	defer b.Close()
	securities, err := moredecimal.Selectable(ctx, b.Book)
	if err != nil {
		return nil
	}
	names := make([]string, len(securities))
	for i, s := range securities {
		names[i] = s.Name
	}
	return names
}
