// Package moredecimal changes the number of decimal places a security is
// quoted with in a personal-finance book, without losing a single share.
//
// Share quantities are stored as integers in units of 10^-decimals share. When
// the number of decimal places of a security changes, every quantity booked
// against it must be multiplied or divided by a power of ten. A Changer does it
// in two phases:
//   - ChangeDecimals scans every investment account holding the security and
//     checks that each split, and the running balance at each split date, can
//     be rescaled exactly. Validated splits are staged.
//   - Commit applies the staged changes: the security's decimal places first,
//     then every staged split. Either all of them are applied or none.
//
// The book itself is abstracted by the Book interface. Ledger is an in-memory
// Book persisted as JSONL; the sqlitebook package provides a SQLite one.
//
// This package serves as the foundational logic for the `mdc` command-line
// tool, its terminal user interface and its MCP server.
package moredecimal
