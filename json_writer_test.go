package moredecimal

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestJsonObjectWriter(t *testing.T) {
	t.Run("empty object", func(t *testing.T) {
		var w jsonObjectWriter
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := "{}"; string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("field order", func(t *testing.T) {
		var w jsonObjectWriter
		w.Append("kind", KindSecurity)
		w.Append("name", "ACME")
		w.Append("decimals", 2)
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `{"kind":"security","name":"ACME","decimals":2}`
		if string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("optional fields", func(t *testing.T) {
		var w jsonObjectWriter
		w.Append("decimals", 0) // a zero value is actually added.
		w.Optional("ticker", "")
		w.Optional("hidden", false)
		w.Optional("parent", "Brokerage")
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `{"decimals":0,"parent":"Brokerage"}`
		if string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("decimal without quotes", func(t *testing.T) {
		var w jsonObjectWriter
		w.Append("amount", decimal.RequireFromString("150.25"))
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := `{"amount":150.25}`; string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})
}
