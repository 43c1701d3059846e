package config

import (
	"testing"
)

// FuzzParse tests config parsing with random inputs
// to find panics, crashes, or unexpected behavior
func FuzzParse(f *testing.F) {
	f.Add([]byte(validYAML))
	f.Add([]byte(`
vault:
  account: vault
  owner_spiffe_id: spiffe://example.org/owner
strategy:
  kind: rebasing
  account: s
  market_account: m
`))
	f.Add([]byte("vault: [1, 2"))

	f.Fuzz(func(t *testing.T, data []byte) {
		cfg, err := parse(data, noEnv)
		if err != nil {
			return
		}
		// Anything that parses and validates must convert.
		if _, err := cfg.ToPorts(); err != nil {
			t.Fatalf("validated config failed to convert: %v", err)
		}
	})
}

// FuzzParseExchangeRate checks that accepted rates are positive.
func FuzzParseExchangeRate(f *testing.F) {
	f.Add("1")
	f.Add("0.02")
	f.Add("1e-18")
	f.Add("-3")

	f.Fuzz(func(t *testing.T, s string) {
		rate, err := parseExchangeRate(s)
		if err == nil && rate == 0 {
			t.Fatalf("parseExchangeRate(%q) accepted a zero rate", s)
		}
	})
}
