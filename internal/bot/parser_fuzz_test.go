package bot

import (
	"strings"
	"testing"
)

func FuzzParseAmount(f *testing.F) {
	// Seed corpus with valid amounts.
	f.Add("100")
	f.Add("+100")
	f.Add("-30")
	f.Add("12.50")
	f.Add("-0.01")
	f.Add("0")

	// Seed corpus with rejects.
	f.Add("")
	f.Add("abc")
	f.Add("12.50 lunch")
	f.Add("5.5.5")
	f.Add("NaN")
	f.Add("Inf")
	f.Add("1e10")
	f.Add("+-5")
	f.Add("+")
	f.Add(".")
	f.Add("5,50")
	f.Add("   +42   ")

	f.Fuzz(func(t *testing.T, input string) {
		amount, ok := ParseAmount(input)

		// A rejected input must report a zero amount.
		if !ok && !amount.IsZero() {
			t.Errorf("ParseAmount(%q) = %v without ok", input, amount)
		}

		// An accepted input round-trips: the parsed amount re-reads
		// identically from the trimmed input.
		if ok {
			trimmed := strings.TrimSpace(input)
			if !amountRegex.MatchString(trimmed) {
				t.Errorf("ParseAmount(%q) accepted input the pattern rejects", input)
			}
		}
	})
}
