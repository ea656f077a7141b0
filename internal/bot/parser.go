package bot

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// amountRegex matches a whole message that is exactly one signed number,
// like "100", "+5", "-30.25". Anything else is not a transaction.
var amountRegex = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)

// ParseAmount parses a free-text message as a signed transaction amount.
// Returns the amount and true only when the entire message is a valid
// number; otherwise ok is false and no transaction may be recorded.
func ParseAmount(input string) (decimal.Decimal, bool) {
	input = strings.TrimSpace(input)
	if input == "" || !amountRegex.MatchString(input) {
		return decimal.Zero, false
	}

	amount, err := decimal.NewFromString(input)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}
