package transaction

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mrz1836/dcrvault/internal/chain"
	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

// ParseMultiSendInput parses newline separated "address,amount" lines.
// Amounts are coins and are floored to whole atoms. Blank lines are
// skipped.
func ParseMultiSendInput(input string) ([]Output, error) {
	var outputs []Output
	for i, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		address, amount, err := splitMultiSendLine(line, i+1)
		if err != nil {
			return nil, err
		}
		atoms := chain.FloorAtoms(amount)
		if atoms <= 0 {
			return nil, lineError(i+1, "amount must be positive")
		}
		outputs = append(outputs, Output{Address: address, Atoms: atoms})
	}
	if len(outputs) == 0 {
		return nil, vaulterr.WithSuggestion(vaulterr.ErrValidation, "enter one address,amount pair per line")
	}
	return outputs, nil
}

// SumMultiSend returns the total coin amount of a multi-send block.
func SumMultiSend(input string) (decimal.Decimal, error) {
	total := decimal.Zero
	for i, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		_, amount, err := splitMultiSendLine(line, i+1)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(amount)
	}
	return total, nil
}

func splitMultiSendLine(line string, lineNo int) (string, decimal.Decimal, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 2 {
		return "", decimal.Zero, lineError(lineNo, "expected address,amount")
	}
	address := strings.TrimSpace(parts[0])
	if address == "" {
		return "", decimal.Zero, lineError(lineNo, "missing address")
	}
	amount, err := chain.ParseCoin(parts[1])
	if err != nil {
		return "", decimal.Zero, lineError(lineNo, "amount is not a number")
	}
	return address, amount, nil
}

func lineError(lineNo int, reason string) error {
	return vaulterr.WithDetails(vaulterr.ErrValidation, map[string]string{
		"line":   strconv.Itoa(lineNo),
		"reason": reason,
	})
}
