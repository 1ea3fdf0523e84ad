package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

func parsePercent(value string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("percent is required for percentage benefits")
	}
	percent, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing percent %q: %w", trimmed, err)
	}
	if percent.IsNegative() {
		return decimal.Zero, fmt.Errorf("percent must be non-negative, got %s", percent)
	}
	return percent, nil
}
