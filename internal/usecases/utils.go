package usecases

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	domainerrors "payroll-chain.backend/internal/domain/errors"
)

// USDCDecimals is the on-chain precision of USDC.
const USDCDecimals = 6

// amountPattern accepts a non-negative decimal with at most six fractional
// digits. Scientific notation, signs and leading dots are rejected.
var amountPattern = regexp.MustCompile(`^\d+(\.\d{1,6})?$`)

// ParseAmount validates and parses a USDC display amount. The zero amount
// is rejected because no operation in the system pays nothing.
func ParseAmount(s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	if !amountPattern.MatchString(trimmed) {
		return decimal.Zero, fmt.Errorf("%w: amount %q must be a positive decimal with at most %d fractional digits",
			domainerrors.ErrInvalidInput, s, USDCDecimals)
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q", domainerrors.ErrInvalidInput, s)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be greater than zero", domainerrors.ErrInvalidInput)
	}
	return d, nil
}

// FormatAmount renders a decimal in canonical display form, trailing zeros
// preserved as entered by normalizing to at most six places.
func FormatAmount(d decimal.Decimal) string {
	return d.String()
}

// ToMinorUnits converts a display amount into USDC base units.
func ToMinorUnits(d decimal.Decimal) *big.Int {
	return d.Shift(USDCDecimals).BigInt()
}

// FromMinorUnits converts USDC base units into a display amount.
func FromMinorUnits(raw *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(raw, -USDCDecimals)
}

// SumAmounts adds a list of validated display amounts exactly.
func SumAmounts(amounts []string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, a := range amounts {
		d, err := ParseAmount(a)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(d)
	}
	return total, nil
}
