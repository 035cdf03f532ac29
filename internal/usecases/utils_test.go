package usecases_test

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "payroll-chain.backend/internal/domain/errors"
	"payroll-chain.backend/internal/usecases"
)

func TestParseAmount(t *testing.T) {
	valid := []string{"10", "10.5", "10.123456", "0.000001", " 25 "}
	for _, s := range valid {
		t.Run("valid "+s, func(t *testing.T) {
			d, err := usecases.ParseAmount(s)
			require.NoError(t, err)
			assert.True(t, d.IsPositive())
		})
	}

	invalid := []string{"", "0", "0.000000", "-1", "+1", ".5", "10.", "10.1234567", "1e5", "ten", "10,5"}
	for _, s := range invalid {
		t.Run("invalid "+s, func(t *testing.T) {
			_, err := usecases.ParseAmount(s)
			assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
		})
	}
}

func TestMinorUnitConversion(t *testing.T) {
	d, err := usecases.ParseAmount("12.345678")
	require.NoError(t, err)

	minor := usecases.ToMinorUnits(d)
	assert.Equal(t, big.NewInt(12_345_678), minor)

	back := usecases.FromMinorUnits(minor)
	assert.True(t, d.Equal(back))
	assert.Equal(t, "12.345678", usecases.FormatAmount(back))
}

func TestSumAmounts_Exact(t *testing.T) {
	// 0.1+0.2 style sums must not pick up float error.
	total, err := usecases.SumAmounts([]string{"0.1", "0.2", "0.3"})
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("0.6")))
	assert.Equal(t, "0.6", usecases.FormatAmount(total))
}

func TestSumAmounts_PropagatesBadAmount(t *testing.T) {
	_, err := usecases.SumAmounts([]string{"1", "nope"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}
