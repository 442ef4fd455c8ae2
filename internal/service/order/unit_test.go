package order

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/errors"
	"github.com/dumeirei/kitchen-pos-backend/internal/models"
	"github.com/dumeirei/kitchen-pos-backend/internal/testutil"
)

func TestFormatOrderNumber(t *testing.T) {
	assert.Equal(t, "20240301-0001", FormatOrderNumber("2024-03-01", 1))
	assert.Equal(t, "20240301-0042", FormatOrderNumber("2024-03-01", 42))
	assert.Equal(t, "20240301-12345", FormatOrderNumber("2024-03-01", 12345))
}

func TestParseSequence(t *testing.T) {
	n, ok := ParseSequence("20240301-0042")
	require.True(t, ok)
	assert.Equal(t, 42, n)

	for _, bad := range []string{"", "20240301", "20240301-", "20240301-x1"} {
		_, ok := ParseSequence(bad)
		assert.False(t, ok, bad)
	}
}

func TestBusinessDate(t *testing.T) {
	shanghai, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)

	ts := time.Date(2024, 3, 1, 20, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-01", BusinessDate(ts, time.UTC))
	assert.Equal(t, "2024-03-02", BusinessDate(ts, shanghai))
	assert.Equal(t, "2024-03-01", BusinessDate(ts, nil))
}

func TestValidateItemShape(t *testing.T) {
	one := int64(1)
	zero := int64(0)

	assert.NoError(t, ValidateItemShape(&one, nil, 1, models.OrderStatusPending))
	assert.NoError(t, ValidateItemShape(nil, &one, 2, models.OrderStatusServed))
	assert.ErrorIs(t, ValidateItemShape(&one, &one, 1, models.OrderStatusPending), errors.ErrOrderItemRefInvalid)
	assert.ErrorIs(t, ValidateItemShape(nil, nil, 1, models.OrderStatusPending), errors.ErrOrderItemRefInvalid)
	assert.ErrorIs(t, ValidateItemShape(&zero, nil, 1, models.OrderStatusPending), errors.ErrOrderItemRefInvalid)
	assert.ErrorIs(t, ValidateItemShape(&one, nil, -1, models.OrderStatusPending), errors.ErrOrderItemQuantity)
	assert.ErrorIs(t, ValidateItemShape(&one, nil, 1, "lost"), errors.ErrOrderItemStatus)
}

func TestCustomerStatsEffect(t *testing.T) {
	tests := []struct {
		from, to string
		want     StatsEffect
	}{
		{models.OrderStatusPending, models.OrderStatusServed, StatsAdd},
		{models.OrderStatusCancelled, models.OrderStatusServed, StatsAdd},
		{models.OrderStatusServed, models.OrderStatusCancelled, StatsRemove},
		{models.OrderStatusServed, models.OrderStatusServed, StatsNone},
		{models.OrderStatusServed, models.OrderStatusPending, StatsNone},
		{models.OrderStatusPending, models.OrderStatusCancelled, StatsNone},
		{models.OrderStatusPreparing, models.OrderStatusReady, StatsNone},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, CustomerStatsEffect(tt.from, tt.to))
		})
	}
}

func TestComputeTotals(t *testing.T) {
	items := []models.OrderItem{
		{TotalPrice: testutil.Money("10.00")},
		{TotalPrice: testutil.Money("5.55")},
	}
	rate := decimal.NewFromFloat(0.08)

	got, err := ComputeTotals(items, nil, decimal.Zero, rate)
	require.NoError(t, err)
	assert.True(t, got.Subtotal.Equal(testutil.Money("15.55")))
	assert.True(t, got.Tax.Equal(testutil.Money("1.24")), got.Tax.String())
	assert.True(t, got.Total.Equal(testutil.Money("16.79")))

	tax := testutil.Money("2.00")
	got, err = ComputeTotals(items, &tax, testutil.Money("0.55"), rate)
	require.NoError(t, err)
	assert.True(t, got.Total.Equal(testutil.Money("17.00")))

	negative := testutil.Money("-1")
	_, err = ComputeTotals(items, &negative, decimal.Zero, rate)
	assert.ErrorIs(t, err, errors.ErrOrderAmountInvalid)

	_, err = ComputeTotals(items, nil, negative, rate)
	assert.ErrorIs(t, err, errors.ErrOrderAmountInvalid)

	_, err = ComputeTotals(items, &tax, testutil.Money("18.00"), rate)
	assert.ErrorIs(t, err, errors.ErrOrderAmountInvalid)

	empty, err := ComputeTotals(nil, nil, decimal.Zero, rate)
	require.NoError(t, err)
	assert.True(t, empty.Total.IsZero())
}
