package pricing

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentacar-backend/internal/domain"
)

func TestBillableDays(t *testing.T) {
	start := civil.Date{Year: 2024, Month: time.January, Day: 1}

	t.Run("Return day is not billed", func(t *testing.T) {
		days, err := BillableDays(start, start.AddDays(5))
		assert.NoError(t, err)
		assert.Equal(t, 5, days)
	})

	t.Run("Same day", func(t *testing.T) {
		days, err := BillableDays(start, start)
		assert.NoError(t, err)
		assert.Equal(t, 0, days)
	})

	t.Run("Crosses leap day", func(t *testing.T) {
		feb28 := civil.Date{Year: 2024, Month: time.February, Day: 28}
		mar1 := civil.Date{Year: 2024, Month: time.March, Day: 1}
		days, err := BillableDays(feb28, mar1)
		assert.NoError(t, err)
		assert.Equal(t, 2, days)
	})

	t.Run("End before start", func(t *testing.T) {
		_, err := BillableDays(start, start.AddDays(-1))
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestTax(t *testing.T) {
	tests := []struct {
		subtotal int64
		expected int64
	}{
		{0, 0},
		{100, 19},
		{1_900_000, 361_000},
		{3, 1},   // 0.57 rounds up
		{2, 0},   // 0.38 rounds down
		{50, 10}, // 9.5 rounds half up
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			assert.Equal(t, tt.expected, Tax(tt.subtotal))
		})
	}
}

func TestCompute(t *testing.T) {
	day1 := civil.Date{Year: 2024, Month: time.March, Day: 1}

	t.Run("Nineteen days without discount", func(t *testing.T) {
		b, err := Compute(100_000, day1, day1.AddDays(19), NoDiscount())
		require.NoError(t, err)
		assert.Equal(t, int32(19), b.Days)
		assert.Equal(t, int64(1_900_000), b.Subtotal)
		assert.Equal(t, int64(361_000), b.Tax)
		assert.Equal(t, int64(2_261_000), b.GrossTotal)
		assert.Equal(t, int64(0), b.Discount)
		assert.Equal(t, int64(2_261_000), b.NetTotal)
		assert.Equal(t, DiscountNone, b.Kind)
	})

	t.Run("Deterministic", func(t *testing.T) {
		a, err := Compute(100_000, day1, day1.AddDays(19), Percent(10))
		require.NoError(t, err)
		b, err := Compute(100_000, day1, day1.AddDays(19), Percent(10))
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("Percent discount applies to gross total", func(t *testing.T) {
		b, err := Compute(100_000, day1, day1.AddDays(2), Percent(10))
		require.NoError(t, err)
		// subtotal 200000, tax 38000, gross 238000, 10% = 23800
		assert.Equal(t, int64(238_000), b.GrossTotal)
		assert.Equal(t, int64(23_800), b.Discount)
		assert.Equal(t, int64(214_200), b.NetTotal)
	})

	t.Run("Amount discount", func(t *testing.T) {
		b, err := Compute(100_000, day1, day1.AddDays(2), Amount(38_000))
		require.NoError(t, err)
		assert.Equal(t, int64(38_000), b.Discount)
		assert.Equal(t, int64(200_000), b.NetTotal)
	})

	t.Run("Net total never negative", func(t *testing.T) {
		b, err := Compute(100_000, day1, day1.AddDays(1), Amount(10_000_000))
		require.NoError(t, err)
		assert.Equal(t, int64(0), b.NetTotal)
		assert.Equal(t, int64(10_000_000), b.Discount)
	})

	t.Run("End before start rejected", func(t *testing.T) {
		_, err := Compute(100_000, day1, day1.AddDays(-3), NoDiscount())
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Invalid percent rejected", func(t *testing.T) {
		_, err := Compute(100_000, day1, day1.AddDays(3), Percent(120))
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Negative amount rejected", func(t *testing.T) {
		_, err := Compute(100_000, day1, day1.AddDays(3), Amount(-1))
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestDiscountExclusivity(t *testing.T) {
	d := NoDiscount().WithAmount(50_000)
	assert.Equal(t, DiscountAmount, d.Kind())

	d = d.WithPercent(15)
	assert.Equal(t, DiscountPercent, d.Kind())
	assert.Equal(t, 15.0, d.Value())

	// The absolute amount is gone: pricing uses the percentage only
	day1 := civil.Date{Year: 2024, Month: time.March, Day: 1}
	b, err := Compute(100_000, day1, day1.AddDays(1), d)
	require.NoError(t, err)
	assert.Equal(t, int64(17_850), b.Discount) // 15% of 119000

	d = d.WithAmount(1_000)
	assert.Equal(t, DiscountAmount, d.Kind())
	assert.Equal(t, 1_000.0, d.Value())
}

func TestDiscountFrom(t *testing.T) {
	d, err := DiscountFrom("percent", 12.5)
	assert.NoError(t, err)
	assert.Equal(t, DiscountPercent, d.Kind())

	d, err = DiscountFrom("", 0)
	assert.NoError(t, err)
	assert.Equal(t, DiscountNone, d.Kind())

	var zero Discount
	assert.Equal(t, DiscountNone, zero.Kind())

	_, err = DiscountFrom("coupon", 1)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestComputeForRange(t *testing.T) {
	bogota, err := time.LoadLocation("America/Bogota")
	require.NoError(t, err)

	// 23:00 local on the 1st is already the 2nd in UTC; civil dates follow the business zone
	start := time.Date(2024, time.March, 1, 23, 0, 0, 0, bogota)
	end := time.Date(2024, time.March, 4, 9, 0, 0, 0, bogota)

	b, err := ComputeForRange(100_000, start.UTC(), end.UTC(), bogota, NoDiscount())
	require.NoError(t, err)
	assert.Equal(t, int32(3), b.Days)
}
