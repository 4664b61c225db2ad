package order_test

import (
	"encoding/json"
	"testing"
	"time"

	"tableorder/internal/core/domain/model/kernel"
	"tableorder/internal/core/domain/model/order"
	"tableorder/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(t *testing.T, s string) kernel.Money {
	t.Helper()

	m, err := kernel.MoneyFromString(s)
	require.NoError(t, err)
	return m
}

func item(t *testing.T, name, price string, quantity int) order.Item {
	t.Helper()

	it, err := order.NewItem(kernel.NewUUID(), name, money(t, price), quantity, "")
	require.NoError(t, err)
	return it
}

func newPendingOrder(t *testing.T) *order.Order {
	t.Helper()

	o, err := order.NewOrder(
		kernel.NewUUID(),
		"12",
		[]order.Item{item(t, "Burger", "10.00", 2), item(t, "Fries", "5.50", 1)},
		order.DefaultTaxPolicy(),
		order.Details{},
		time.Now(),
	)
	require.NoError(t, err)
	return o
}

func TestNewItem(t *testing.T) {
	t.Run("should build a line", func(t *testing.T) {
		id := kernel.NewUUID()

		it, err := order.NewItem(id, "Soup", money(t, "4.25"), 3, "no salt")

		require.NoError(t, err)
		assert.True(t, it.MenuItemID().IsEqual(id))
		assert.Equal(t, "Soup", it.Name())
		assert.Equal(t, 3, it.Quantity())
		assert.Equal(t, "no salt", it.Notes())
		assert.Equal(t, "12.75", it.LineTotal().String())
	})

	t.Run("should reject non-positive quantity", func(t *testing.T) {
		for _, q := range []int{0, -1} {
			_, err := order.NewItem(kernel.NewUUID(), "Soup", money(t, "4.25"), q, "")

			assert.ErrorIs(t, err, errs.ErrValidation)
		}
	})

	t.Run("should reject zero menu item id", func(t *testing.T) {
		_, err := order.NewItem(kernel.UUID{}, "Soup", money(t, "4.25"), 1, "")

		assert.ErrorIs(t, err, errs.ErrValidation)
	})
}

func TestNewOrder(t *testing.T) {
	t.Run("should create a pending order with derived totals", func(t *testing.T) {
		// Given
		id := kernel.NewUUID()
		now := time.Date(2026, 3, 1, 18, 30, 0, 0, time.UTC)
		details := order.Details{CustomerName: "Ann", Notes: "window seat", CreatedBy: "u-1"}

		// When
		o, err := order.NewOrder(
			id,
			" 12 ",
			[]order.Item{item(t, "A", "10.00", 2), item(t, "B", "5.50", 1)},
			order.DefaultTaxPolicy(),
			details,
			now,
		)

		// Then
		require.NoError(t, err)
		require.NoError(t, o.Validate())
		assert.True(t, o.ID().IsEqual(id))
		assert.Equal(t, "12", o.TableNumber())
		assert.Equal(t, details, o.Details())
		assert.Equal(t, order.Pending, o.Status())
		assert.Len(t, o.Items(), 2)
		assert.Equal(t, "25.50", o.Subtotal().String())
		assert.Equal(t, "2.04", o.Tax().String())
		assert.Equal(t, "27.54", o.Total().String())
		assert.Equal(t, now, o.CreatedAt())
		assert.Equal(t, now, o.UpdatedAt())
	})

	t.Run("should join every validation failure", func(t *testing.T) {
		o, err := order.NewOrder(kernel.UUID{}, "  ", nil, order.DefaultTaxPolicy(), order.Details{}, time.Now())

		require.Error(t, err)
		assert.Nil(t, o)
		assert.ErrorIs(t, err, errs.ErrValidation)
		assert.Contains(t, err.Error(), "table number")
		assert.Contains(t, err.Error(), "order items")
	})

	t.Run("should not alias the caller's slice", func(t *testing.T) {
		items := []order.Item{item(t, "A", "1.00", 1)}

		o, err := order.NewOrder(kernel.NewUUID(), "1", items, order.DefaultTaxPolicy(), order.Details{}, time.Now())
		require.NoError(t, err)

		items[0] = item(t, "B", "99.00", 9)
		assert.Equal(t, "A", o.Items()[0].Name())
	})
}

func TestOrder_Validate(t *testing.T) {
	var zero order.Order
	assert.ErrorIs(t, zero.Validate(), order.ErrOrderIsNotConstructed)

	var nilOrder *order.Order
	assert.ErrorIs(t, nilOrder.Validate(), order.ErrOrderIsNotConstructed)
}

func TestOrder_TransitionTo(t *testing.T) {
	t.Run("should walk the happy path", func(t *testing.T) {
		o := newPendingOrder(t)
		at := o.CreatedAt().Add(time.Minute)

		for _, next := range []order.Status{order.InProgress, order.Ready, order.Delivered} {
			before := o.Status()

			previous, err := o.TransitionTo(next, at)

			require.NoError(t, err)
			assert.Equal(t, before, previous)
			assert.Equal(t, next, o.Status())
			assert.Equal(t, at, o.UpdatedAt())
			at = at.Add(time.Minute)
		}
	})

	t.Run("should leave the order untouched on an invalid transition", func(t *testing.T) {
		o := newPendingOrder(t)
		updatedAt := o.UpdatedAt()

		previous, err := o.TransitionTo(order.Ready, time.Now().Add(time.Hour))

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, order.Pending, previous)
		assert.Equal(t, order.Pending, o.Status())
		assert.Equal(t, updatedAt, o.UpdatedAt())
	})

	t.Run("should keep amounts through the lifecycle", func(t *testing.T) {
		o := newPendingOrder(t)
		total := o.Total()

		_, err := o.TransitionTo(order.Cancelled, time.Now())
		require.NoError(t, err)

		assert.True(t, total.Equal(o.Total()))
		_, err = o.TransitionTo(order.Cancelled, time.Now())
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
	})
}

func TestRestoreOrder(t *testing.T) {
	t.Run("should keep stored totals", func(t *testing.T) {
		// Given totals that a different tax policy produced
		totals := order.Totals{
			Subtotal: money(t, "10.00"),
			Tax:      money(t, "1.00"),
			Total:    money(t, "11.00"),
		}
		created := time.Now().Add(-time.Hour).UTC()

		// When
		o, err := order.RestoreOrder(
			kernel.NewUUID(), "3", order.Details{}, order.Ready,
			[]order.Item{item(t, "A", "10.00", 1)}, totals, created, created,
		)

		// Then
		require.NoError(t, err)
		assert.Equal(t, order.Ready, o.Status())
		assert.Equal(t, "1.00", o.Tax().String())
		assert.Equal(t, "11.00", o.Total().String())
	})

	t.Run("should reject unknown status", func(t *testing.T) {
		_, err := order.RestoreOrder(
			kernel.NewUUID(), "3", order.Details{}, order.Unknown,
			[]order.Item{item(t, "A", "10.00", 1)}, order.Totals{}, time.Now(), time.Now(),
		)

		assert.ErrorIs(t, err, errs.ErrValidation)
	})
}

func TestOrder_Snapshot(t *testing.T) {
	o, err := order.NewOrder(
		kernel.NewUUID(),
		"7",
		[]order.Item{item(t, "Tea", "2.50", 2)},
		order.DefaultTaxPolicy(),
		order.Details{CustomerName: "Bo"},
		time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	)
	require.NoError(t, err)

	data, err := json.Marshal(o.Snapshot())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, o.ID().String(), decoded["id"])
	assert.Equal(t, "7", decoded["tableNumber"])
	assert.Equal(t, "Bo", decoded["customerName"])
	assert.Equal(t, "PENDING", decoded["status"])
	assert.Equal(t, "5.00", decoded["subtotal"])
	assert.Equal(t, "0.40", decoded["tax"])
	assert.Equal(t, "5.40", decoded["total"])
	assert.NotContains(t, decoded, "notes")

	lines, ok := decoded["items"].([]any)
	require.True(t, ok)
	require.Len(t, lines, 1)
	line := lines[0].(map[string]any)
	assert.Equal(t, "Tea", line["name"])
	assert.Equal(t, "2.50", line["unitPrice"])
	assert.InDelta(t, 2, line["quantity"], 0)
}

func TestTopics(t *testing.T) {
	id := kernel.NewUUID()

	assert.Equal(t, "orders", order.GlobalTopic)
	assert.Equal(t, "orders."+id.String(), order.Topic(id))

	parsed, perOrder, err := order.ParseTopic(order.Topic(id))
	require.NoError(t, err)
	assert.True(t, perOrder)
	assert.True(t, parsed.IsEqual(id))

	_, perOrder, err = order.ParseTopic(order.GlobalTopic)
	require.NoError(t, err)
	assert.False(t, perOrder)

	_, _, err = order.ParseTopic("orders.not-a-uuid")
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestTaxPolicy(t *testing.T) {
	t.Run("should round each derived amount half-up", func(t *testing.T) {
		policy, err := order.NewTaxPolicy(decimal.RequireFromString("0.075"), 2)
		require.NoError(t, err)

		// 3 x 3.33 = 9.99; 9.99 * 0.075 = 0.74925 -> 0.75
		totals := policy.Apply([]order.Item{item(t, "A", "3.33", 3)})

		assert.Equal(t, "9.99", totals.Subtotal.String())
		assert.Equal(t, "0.75", totals.Tax.String())
		assert.Equal(t, "10.74", totals.Total.String())
	})

	t.Run("should round a half cent up", func(t *testing.T) {
		// 0.0625 * 0.08 = 0.005 -> 0.01
		policy, err := order.NewTaxPolicy(decimal.RequireFromString("0.08"), 2)
		require.NoError(t, err)

		totals := policy.Apply([]order.Item{item(t, "A", "0.0625", 1)})

		assert.Equal(t, "0.06", totals.Subtotal.String())
		assert.Equal(t, "0.00", totals.Tax.String())

		totals = policy.Apply([]order.Item{item(t, "A", "0.0625", 10)})
		assert.Equal(t, "0.63", totals.Subtotal.String())
		assert.Equal(t, "0.05", totals.Tax.String())
	})

	t.Run("should support a zero rate", func(t *testing.T) {
		policy, err := order.NewTaxPolicy(decimal.Zero, 2)
		require.NoError(t, err)

		totals := policy.Apply([]order.Item{item(t, "A", "1.00", 1)})

		assert.True(t, totals.Tax.IsZero())
		assert.Equal(t, "1.00", totals.Total.String())
	})

	t.Run("should reject rates and precisions out of range", func(t *testing.T) {
		_, err := order.NewTaxPolicy(decimal.RequireFromString("-0.01"), 2)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

		_, err = order.NewTaxPolicy(decimal.RequireFromString("1.5"), 2)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

		_, err = order.NewTaxPolicy(order.DefaultTaxRate, 9)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("total equals subtotal plus tax", func(t *testing.T) {
		policy := order.DefaultTaxPolicy()
		prices := []string{"0.01", "0.99", "1.25", "7.77", "12.345", "19.99"}

		for i, p := range prices {
			totals := policy.Apply([]order.Item{item(t, "A", p, i+1), item(t, "B", "0.10", 3)})

			assert.True(t, totals.Total.Equal(totals.Subtotal.Add(totals.Tax)), "price %s", p)
		}
	})
}
