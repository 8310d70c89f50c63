package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCart() *Cart {
	c := NewCart(UserTypeRegular)
	c.AddItem(Item{ItemID: 1, Quantity: 2, Price: 10, Name: "Pen", Category: "office"})
	c.AddItem(Item{ItemID: 2, Quantity: 1, Price: 30, Name: "Phone case", Category: CategoryElectronics})
	c.AddItem(Item{ItemID: 1, Quantity: 3, Price: 5, Name: "Pen refill", Category: "office"})
	return c
}

func TestCalculateTotalPrice(t *testing.T) {
	c := newTestCart()

	total := c.CalculateTotalPrice()

	assert.InDelta(t, 65.0, total, 1e-9)
	assert.InDelta(t, 65.0, c.TotalPrice, 1e-9)
}

func TestTotalPriceIsStaleUntilRecalculated(t *testing.T) {
	c := newTestCart()
	c.CalculateTotalPrice()

	c.AddItem(Item{ItemID: 3, Quantity: 1, Price: 100})

	assert.InDelta(t, 65.0, c.TotalPrice, 1e-9)
	assert.InDelta(t, 165.0, c.CalculateTotalPrice(), 1e-9)
}

func TestRemoveItemRemovesAllMatches(t *testing.T) {
	c := newTestCart()

	c.RemoveItem(1)

	require.Len(t, c.Items, 1)
	assert.Equal(t, int64(2), c.Items[0].ItemID)
}

func TestRemoveItemUnknownID(t *testing.T) {
	c := newTestCart()

	c.RemoveItem(42)

	assert.Len(t, c.Items, 3)
}

func TestUpdateItemQuantity(t *testing.T) {
	c := newTestCart()

	c.UpdateItemQuantity(1, 7)

	assert.Equal(t, int64(7), c.Items[0].Quantity)
	assert.Equal(t, int64(1), c.Items[1].Quantity)
	assert.Equal(t, int64(7), c.Items[2].Quantity)
}

func TestSnapshotIsCopy(t *testing.T) {
	c := newTestCart()

	items := c.Snapshot()
	items[0].Price = 999

	assert.InDelta(t, 10.0, c.Items[0].Price, 1e-9)
}

func TestEmpty(t *testing.T) {
	c := newTestCart()

	c.Empty()

	assert.Empty(t, c.Items)
	assert.InDelta(t, 0.0, c.CalculateTotalPrice(), 1e-9)
}

func TestHasCategory(t *testing.T) {
	c := newTestCart()

	assert.True(t, c.HasCategory(CategoryElectronics))
	assert.False(t, c.HasCategory("garden"))
}

func TestSetPaymentStatusConcurrent(t *testing.T) {
	c := NewCart(UserTypeRegular)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.SetPaymentStatus("done")
		}()
	}
	wg.Wait()

	assert.Equal(t, "done", c.PaymentStatus())
}
