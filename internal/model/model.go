// Package model содержит доменные сущности сервиса корзины покупок.
package model

import "sync"

// Известные типы покупателей.
const (
	UserTypeRegular = "regular"
	UserTypePremium = "premium"
	UserTypeLoyal   = "loyal"
)

// CategoryElectronics — категория, участвующая в премиальной скидке.
const CategoryElectronics = "electronics"

// Item описывает позицию корзины.
type Item struct {
	ItemID   int64   `json:"item_id"`
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	UserType string  `json:"user_type"`
}

// Cart хранит позиции корзины, тип покупателя, кэшированную сумму и статус оплаты.
//
// TotalPrice пересчитывается только при вызове CalculateTotalPrice и между вызовами может
// не соответствовать Items. Статус оплаты защищён мьютексом: параллельные платежи
// перезаписывают его, и побеждает последняя запись.
type Cart struct {
	Items      []Item
	UserType   string
	TotalPrice float64

	mu            sync.Mutex
	paymentStatus string
}

// NewCart создаёт пустую корзину для покупателя указанного типа.
func NewCart(userType string) *Cart {
	return &Cart{UserType: userType}
}

// AddItem добавляет позицию в конец корзины.
func (c *Cart) AddItem(item Item) {
	c.Items = append(c.Items, item)
}

// RemoveItem удаляет все позиции с указанным идентификатором.
func (c *Cart) RemoveItem(itemID int64) {
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.ItemID != itemID {
			kept = append(kept, it)
		}
	}
	c.Items = kept
}

// UpdateItemQuantity меняет количество у всех позиций с указанным идентификатором.
func (c *Cart) UpdateItemQuantity(itemID, quantity int64) {
	for i := range c.Items {
		if c.Items[i].ItemID == itemID {
			c.Items[i].Quantity = quantity
		}
	}
}

// CalculateTotalPrice пересчитывает сумму корзины и сохраняет её в TotalPrice.
func (c *Cart) CalculateTotalPrice() float64 {
	var total float64
	for _, it := range c.Items {
		total += it.Price * float64(it.Quantity)
	}
	c.TotalPrice = total
	return total
}

// Empty удаляет все позиции.
func (c *Cart) Empty() {
	c.Items = nil
}

// Snapshot возвращает копию позиций корзины.
func (c *Cart) Snapshot() []Item {
	items := make([]Item, len(c.Items))
	copy(items, c.Items)
	return items
}

// HasCategory сообщает, есть ли в корзине позиция указанной категории.
func (c *Cart) HasCategory(category string) bool {
	for _, it := range c.Items {
		if it.Category == category {
			return true
		}
	}
	return false
}

// PaymentStatus возвращает текущий статус оплаты.
func (c *Cart) PaymentStatus() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paymentStatus
}

// SetPaymentStatus перезаписывает статус оплаты.
func (c *Cart) SetPaymentStatus(status string) {
	c.mu.Lock()
	c.paymentStatus = status
	c.mu.Unlock()
}

// Promotion описывает именованную акцию со ставкой скидки на все позиции.
type Promotion struct {
	Name         string
	DiscountRate float64
}
