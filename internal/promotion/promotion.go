// Package promotion применяет именованные акции к позициям корзины.
package promotion

import (
	"errors"
	"fmt"

	"github.com/mmeshcher/shopping-cart/internal/model"
)

// Поддерживаемые акции.
const (
	SpringSale  = "Spring Sale"
	BlackFriday = "Black Friday"
)

// ErrUnknownPromotion возвращается строгим применением акций для неизвестного названия.
var ErrUnknownPromotion = errors.New("unknown promotion")

// DefaultPromotions возвращает акции, применяемые HTTP-обработчиком.
func DefaultPromotions() []model.Promotion {
	return []model.Promotion{
		{Name: SpringSale, DiscountRate: 0.10},
		{Name: BlackFriday, DiscountRate: 0.25},
	}
}

// IsKnown сообщает, поддерживается ли акция с указанным названием.
func IsKnown(name string) bool {
	switch name {
	case SpringSale, BlackFriday:
		return true
	default:
		return false
	}
}

// ApplyPromotions последовательно применяет акции ко всем позициям корзины.
// Скидки складываются мультипликативно, неизвестные акции пропускаются.
// Ставка не проверяется: 1 обнуляет цены, значения больше 1 делают их отрицательными.
func ApplyPromotions(cart *model.Cart, promotions []model.Promotion) {
	for _, p := range promotions {
		if !IsKnown(p.Name) {
			continue
		}
		applyRate(cart, p.DiscountRate)
	}
}

// ApplyPromotionsStrict проверяет названия всех акций и только затем применяет их.
func ApplyPromotionsStrict(cart *model.Cart, promotions []model.Promotion) error {
	for _, p := range promotions {
		if !IsKnown(p.Name) {
			return fmt.Errorf("%w: %q", ErrUnknownPromotion, p.Name)
		}
	}
	ApplyPromotions(cart, promotions)
	return nil
}

func applyRate(cart *model.Cart, rate float64) {
	for i := range cart.Items {
		cart.Items[i].Price *= 1 - rate
	}
}
