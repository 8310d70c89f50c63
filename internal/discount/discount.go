// Package discount реализует правила ценообразования корзины.
//
// Все функции изменяют корзину на месте и не защищены от повторного применения:
// повторный вызов снова умножает уже уменьшенные цены.
package discount

import "github.com/mmeshcher/shopping-cart/internal/model"

// Названия сезонов, для которых действует сезонная скидка.
const (
	SeasonHoliday = "holiday"
	SeasonSummer  = "summer"
)

// premiumElectronicsFactor — множитель ставки для премиальных покупателей с электроникой.
const premiumElectronicsFactor = 1.5

// minLoyaltyYears — стаж, после которого действует скидка лояльности.
const minLoyaltyYears = 2

// Discount описывает общую скидку корзины с порогом минимальной суммы покупки.
type Discount struct {
	Rate              float64
	MinPurchaseAmount float64
}

// New создаёт скидку со ставкой rate и порогом minPurchase.
func New(rate, minPurchase float64) Discount {
	return Discount{Rate: rate, MinPurchaseAmount: minPurchase}
}

// Apply применяет скидку к корзине и возвращает итоговую сумму.
func (d Discount) Apply(cart *model.Cart) float64 {
	return ApplyDiscount(cart, d.Rate, d.MinPurchaseAmount)
}

// ApplyDiscount пересчитывает сумму корзины и, если она не меньше minPurchase,
// корректирует её: для премиального покупателя с электроникой прибавляется rate*1.5,
// иначе сумма умножается на (1 + rate). Результат сохраняется в cart.TotalPrice.
func ApplyDiscount(cart *model.Cart, rate, minPurchase float64) float64 {
	total := cart.CalculateTotalPrice()
	if total >= minPurchase {
		if cart.UserType == model.UserTypePremium && cart.HasCategory(model.CategoryElectronics) {
			total += rate * premiumElectronicsFactor
		} else {
			total *= 1 + rate
		}
	}
	cart.TotalPrice = total
	return total
}

// ApplyBulkDiscount уменьшает цену позиций с количеством не меньше bulkQuantity.
// Сумма корзины не пересчитывается.
func ApplyBulkDiscount(cart *model.Cart, bulkQuantity int64, rate float64) {
	for i := range cart.Items {
		if cart.Items[i].Quantity >= bulkQuantity {
			cart.Items[i].Price *= 1 - rate
		}
	}
}

// ApplySeasonalDiscount применяет сезонную скидку к пересчитанной сумме корзины.
// Летом действует половина ставки, для прочих сезонов сумма не меняется.
func ApplySeasonalDiscount(cart *model.Cart, season string, rate float64) float64 {
	total := cart.CalculateTotalPrice()
	switch season {
	case SeasonHoliday:
		total *= 1 - rate
	case SeasonSummer:
		total *= 1 - rate/2
	}
	cart.TotalPrice = total
	return total
}

// ApplyCategoryDiscount уменьшает цену позиций указанной категории.
func ApplyCategoryDiscount(cart *model.Cart, category string, rate float64) {
	for i := range cart.Items {
		if cart.Items[i].Category == category {
			cart.Items[i].Price *= 1 - rate
		}
	}
}

// ApplyLoyaltyDiscount применяет скидку лояльности, если покупатель лоялен
// больше двух лет.
func ApplyLoyaltyDiscount(cart *model.Cart, loyaltyYears int, rate float64) float64 {
	total := cart.CalculateTotalPrice()
	if cart.UserType == model.UserTypeLoyal && loyaltyYears > minLoyaltyYears {
		total *= 1 - rate
	}
	cart.TotalPrice = total
	return total
}

// ApplyFlashSaleDiscount уменьшает цену позиций, идентификаторы которых участвуют в распродаже.
func ApplyFlashSaleDiscount(cart *model.Cart, rate float64, itemsOnSale []int64) {
	onSale := make(map[int64]struct{}, len(itemsOnSale))
	for _, id := range itemsOnSale {
		onSale[id] = struct{}{}
	}

	for i := range cart.Items {
		if _, ok := onSale[cart.Items[i].ItemID]; ok {
			cart.Items[i].Price *= 1 - rate
		}
	}
}

// CalculateDiscountedPrice возвращает сумму корзины со скидкой rate, не изменяя корзину.
func CalculateDiscountedPrice(cart *model.Cart, rate float64) float64 {
	var total float64
	for _, it := range cart.Items {
		total += it.Price * float64(it.Quantity)
	}
	return total * (1 - rate)
}
