package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	custommiddleware "github.com/mmeshcher/shopping-cart/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса корзины.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Post("/add_item", h.AddItem)
	r.Post("/remove_item", h.RemoveItem)
	r.Post("/update_item_quantity", h.UpdateItemQuantity)
	r.Get("/get_cart_items", h.GetCartItems)
	r.Get("/calculate_total_price", h.CalculateTotalPrice)
	r.Post("/apply_discount", h.ApplyDiscount)
	r.Post("/apply_promotions", h.ApplyPromotions)

	r.Post("/run_payments", h.RunPayments)
	r.Post("/process_payments", h.ProcessPayments)
	r.Get("/payment_status", h.GetPaymentStatus)
	r.Post("/empty_cart", h.EmptyCart)
	r.Post("/save_cart", h.SaveCart)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
