// Package handler содержит HTTP-обработчики API сервиса корзины.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/shopping-cart/internal/model"
	"github.com/mmeshcher/shopping-cart/internal/payment"
	"github.com/mmeshcher/shopping-cart/internal/promotion"
	"github.com/mmeshcher/shopping-cart/internal/service"
	"github.com/mmeshcher/shopping-cart/internal/validation"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	AddItem(ctx context.Context, item model.Item)
	RemoveItem(ctx context.Context, itemID int64)
	UpdateItemQuantity(ctx context.Context, itemID, quantity int64)
	GetCartItems(ctx context.Context) ([]model.Item, error)
	CalculateTotalPrice() float64
	ApplyDiscount(rate, minPurchase float64) float64
	ApplyPromotions(promotions []model.Promotion)
	RunPayments(ctx context.Context) (string, error)
	ProcessPayments(ctx context.Context, methods []payment.Method) (string, error)
	PaymentStatus() string
	EmptyCart(ctx context.Context)
	SaveCart(ctx context.Context) error
}

// Handler реализует HTTP-обработчики API сервиса корзины.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: s,
		logger:  logger,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	if validation.IsInvalidInput(err) {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	h.logger.Error(op+" error", zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return validation.Malformed(err)
	}
	return nil
}

type addItemRequest struct {
	ItemID   *int64   `json:"item_id"`
	Quantity *int64   `json:"quantity"`
	Price    *float64 `json:"price"`
	Name     *string  `json:"name"`
	Category *string  `json:"category"`
}

func (req addItemRequest) item() (model.Item, error) {
	var (
		it  model.Item
		err error
	)
	if it.ItemID, err = validation.Required("item_id", req.ItemID); err != nil {
		return it, err
	}
	if it.Quantity, err = validation.Required("quantity", req.Quantity); err != nil {
		return it, err
	}
	if it.Price, err = validation.Required("price", req.Price); err != nil {
		return it, err
	}
	if it.Name, err = validation.RequiredString("name", req.Name); err != nil {
		return it, err
	}
	if it.Category, err = validation.Required("category", req.Category); err != nil {
		return it, err
	}
	return it, nil
}

// AddItem добавляет позицию в корзину.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, "add item", err)
		return
	}

	item, err := req.item()
	if err != nil {
		h.writeError(w, "add item", err)
		return
	}

	h.service.AddItem(r.Context(), item)
	h.writeJSON(w, http.StatusCreated, messageResponse{Message: "Item added to cart"})
}

type removeItemRequest struct {
	ItemID *int64 `json:"item_id"`
}

// RemoveItem удаляет позиции товара из корзины.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	var req removeItemRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, "remove item", err)
		return
	}

	itemID, err := validation.Required("item_id", req.ItemID)
	if err != nil {
		h.writeError(w, "remove item", err)
		return
	}

	h.service.RemoveItem(r.Context(), itemID)
	h.writeJSON(w, http.StatusOK, messageResponse{Message: "Item removed from cart"})
}

type updateQuantityRequest struct {
	ItemID      *int64 `json:"item_id"`
	NewQuantity *int64 `json:"new_quantity"`
}

// UpdateItemQuantity меняет количество товара в корзине.
func (h *Handler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, "update item quantity", err)
		return
	}

	itemID, err := validation.Required("item_id", req.ItemID)
	if err != nil {
		h.writeError(w, "update item quantity", err)
		return
	}
	quantity, err := validation.Required("new_quantity", req.NewQuantity)
	if err != nil {
		h.writeError(w, "update item quantity", err)
		return
	}

	h.service.UpdateItemQuantity(r.Context(), itemID, quantity)
	h.writeJSON(w, http.StatusOK, messageResponse{Message: "Item quantity updated"})
}

type itemsResponse struct {
	Items []model.Item `json:"items"`
}

// GetCartItems возвращает позиции корзины.
func (h *Handler) GetCartItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.GetCartItems(r.Context())
	if err != nil {
		h.writeError(w, "get cart items", err)
		return
	}

	if items == nil {
		items = []model.Item{}
	}
	h.writeJSON(w, http.StatusOK, itemsResponse{Items: items})
}

type totalPriceResponse struct {
	TotalPrice float64 `json:"total_price"`
}

// CalculateTotalPrice возвращает пересчитанную сумму корзины.
func (h *Handler) CalculateTotalPrice(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, totalPriceResponse{TotalPrice: h.service.CalculateTotalPrice()})
}

type applyDiscountRequest struct {
	DiscountRate      *float64 `json:"discount_rate"`
	MinPurchaseAmount *float64 `json:"min_purchase_amount"`
}

type discountResponse struct {
	DiscountedTotal float64 `json:"discounted_total"`
}

// ApplyDiscount применяет общую скидку к корзине.
func (h *Handler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	var req applyDiscountRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, "apply discount", err)
		return
	}

	rate, err := validation.Required("discount_rate", req.DiscountRate)
	if err != nil {
		h.writeError(w, "apply discount", err)
		return
	}

	var minPurchase float64
	if req.MinPurchaseAmount != nil {
		minPurchase = *req.MinPurchaseAmount
	}

	total := h.service.ApplyDiscount(rate, minPurchase)
	h.writeJSON(w, http.StatusOK, discountResponse{DiscountedTotal: total})
}

type promotionRequest struct {
	Name         *string  `json:"name"`
	DiscountRate *float64 `json:"discount_rate"`
}

type applyPromotionsRequest struct {
	Promotions []promotionRequest `json:"promotions"`
}

// ApplyPromotions применяет акции к корзине. Без тела запроса применяются стандартные акции.
func (h *Handler) ApplyPromotions(w http.ResponseWriter, r *http.Request) {
	var req applyPromotionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, "apply promotions", validation.Malformed(err))
		return
	}

	promotions := promotion.DefaultPromotions()
	if len(req.Promotions) > 0 {
		promotions = make([]model.Promotion, 0, len(req.Promotions))
		for _, p := range req.Promotions {
			name, err := validation.RequiredString("name", p.Name)
			if err != nil {
				h.writeError(w, "apply promotions", err)
				return
			}
			rate, err := validation.Required("discount_rate", p.DiscountRate)
			if err != nil {
				h.writeError(w, "apply promotions", err)
				return
			}
			promotions = append(promotions, model.Promotion{Name: name, DiscountRate: rate})
		}
	}

	h.service.ApplyPromotions(promotions)
	h.writeJSON(w, http.StatusOK, messageResponse{Message: "Promotions applied"})
}

type paymentStatusResponse struct {
	PaymentStatus string `json:"payment_status"`
}

// RunPayments параллельно обрабатывает стандартный набор способов оплаты.
func (h *Handler) RunPayments(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.RunPayments(r.Context())
	if err != nil {
		h.writeError(w, "run payments", err)
		return
	}
	h.writeJSON(w, http.StatusOK, paymentStatusResponse{PaymentStatus: status})
}

type paymentMethodRequest struct {
	Name           *string  `json:"name"`
	ProcessingTime *float64 `json:"processing_time"`
}

type processPaymentsRequest struct {
	PaymentMethods []paymentMethodRequest `json:"payment_methods"`
}

// ProcessPayments параллельно обрабатывает переданные способы оплаты.
// processing_time задаётся в секундах.
func (h *Handler) ProcessPayments(w http.ResponseWriter, r *http.Request) {
	var req processPaymentsRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, "process payments", err)
		return
	}

	methods := make([]payment.Method, 0, len(req.PaymentMethods))
	for _, m := range req.PaymentMethods {
		name, err := validation.RequiredString("name", m.Name)
		if err != nil {
			h.writeError(w, "process payments", err)
			return
		}
		seconds, err := validation.Required("processing_time", m.ProcessingTime)
		if err != nil {
			h.writeError(w, "process payments", err)
			return
		}
		methods = append(methods, payment.NewMethod(name, time.Duration(seconds*float64(time.Second))))
	}

	status, err := h.service.ProcessPayments(r.Context(), methods)
	if err != nil {
		h.writeError(w, "process payments", err)
		return
	}
	h.writeJSON(w, http.StatusOK, paymentStatusResponse{PaymentStatus: status})
}

// GetPaymentStatus возвращает текущий статус оплаты.
func (h *Handler) GetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, paymentStatusResponse{PaymentStatus: h.service.PaymentStatus()})
}

// EmptyCart удаляет все позиции корзины.
func (h *Handler) EmptyCart(w http.ResponseWriter, r *http.Request) {
	h.service.EmptyCart(r.Context())
	h.writeJSON(w, http.StatusOK, messageResponse{Message: "Cart emptied"})
}

// SaveCart сохраняет корзину в БД.
func (h *Handler) SaveCart(w http.ResponseWriter, r *http.Request) {
	if err := h.service.SaveCart(r.Context()); err != nil {
		if errors.Is(err, service.ErrPersistenceDisabled) {
			h.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
			return
		}
		h.writeError(w, "save cart", err)
		return
	}
	h.writeJSON(w, http.StatusOK, messageResponse{Message: "Cart saved"})
}
