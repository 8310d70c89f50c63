// Package service реализует бизнес-логику сервиса корзины покупок.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/shopping-cart/internal/catalog"
	"github.com/mmeshcher/shopping-cart/internal/discount"
	"github.com/mmeshcher/shopping-cart/internal/model"
	"github.com/mmeshcher/shopping-cart/internal/payment"
	"github.com/mmeshcher/shopping-cart/internal/promotion"
)

// catalogConcurrency ограничивает число одновременных запросов к каталогу.
const catalogConcurrency = 8

// ErrPersistenceDisabled возвращается при явном сохранении корзины без настроенной БД.
var ErrPersistenceDisabled = errors.New("persistence is not configured")

// Repository описывает контракт хранения корзины, используемый сервисом.
type Repository interface {
	Close() error
	AddItem(ctx context.Context, item model.Item) error
	RemoveItem(ctx context.Context, itemID int64) error
	UpdateItemQuantity(ctx context.Context, itemID, quantity int64) error
	EmptyCart(ctx context.Context) error
	SaveItems(ctx context.Context, items []model.Item) error
	SavePaymentStatus(ctx context.Context, status string) error
	LoadItems(ctx context.Context) ([]model.Item, error)
}

// Catalog описывает источник описаний товаров.
type Catalog interface {
	ItemDetails(ctx context.Context, itemID int64) (*catalog.ItemDetails, error)
}

// Service владеет корзиной процесса и сериализует её изменения.
// Ошибки хранилища при изменении корзины только логируются.
type Service struct {
	mu      sync.Mutex
	cart    *model.Cart
	repo    Repository
	catalog Catalog
	logger  *zap.Logger
}

// NewService создаёт сервис поверх корзины. repo и cat могут быть nil.
func NewService(cart *model.Cart, repo Repository, cat Catalog, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		cart:    cart,
		repo:    repo,
		catalog: cat,
		logger:  logger,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// Restore загружает сохранённые позиции в корзину.
func (s *Service) Restore(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	items, err := s.repo.LoadItems(ctx)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, it := range items {
		s.cart.AddItem(it)
	}
	return nil
}

func (s *Service) persist(ctx context.Context, op string, fn func(ctx context.Context, repo Repository) error) {
	if s.repo == nil {
		return
	}
	if err := fn(ctx, s.repo); err != nil {
		s.logger.Warn("persist cart change", zap.String("op", op), zap.Error(err))
	}
}

// AddItem добавляет позицию в корзину. Пустой тип покупателя заменяется типом владельца корзины.
func (s *Service) AddItem(ctx context.Context, item model.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.UserType == "" {
		item.UserType = s.cart.UserType
	}
	s.cart.AddItem(item)

	s.persist(ctx, "add_item", func(ctx context.Context, repo Repository) error {
		return repo.AddItem(ctx, item)
	})
}

// RemoveItem удаляет позиции товара из корзины.
func (s *Service) RemoveItem(ctx context.Context, itemID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.RemoveItem(itemID)

	s.persist(ctx, "remove_item", func(ctx context.Context, repo Repository) error {
		return repo.RemoveItem(ctx, itemID)
	})
}

// UpdateItemQuantity меняет количество товара в корзине.
func (s *Service) UpdateItemQuantity(ctx context.Context, itemID, quantity int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.UpdateItemQuantity(itemID, quantity)

	s.persist(ctx, "update_item_quantity", func(ctx context.Context, repo Repository) error {
		return repo.UpdateItemQuantity(ctx, itemID, quantity)
	})
}

// EmptyCart удаляет все позиции корзины.
func (s *Service) EmptyCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Empty()

	s.persist(ctx, "empty_cart", func(ctx context.Context, repo Repository) error {
		return repo.EmptyCart(ctx)
	})
}

// SaveCart сохраняет текущее содержимое корзины целиком.
func (s *Service) SaveCart(ctx context.Context) error {
	if s.repo == nil {
		return ErrPersistenceDisabled
	}

	s.mu.Lock()
	items := s.cart.Snapshot()
	s.mu.Unlock()

	if err := s.repo.SaveItems(ctx, items); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// GetCartItems возвращает позиции корзины. Если настроен каталог, название и категория
// каждой позиции берутся из него; товары, неизвестные каталогу, возвращаются как есть.
func (s *Service) GetCartItems(ctx context.Context) ([]model.Item, error) {
	s.mu.Lock()
	items := s.cart.Snapshot()
	s.mu.Unlock()

	if s.catalog == nil {
		return items, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(catalogConcurrency)

	for i := range items {
		g.Go(func() error {
			details, err := s.catalog.ItemDetails(ctx, items[i].ItemID)
			if err != nil {
				if errors.Is(err, catalog.ErrItemNotFound) {
					return nil
				}
				return fmt.Errorf("item %d details: %w", items[i].ItemID, err)
			}
			items[i].Name = details.Name
			items[i].Category = details.Category
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

// CalculateTotalPrice пересчитывает и возвращает сумму корзины.
func (s *Service) CalculateTotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.CalculateTotalPrice()
}

// ApplyDiscount применяет общую скидку и возвращает итоговую сумму.
func (s *Service) ApplyDiscount(rate, minPurchase float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return discount.New(rate, minPurchase).Apply(s.cart)
}

// ApplyPromotions применяет акции к позициям корзины.
func (s *Service) ApplyPromotions(promotions []model.Promotion) {
	s.mu.Lock()
	defer s.mu.Unlock()

	promotion.ApplyPromotions(s.cart, promotions)
}

// RunPayments параллельно обрабатывает стандартный набор способов оплаты.
func (s *Service) RunPayments(ctx context.Context) (string, error) {
	return s.ProcessPayments(ctx, payment.DefaultMethods())
}

// ProcessPayments параллельно обрабатывает способы оплаты и возвращает итоговый статус.
// Изменение позиций корзины во время оплаты не блокируется.
func (s *Service) ProcessPayments(ctx context.Context, methods []payment.Method) (string, error) {
	batchID := uuid.NewString()
	s.logger.Info("processing payments",
		zap.String("batch", batchID),
		zap.Int("methods", len(methods)),
	)

	if err := payment.ProcessPayments(ctx, s.cart, methods); err != nil {
		return "", fmt.Errorf("payment batch %s: %w", batchID, err)
	}

	status := s.cart.PaymentStatus()
	s.logger.Info("payments processed", zap.String("batch", batchID), zap.String("status", status))

	s.mu.Lock()
	s.persist(ctx, "payment_status", func(ctx context.Context, repo Repository) error {
		return repo.SavePaymentStatus(ctx, status)
	})
	s.mu.Unlock()

	return status, nil
}

// PaymentStatus возвращает текущий статус оплаты корзины.
func (s *Service) PaymentStatus() string {
	return s.cart.PaymentStatus()
}
