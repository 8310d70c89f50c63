// Package payment симулирует параллельную обработку платежей корзины.
//
// Каждый способ оплаты обрабатывается в собственной горутине и по завершении
// перезаписывает общий статус оплаты корзины. Порядок записей не гарантируется:
// итоговый статус принадлежит тому способу, который завершился последним.
package payment

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/shopping-cart/internal/model"
)

// Processor обрабатывает оплату корзины.
type Processor interface {
	ProcessPayment(ctx context.Context, cart *model.Cart) error
}

// Method описывает симулируемый способ оплаты с фиксированной задержкой обработки.
type Method struct {
	Name           string
	ProcessingTime time.Duration
}

// NewMethod создаёт способ оплаты.
func NewMethod(name string, processingTime time.Duration) Method {
	return Method{Name: name, ProcessingTime: processingTime}
}

// Status возвращает статус, который способ оплаты записывает в корзину.
func (m Method) Status() string {
	return fmt.Sprintf("%s Payment Processed", m.Name)
}

// ProcessPayment ждёт ProcessingTime и записывает статус оплаты в корзину.
// При отмене контекста статус не меняется.
func (m Method) ProcessPayment(ctx context.Context, cart *model.Cart) error {
	if m.ProcessingTime > 0 {
		timer := time.NewTimer(m.ProcessingTime)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return fmt.Errorf("process %q payment: %w", m.Name, ctx.Err())
		case <-timer.C:
		}
	}

	cart.SetPaymentStatus(m.Status())
	return nil
}

// ProcessPayments запускает по одной горутине на каждый способ оплаты и ждёт завершения всех.
// Возвращает первую ошибку обработки.
func ProcessPayments[P Processor](ctx context.Context, cart *model.Cart, methods []P) error {
	var g errgroup.Group
	for _, m := range methods {
		g.Go(func() error {
			return m.ProcessPayment(ctx, cart)
		})
	}
	return g.Wait()
}

// MakePayments — синоним ProcessPayments.
func MakePayments[P Processor](ctx context.Context, cart *model.Cart, methods []P) error {
	return ProcessPayments(ctx, cart, methods)
}

// AddPaymentToCart синхронно обрабатывает один способ оплаты.
func AddPaymentToCart(ctx context.Context, cart *model.Cart, method Processor) error {
	done := make(chan error, 1)
	go func() {
		done <- method.ProcessPayment(ctx, cart)
	}()
	return <-done
}

// DefaultMethods возвращает четыре способа оплаты "Method 1".."Method 4"
// с задержками 100, 200, 300 и 400 мс.
func DefaultMethods() []Method {
	methods := make([]Method, 0, 4)
	for i := 1; i <= 4; i++ {
		methods = append(methods, NewMethod(fmt.Sprintf("Method %d", i), time.Duration(i)*100*time.Millisecond))
	}
	return methods
}

// RunMultiplePayments параллельно обрабатывает способы оплаты из DefaultMethods.
func RunMultiplePayments(ctx context.Context, cart *model.Cart) error {
	return ProcessPayments(ctx, cart, DefaultMethods())
}
