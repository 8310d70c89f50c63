package payment

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/shopping-cart/internal/model"
)

// barrierProcessor не завершается, пока все n обработчиков не будут запущены.
type barrierProcessor struct {
	n        int32
	started  *atomic.Int32
	finished *atomic.Int32
	all      chan struct{}
}

func (p *barrierProcessor) ProcessPayment(ctx context.Context, cart *model.Cart) error {
	if p.started.Add(1) == p.n {
		close(p.all)
	}

	select {
	case <-p.all:
	case <-ctx.Done():
		return ctx.Err()
	}

	p.finished.Add(1)
	return nil
}

func TestProcessPaymentsRunsAllConcurrently(t *testing.T) {
	const n = 5

	var started, finished atomic.Int32
	all := make(chan struct{})

	procs := make([]*barrierProcessor, n)
	for i := range procs {
		procs[i] = &barrierProcessor{n: n, started: &started, finished: &finished, all: all}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := ProcessPayments(ctx, model.NewCart(model.UserTypeRegular), procs)
	require.NoError(t, err)

	assert.Equal(t, int32(n), started.Load())
	assert.Equal(t, int32(n), finished.Load())
}

func TestProcessPaymentsNoMethods(t *testing.T) {
	cart := model.NewCart(model.UserTypeRegular)

	err := ProcessPayments(context.Background(), cart, []Method{})
	require.NoError(t, err)

	assert.Empty(t, cart.PaymentStatus())
}

func TestProcessPaymentSetsStatus(t *testing.T) {
	cart := model.NewCart(model.UserTypeRegular)

	err := NewMethod("Card", 0).ProcessPayment(context.Background(), cart)
	require.NoError(t, err)

	assert.Equal(t, "Card Payment Processed", cart.PaymentStatus())
}

func TestProcessPaymentCancelled(t *testing.T) {
	cart := model.NewCart(model.UserTypeRegular)
	cart.SetPaymentStatus("initial")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewMethod("Slow", time.Hour).ProcessPayment(ctx, cart)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, "initial", cart.PaymentStatus())
}

func TestAddPaymentToCart(t *testing.T) {
	cart := model.NewCart(model.UserTypeRegular)

	err := AddPaymentToCart(context.Background(), cart, NewMethod("PayPal", 10*time.Millisecond))
	require.NoError(t, err)

	assert.Equal(t, "PayPal Payment Processed", cart.PaymentStatus())
}

func TestMakePaymentsSlowestWins(t *testing.T) {
	cart := model.NewCart(model.UserTypeRegular)
	methods := []Method{
		NewMethod("Slow", 300*time.Millisecond),
		NewMethod("Fast", 0),
	}

	err := MakePayments(context.Background(), cart, methods)
	require.NoError(t, err)

	assert.Equal(t, "Slow Payment Processed", cart.PaymentStatus())
}

func TestDefaultMethods(t *testing.T) {
	methods := DefaultMethods()

	require.Len(t, methods, 4)
	for i, m := range methods {
		assert.Equal(t, "Method "+string(rune('1'+i)), m.Name)
		assert.Equal(t, time.Duration(i+1)*100*time.Millisecond, m.ProcessingTime)
	}
}

func TestRunMultiplePayments(t *testing.T) {
	cart := model.NewCart(model.UserTypeRegular)

	err := RunMultiplePayments(context.Background(), cart)
	require.NoError(t, err)

	assert.Equal(t, "Method 4 Payment Processed", cart.PaymentStatus())
}
