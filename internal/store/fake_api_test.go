package store

import (
	"context"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/ordersync/internal/domain"
)

const waitTimeout = 2 * time.Second

type apiResult struct {
	orders []domain.Order
	order  domain.Order
	err    error
}

// pendingCall ждёт, пока тест выдаст ответ вручную.
type pendingCall struct {
	op    string
	id    int64
	order domain.Order
	ctx   context.Context
	reply chan apiResult
}

func (c *pendingCall) respond(res apiResult) {
	c.reply <- res
}

// fakeAPI передаёт каждый вызов в канал calls и ждёт ответа от теста.
// При ignoreCancel вызов не реагирует на отмену контекста, как медленный сервер.
type fakeAPI struct {
	calls        chan *pendingCall
	ignoreCancel bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{calls: make(chan *pendingCall, 16)}
}

func (f *fakeAPI) call(ctx context.Context, op string, id int64, order domain.Order) apiResult {
	c := &pendingCall{op: op, id: id, order: order, ctx: ctx, reply: make(chan apiResult, 1)}
	f.calls <- c
	if f.ignoreCancel {
		return <-c.reply
	}
	select {
	case res := <-c.reply:
		return res
	case <-ctx.Done():
		return apiResult{err: ctx.Err()}
	}
}

func (f *fakeAPI) ListOrders(ctx context.Context) ([]domain.Order, error) {
	res := f.call(ctx, "list", 0, domain.Order{})
	return res.orders, res.err
}

func (f *fakeAPI) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	res := f.call(ctx, "get", id, domain.Order{})
	return res.order, res.err
}

func (f *fakeAPI) CreateOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	res := f.call(ctx, "create", 0, order)
	return res.order, res.err
}

func (f *fakeAPI) UpdateOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	res := f.call(ctx, "update", order.ID, order)
	return res.order, res.err
}

func (f *fakeAPI) DeleteOrder(ctx context.Context, id int64) error {
	res := f.call(ctx, "delete", id, domain.Order{})
	return res.err
}

func (f *fakeAPI) next(t *testing.T, op string) *pendingCall {
	t.Helper()
	select {
	case c := <-f.calls:
		if c.op != op {
			t.Fatalf("expected %s call, got %s", op, c.op)
		}
		return c
	case <-time.After(waitTimeout):
		t.Fatalf("timeout waiting for %s call", op)
		return nil
	}
}

func (f *fakeAPI) expectNoCall(t *testing.T) {
	t.Helper()
	select {
	case c := <-f.calls:
		t.Fatalf("unexpected %s call", c.op)
	case <-time.After(50 * time.Millisecond):
	}
}

func async(fn func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	return done
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(waitTimeout):
		t.Fatal("operation did not complete")
	}
}

func isDone(done <-chan struct{}) bool {
	select {
	case <-done:
		return true
	default:
		return false
	}
}
