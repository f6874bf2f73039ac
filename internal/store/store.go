package store

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ordersync/internal/domain"
	"github.com/vladislavdragonenkov/ordersync/internal/metrics"
)

// API описывает удалённый Order API, которым пользуется store.
type API interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	GetOrder(ctx context.Context, id int64) (domain.Order, error)
	CreateOrder(ctx context.Context, order domain.Order) (domain.Order, error)
	UpdateOrder(ctx context.Context, order domain.Order) (domain.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
}

// Имена операций в логах и метриках.
const (
	OpLoad   = "load"
	OpAdd    = "add"
	OpUpdate = "update"
	OpDelete = "delete"
	OpSelect = "select"
)

type lane int

const (
	laneList lane = iota
	laneMutate
	laneSelect
	laneCount
)

var laneNames = [laneCount]string{"list", "mutate", "select"}

// OrderStore хранит коллекцию заказов, синхронизированную с удалённым API.
//
// Операции делятся на три независимые полосы. В каждой одновременно
// выполняется не больше одной операции: загрузка списка работает по
// принципу "побеждает последний", изменения и выбор заказа отбрасывают
// вызовы, пока предыдущий не завершился. Все операции блокируют вызывающего
// до завершения перехода и никогда не возвращают ошибок: сбой виден только
// через State.Error.
type OrderStore struct {
	api     API
	logger  *log.Entry
	metrics *metrics.StoreMetrics

	lifetime context.Context
	stop     context.CancelFunc

	mu       sync.Mutex
	orders   []domain.Order
	errMsg   string
	selected *domain.Order
	busy     [laneCount]bool
	closed   bool

	// listSeq растёт с каждым LoadOrders; ответ с устаревшим номером отбрасывается.
	listSeq    uint64
	listCancel context.CancelFunc

	subs    map[uint64]chan State
	nextSub uint64
}

// Option настраивает OrderStore.
type Option func(*OrderStore)

// WithLogger задаёт логгер store.
func WithLogger(logger *log.Entry) Option {
	return func(s *OrderStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics подключает Prometheus-метрики.
func WithMetrics(m *metrics.StoreMetrics) Option {
	return func(s *OrderStore) {
		s.metrics = m
	}
}

// New создаёт пустой store поверх API.
func New(api API, opts ...Option) *OrderStore {
	lifetime, stop := context.WithCancel(context.Background())
	s := &OrderStore{
		api:      api,
		logger:   log.WithField("component", "order-store"),
		lifetime: lifetime,
		stop:     stop,
		subs:     make(map[uint64]chan State),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State возвращает копию текущего состояния.
func (s *OrderStore) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe возвращает канал снимков состояния и функцию отписки.
// Канал сразу содержит текущий снимок; если подписчик не успевает читать,
// промежуточные снимки заменяются последним. Канал закрывается при
// отписке или Close.
func (s *OrderStore) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.snapshotLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(sub)
			}
		})
	}
}

// Close отменяет выполняющиеся вызовы и закрывает подписки.
// После Close операции ничего не делают.
func (s *OrderStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.stop()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

// LoadOrders заменяет коллекцию списком с сервера. Новый вызов отменяет
// предыдущий незавершённый, и его ответ не попадает в состояние.
func (s *OrderStore) LoadOrders(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.listCancel != nil {
		s.listCancel()
		s.logger.Debug("previous load superseded")
	}
	s.listSeq++
	seq := s.listSeq
	callCtx, cancel := s.startLocked(ctx, laneList)
	s.listCancel = cancel
	s.mu.Unlock()

	started := time.Now()
	orders, err := s.api.ListOrders(callCtx)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.listSeq {
		s.metrics.RecordResult(OpLoad, metrics.ResultSuperseded)
		return
	}
	s.listCancel = nil
	s.finishLocked(OpLoad, laneList, started, err, func() {
		s.orders = dedupe(orders)
	}, nil)
}

// AddOrder создаёт заказ. Суммы считаются локально и отправляются вместе с запросом.
func (s *OrderStore) AddOrder(ctx context.Context, req domain.CreateOrderRequest) {
	order := req.Order()

	callCtx, cancel, ok := s.acquire(ctx, OpAdd, laneMutate)
	if !ok {
		return
	}
	started := time.Now()
	created, err := s.api.CreateOrder(callCtx, order)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishLocked(OpAdd, laneMutate, started, err, func() {
		s.orders = upsert(s.orders, created.WithTotals())
	}, nil)
}

// UpdateOrder изменяет заказ и закрывает текущий выбор.
func (s *OrderStore) UpdateOrder(ctx context.Context, req domain.UpdateOrderRequest) {
	order := req.Order()

	callCtx, cancel, ok := s.acquire(ctx, OpUpdate, laneMutate)
	if !ok {
		return
	}
	started := time.Now()
	updated, err := s.api.UpdateOrder(callCtx, order)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishLocked(OpUpdate, laneMutate, started, err, func() {
		s.orders = upsert(s.orders, updated.WithTotals())
		s.selected = nil
	}, nil)
}

// DeleteOrder удаляет заказ и сбрасывает выбор.
func (s *OrderStore) DeleteOrder(ctx context.Context, id int64) {
	callCtx, cancel, ok := s.acquire(ctx, OpDelete, laneMutate)
	if !ok {
		return
	}
	started := time.Now()
	err := s.api.DeleteOrder(callCtx, id)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishLocked(OpDelete, laneMutate, started, err, func() {
		s.orders = remove(s.orders, id)
		s.selected = nil
	}, nil)
}

// SelectOrder выбирает заказ. Заказ из коллекции выбирается без сетевого
// вызова; иначе он запрашивается у сервера и в коллекцию не добавляется.
func (s *OrderStore) SelectOrder(ctx context.Context, id int64) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.busy[laneSelect] {
		s.mu.Unlock()
		s.dropped(OpSelect)
		return
	}
	for _, order := range s.orders {
		if order.ID == id {
			selected := order
			s.selected = &selected
			s.metrics.RecordResult(OpSelect, metrics.ResultLocal)
			s.publishLocked()
			s.mu.Unlock()
			return
		}
	}
	callCtx, cancel := s.startLocked(ctx, laneSelect)
	s.mu.Unlock()

	started := time.Now()
	order, err := s.api.GetOrder(callCtx, id)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishLocked(OpSelect, laneSelect, started, err, func() {
		selected := order.WithTotals()
		s.selected = &selected
	}, func() {
		s.selected = nil
	})
}

// acquire занимает полосу или сообщает, что вызов отброшен.
func (s *OrderStore) acquire(ctx context.Context, op string, l lane) (context.Context, context.CancelFunc, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, nil, false
	}
	if s.busy[l] {
		s.dropped(op)
		return nil, nil, false
	}
	callCtx, cancel := s.startLocked(ctx, l)
	return callCtx, cancel, true
}

// startLocked помечает полосу занятой, сбрасывает ошибку и публикует снимок.
// Контекст вызова отменяется вместе с ctx или при Close.
func (s *OrderStore) startLocked(ctx context.Context, l lane) (context.Context, context.CancelFunc) {
	s.busy[l] = true
	s.errMsg = ""
	s.metrics.SetInFlight(laneNames[l], true)
	s.publishLocked()

	callCtx, cancel := context.WithCancel(ctx)
	stopAfter := context.AfterFunc(s.lifetime, cancel)
	return callCtx, func() {
		stopAfter()
		cancel()
	}
}

// finishLocked освобождает полосу и применяет результат операции.
func (s *OrderStore) finishLocked(op string, l lane, started time.Time, err error, onSuccess, onFailure func()) {
	s.busy[l] = false
	s.metrics.SetInFlight(laneNames[l], false)
	if s.closed {
		return
	}

	s.metrics.RecordDuration(op, time.Since(started))
	switch {
	case err == nil:
		onSuccess()
		s.metrics.RecordResult(op, metrics.ResultSuccess)
	case errors.Is(err, context.Canceled):
		s.logger.WithField("operation", op).Debug("operation canceled by caller")
		s.metrics.RecordResult(op, metrics.ResultCanceled)
	default:
		s.errMsg = DescribeError(err)
		if onFailure != nil {
			onFailure()
		}
		s.metrics.RecordResult(op, metrics.ResultFailure)
		s.logger.WithFields(log.Fields{
			"operation": op,
			"message":   s.errMsg,
		}).WithError(err).Warn("order store operation failed")
	}

	s.metrics.SetOrders(len(s.orders))
	s.publishLocked()
}

func (s *OrderStore) dropped(op string) {
	s.logger.WithField("operation", op).Debug("operation dropped: lane busy")
	s.metrics.RecordResult(op, metrics.ResultDropped)
}

func (s *OrderStore) snapshotLocked() State {
	state := State{
		Orders:   s.orders,
		Loading:  s.busy[laneList] || s.busy[laneMutate] || s.busy[laneSelect],
		Error:    s.errMsg,
		Selected: s.selected,
	}
	return state.clone()
}

// publishLocked отправляет снимок всем подписчикам. Store единственный
// отправитель, поэтому после вычитывания старого снимка отправка не блокируется.
func (s *OrderStore) publishLocked() {
	if len(s.subs) == 0 {
		return
	}
	snapshot := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snapshot.clone()
	}
}
