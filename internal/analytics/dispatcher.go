package analytics

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tempizhere/surl/internal/models"
	"go.uber.org/zap"
)

// Dispatcher выполняет запись переходов в фоне фиксированным числом воркеров.
// Очередь ограничена, при переполнении событие отбрасывается.
type Dispatcher struct {
	recorder *Recorder
	queue    chan models.VisitEvent
	timeout  time.Duration
	logger   *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	dropped atomic.Int64
	failed  atomic.Int64
}

// NewDispatcher запускает workers воркеров с очередью на capacity событий.
// timeout ограничивает одну запись и не зависит от контекста запроса.
func NewDispatcher(recorder *Recorder, workers, capacity int, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if capacity < 0 {
		capacity = 0
	}
	d := &Dispatcher{
		recorder: recorder,
		queue:    make(chan models.VisitEvent, capacity),
		timeout:  timeout,
		logger:   logger,
	}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for ev := range d.queue {
		d.record(ev)
	}
}

func (d *Dispatcher) record(ev models.VisitEvent) {
	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	if err := d.recorder.Record(ctx, ev); err != nil {
		d.failed.Add(1)
		d.logger.Warn("Failed to record visit",
			zap.String("slug", ev.Slug),
			zap.String("mode", d.recorder.Mode().String()),
			zap.Error(err))
	}
}

// Submit ставит событие в очередь и никогда не блокирует.
// Возвращает false, если событие отброшено.
func (d *Dispatcher) Submit(ev models.VisitEvent) bool {
	if d.recorder.Mode() == ModeNone {
		return true
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.dropped.Add(1)
		return false
	}
	select {
	case d.queue <- ev:
		return true
	default:
		d.dropped.Add(1)
		d.logger.Warn("Analytics queue is full, visit dropped", zap.String("slug", ev.Slug))
		return false
	}
}

// Visit собирает событие перехода и ставит его в очередь
func (d *Dispatcher) Visit(slug, clientAddr string, at time.Time) bool {
	return d.Submit(d.recorder.Event(slug, clientAddr, at))
}

// Dropped количество отброшенных событий
func (d *Dispatcher) Dropped() int64 { return d.dropped.Load() }

// Failed количество событий, запись которых завершилась ошибкой
func (d *Dispatcher) Failed() int64 { return d.failed.Load() }

// Close перестаёт принимать события и дожидается обработки очереди
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
