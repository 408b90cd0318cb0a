package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/tempizhere/surl/internal/models"
)

// Store часть хранилища, нужная для записи переходов
type Store interface {
	IncrementVisit(ctx context.Context, slug string) error
	AppendVisitRecord(ctx context.Context, rec models.VisitRecord) error
}

// Recorder применяет режим аналитики к событию перехода
type Recorder struct {
	store     Store
	mode      Mode
	anonymize bool
}

// NewRecorder создаёт Recorder
func NewRecorder(store Store, mode Mode, anonymize bool) *Recorder {
	return &Recorder{store: store, mode: mode, anonymize: anonymize}
}

// Mode возвращает режим записи
func (r *Recorder) Mode() Mode { return r.mode }

// Event собирает событие перехода. Адрес анонимизируется сразу, до любой передачи дальше,
// и вовсе не сохраняется в событии, если режим его не пишет.
func (r *Recorder) Event(slug, clientAddr string, at time.Time) models.VisitEvent {
	ev := models.VisitEvent{Slug: slug, Timestamp: at.UTC()}
	if r.mode != ModeFull {
		return ev
	}
	ev.ClientAddress = clientAddr
	if r.anonymize {
		ev.ClientAddress = AnonymizeIP(clientAddr)
		ev.Anonymized = true
	}
	return ev
}

// Record сохраняет событие согласно режиму. В режиме full счётчик тоже увеличивается.
func (r *Recorder) Record(ctx context.Context, ev models.VisitEvent) error {
	switch r.mode {
	case ModeNone:
		return nil
	case ModeCountOnly:
		if err := r.store.IncrementVisit(ctx, ev.Slug); err != nil {
			return fmt.Errorf("increment visit count: %w", err)
		}
		return nil
	case ModeFull:
		addr := ev.ClientAddress
		if r.anonymize && !ev.Anonymized {
			addr = AnonymizeIP(addr)
		}
		if err := r.store.IncrementVisit(ctx, ev.Slug); err != nil {
			return fmt.Errorf("increment visit count: %w", err)
		}
		rec := models.VisitRecord{Slug: ev.Slug, VisitedAt: ev.Timestamp, ClientAddress: addr}
		if err := r.store.AppendVisitRecord(ctx, rec); err != nil {
			return fmt.Errorf("append visit record: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown analytics mode %q", r.mode)
	}
}
