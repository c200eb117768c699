package apperr

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Recorder receives errors that a call site decided not to propagate.
type Recorder interface {
	Record(ctx context.Context, err *Error)
}

// LogRecorder logs swallowed errors and counts them by kind and resource.
type LogRecorder struct {
	log     *zap.Logger
	counter *prometheus.CounterVec
}

// NewLogRecorder registers the swallowed-errors counter on reg.
func NewLogRecorder(log *zap.Logger, reg prometheus.Registerer) *LogRecorder {
	counter := promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "swallowed_errors_total",
		Help:      "Errors handled by degrading instead of failing the caller.",
	}, []string{"kind", "resource"})
	return &LogRecorder{log: log, counter: counter}
}

func (r *LogRecorder) Record(_ context.Context, err *Error) {
	if err == nil {
		return
	}
	r.counter.WithLabelValues(string(err.Kind), err.Resource).Inc()
	r.log.Warn("degraded",
		zap.String("kind", string(err.Kind)),
		zap.String("op", err.Op),
		zap.String("resource", err.Resource),
		zap.Error(err.Err),
	)
}

// MemoryRecorder keeps recorded errors in memory. Used by tests.
type MemoryRecorder struct {
	mu     sync.Mutex
	errors []*Error
}

func (r *MemoryRecorder) Record(_ context.Context, err *Error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, err)
}

// Errors returns a copy of everything recorded so far.
func (r *MemoryRecorder) Errors() []*Error {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Error, len(r.errors))
	copy(out, r.errors)
	return out
}

// Count returns how many errors of the given kind were recorded.
func (r *MemoryRecorder) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.errors {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Nop discards everything.
type Nop struct{}

func (Nop) Record(context.Context, *Error) {}
