package catalog

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultPollInterval is how often consuming views re-list the catalog to pick
// up admin edits.
const DefaultPollInterval = 3 * time.Second

// Lister is the read side of the catalog.
type Lister interface {
	List(ctx context.Context) []Item
}

// Poller re-lists the catalog on a fixed schedule, keeps the latest snapshot and
// notifies subscribers when it changes.
type Poller struct {
	lister   Lister
	interval time.Duration
	log      *zap.Logger

	mu       sync.RWMutex
	snapshot []Item
	subs     []chan []Item
}

func NewPoller(lister Lister, interval time.Duration, log *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{lister: lister, interval: interval, log: log}
}

// Run refreshes once, then on every tick until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	p.Refresh(ctx)

	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", p.interval), func() { p.Refresh(ctx) }); err != nil {
		return fmt.Errorf("scheduling catalog poll: %w", err)
	}
	c.Start()
	p.log.Info("catalog poller started", zap.Duration("interval", p.interval))

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// Refresh lists the catalog and reports whether the snapshot changed.
func (p *Poller) Refresh(ctx context.Context) bool {
	items := p.lister.List(ctx)

	p.mu.Lock()
	if p.snapshot != nil && reflect.DeepEqual(p.snapshot, items) {
		p.mu.Unlock()
		return false
	}
	p.snapshot = items
	subs := make([]chan []Item, len(p.subs))
	copy(subs, p.subs)
	p.mu.Unlock()

	p.log.Debug("catalog changed", zap.Int("items", len(items)))
	for _, ch := range subs {
		// keep only the newest snapshot for slow subscribers
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- items:
		default:
		}
	}
	return true
}

// Snapshot returns the last listed catalog, listing it first if nothing was polled yet.
func (p *Poller) Snapshot(ctx context.Context) []Item {
	p.mu.RLock()
	snap := p.snapshot
	p.mu.RUnlock()
	if snap != nil {
		return snap
	}
	p.Refresh(ctx)
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot
}

// Subscribe returns a channel receiving every changed snapshot.
func (p *Poller) Subscribe() <-chan []Item {
	ch := make(chan []Item, 1)
	p.mu.Lock()
	p.subs = append(p.subs, ch)
	p.mu.Unlock()
	return ch
}

// IDs returns the ids of items in order.
func IDs(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}
