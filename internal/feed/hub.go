package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/wichananm65/xinchao-storefront/internal/apperr"
	"github.com/wichananm65/xinchao-storefront/internal/catalog"
	"go.uber.org/zap"
)

// DefaultSessionTTL is how long an untouched feed session is kept.
const DefaultSessionTTL = 30 * time.Minute

// Session is one client's feed view.
type Session struct {
	ID         string
	Controller *Controller
	Player     *CommandBuffer

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

type HubConfig struct {
	TTL      time.Duration
	Recorder apperr.Recorder
	Log      *zap.Logger
	// OnActivate is called whenever a session's active item changes.
	OnActivate func(sessionID, itemID string)
}

// Hub owns the live feed sessions.
type Hub struct {
	cfg HubConfig
	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewHub(cfg HubConfig) *Hub {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSessionTTL
	}
	if cfg.Recorder == nil {
		cfg.Recorder = apperr.Nop{}
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	return &Hub{cfg: cfg, now: time.Now, sessions: map[string]*Session{}}
}

// Open starts a session tracking ids.
func (h *Hub) Open(ids []string) *Session {
	player := NewCommandBuffer()
	s := &Session{
		ID:         uuid.NewString(),
		Controller: NewController(player, h.cfg.Recorder),
		Player:     player,
		lastSeen:   h.now(),
	}
	if h.cfg.OnActivate != nil {
		hook := h.cfg.OnActivate
		s.Controller.OnActivate(func(itemID string) { hook(s.ID, itemID) })
	}
	s.Controller.Track(ids)

	h.mu.Lock()
	h.sessions[s.ID] = s
	h.mu.Unlock()
	return s
}

// Get returns a live session and marks it as used.
func (h *Hub) Get(id string) (*Session, bool) {
	h.mu.RLock()
	s, ok := h.sessions[id]
	h.mu.RUnlock()
	if ok {
		s.touch(h.now())
	}
	return s, ok
}

func (h *Hub) Close(id string) {
	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Sweep closes sessions idle for longer than the TTL and returns how many.
func (h *Hub) Sweep() int {
	now := h.now()
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for id, s := range h.sessions {
		if s.idleSince(now) > h.cfg.TTL {
			delete(h.sessions, id)
			n++
		}
	}
	return n
}

// Retrack points every live session at a new set of catalog ids.
func (h *Hub) Retrack(ids []string) {
	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	for _, s := range sessions {
		s.Controller.Track(ids)
	}
}

// Run retracks sessions on every catalog change and sweeps idle sessions
// until ctx is cancelled.
func (h *Hub) Run(ctx context.Context, updates <-chan []catalog.Item) error {
	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", h.cfg.TTL/2), func() {
		if n := h.Sweep(); n > 0 {
			h.cfg.Log.Debug("feed sessions swept", zap.Int("closed", n))
		}
	}); err != nil {
		return fmt.Errorf("scheduling feed sweep: %w", err)
	}
	c.Start()
	defer func() { <-c.Stop().Done() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case items := <-updates:
			h.Retrack(catalog.IDs(items))
			h.cfg.Log.Debug("feed sessions retracked", zap.Int("items", len(items)))
		}
	}
}

// ActiveItem returns the active item of a session, "" when there is none.
func (h *Hub) ActiveItem(sessionID string) string {
	h.mu.RLock()
	s, ok := h.sessions[sessionID]
	h.mu.RUnlock()
	if !ok {
		return ""
	}
	return s.Controller.Active()
}
