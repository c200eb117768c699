package concierge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/wichananm65/xinchao-storefront/internal/apperr"
	"github.com/wichananm65/xinchao-storefront/internal/catalog"
	"github.com/wichananm65/xinchao-storefront/internal/transcript"
	"go.uber.org/zap"
)

// DefaultSessionTTL is how long an untouched chat session stays open.
const DefaultSessionTTL = 30 * time.Minute

type ManagerConfig struct {
	Provider Provider
	Logger   Logger
	Leads    *LeadStore
	Recorder apperr.Recorder
	Log      *zap.Logger
	TTL      time.Duration
}

// Manager owns the open chat sessions.
type Manager struct {
	cfg ManagerConfig
	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Recorder == nil {
		cfg.Recorder = apperr.Nop{}
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSessionTTL
	}
	return &Manager{cfg: cfg, now: time.Now, sessions: map[string]*Session{}}
}

// Start opens a session about product (nil for a general consultation). The
// session opens with the greeting.
func (m *Manager) Start(visitor string, product *catalog.Item) *Session {
	var chat Chat
	if m.cfg.Provider != nil {
		chat = m.cfg.Provider.StartChat(ChatContext(product))
	}
	s := &Session{
		ID:       uuid.NewString(),
		Visitor:  visitor,
		Product:  product,
		chat:     chat,
		leads:    m.cfg.Leads,
		logger:   m.cfg.Logger,
		rec:      m.cfg.Recorder,
		messages: []transcript.Message{{Role: transcript.RoleAssistant, Content: greeting}},
		lastSeen: m.now(),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get returns an open session and marks it as used.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		s.touch(m.now())
	}
	return s, ok
}

// Close ends a session, logging its transcript.
func (m *Manager) Close(ctx context.Context, id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.close(ctx)
	}
}

// Sweep closes sessions idle for longer than the TTL and returns how many.
func (m *Manager) Sweep(ctx context.Context) int {
	now := m.now()
	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.idleSince(now) > m.cfg.TTL {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		s.close(ctx)
	}
	return len(idle)
}

// Run sweeps idle sessions until ctx is cancelled, then closes the rest so
// their transcripts are logged.
func (m *Manager) Run(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", m.cfg.TTL/2), func() {
		if n := m.Sweep(ctx); n > 0 {
			m.cfg.Log.Debug("chat sessions swept", zap.Int("closed", n))
		}
	}); err != nil {
		return fmt.Errorf("scheduling chat sweep: %w", err)
	}
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()

	m.mu.Lock()
	remaining := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		remaining = append(remaining, s)
	}
	m.sessions = map[string]*Session{}
	m.mu.Unlock()

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	for _, s := range remaining {
		s.close(shutdownCtx)
	}
	return nil
}
