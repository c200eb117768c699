package transcript

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/wichananm65/xinchao-storefront/internal/persistence"
)

const (
	// LocalKey is the local-store key of the chat-log snapshot.
	LocalKey = "xinChao_chatLogs"
	// LocalCap is how many chat logs the local snapshot retains, newest first.
	LocalCap = 100
)

// StoreOptions describes the chat-log collection. Logging a chat must never
// interrupt the visitor, so remote write failures fall back to the local store.
func StoreOptions() persistence.Options[Transcript] {
	return persistence.Options[Transcript]{
		Resource:   "chat_logs",
		LocalKey:   LocalKey,
		Cap:        LocalCap,
		Prepend:    true,
		BestEffort: true,
	}
}

type Service struct {
	store *persistence.Facade[Transcript]
	now   func() time.Time
}

func NewService(store *persistence.Facade[Transcript]) *Service {
	return &Service{store: store, now: time.Now}
}

// Log persists a finished conversation, assigning its id and timestamp when unset.
func (s *Service) Log(ctx context.Context, t Transcript) (Transcript, error) {
	now := s.now()
	if t.Timestamp == 0 {
		t.Timestamp = now.UnixMilli()
	}
	if t.ID == "" {
		t.ID = ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()
	}
	if t.Messages == nil {
		t.Messages = []Message{}
	}
	if err := s.store.Create(ctx, t); err != nil {
		return Transcript{}, err
	}
	return t, nil
}

func (s *Service) List(ctx context.Context) []Transcript {
	return s.store.List(ctx)
}

// Search filters the listed chat logs by a case-insensitive term.
func (s *Service) Search(ctx context.Context, term string) []Transcript {
	all := s.store.List(ctx)
	out := make([]Transcript, 0, len(all))
	for _, t := range all {
		if t.Matches(term) {
			out = append(out, t)
		}
	}
	return out
}

func (s *Service) Get(ctx context.Context, id string) (Transcript, error) {
	for _, t := range s.store.List(ctx) {
		if t.ID == id {
			return t, nil
		}
	}
	return Transcript{}, ErrNotFound
}
