package feed

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf16"

	"github.com/google/uuid"
	"github.com/wichananm65/xinchao-storefront/internal/apperr"
	"github.com/wichananm65/xinchao-storefront/internal/kvstore"
)

// StateKey is the local-store key of the social state. It is kept apart from
// the catalog snapshot so resetting one never touches the other.
const StateKey = "xinChaoReelsState:v1"

type Comment struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"`
}

// ItemState is a visitor's social state for one catalog item.
type ItemState struct {
	Liked     bool      `json:"liked"`
	Saved     bool      `json:"saved"`
	LikeCount int       `json:"likeCount"`
	Comments  []Comment `json:"comments"`
}

// SeededCount is the deterministic starting like count of an item id.
func SeededCount(id string) int {
	n := 0
	for _, code := range utf16.Encode([]rune(id)) {
		n = (n*31 + int(code)) % 1000
	}
	return 80 + n%320
}

func defaultState(id string) ItemState {
	return ItemState{LikeCount: SeededCount(id), Comments: []Comment{}}
}

// SocialStore persists like/save/comment state per visitor. Every mutation is
// written through; state is materialised lazily on first interaction.
type SocialStore struct {
	mu    sync.Mutex
	store kvstore.Store
	rec   apperr.Recorder
	now   func() time.Time
}

func NewSocialStore(store kvstore.Store, rec apperr.Recorder) *SocialStore {
	if rec == nil {
		rec = apperr.Nop{}
	}
	return &SocialStore{store: store, rec: rec, now: time.Now}
}

func stateKey(visitor string) string {
	return StateKey + ":" + visitor
}

// State returns the stored state of id, or its seeded default.
func (s *SocialStore) State(ctx context.Context, visitor, id string) ItemState {
	s.mu.Lock()
	defer s.mu.Unlock()
	states := s.load(ctx, visitor)
	if st, ok := states[id]; ok {
		return st
	}
	return defaultState(id)
}

// States returns the state of every id in ids.
func (s *SocialStore) States(ctx context.Context, visitor string, ids []string) map[string]ItemState {
	s.mu.Lock()
	defer s.mu.Unlock()
	states := s.load(ctx, visitor)
	out := make(map[string]ItemState, len(ids))
	for _, id := range ids {
		st, ok := states[id]
		if !ok {
			st = defaultState(id)
		}
		out[id] = st
	}
	return out
}

// ToggleLike flips liked. Unliking never takes the count below zero.
func (s *SocialStore) ToggleLike(ctx context.Context, visitor, id string) ItemState {
	return s.mutate(ctx, visitor, id, func(st *ItemState) bool {
		if st.Liked {
			st.Liked = false
			if st.LikeCount > 0 {
				st.LikeCount--
			}
			return true
		}
		st.Liked = true
		st.LikeCount++
		return true
	})
}

// Like is the double-tap gesture: it likes once and is a no-op when already liked.
func (s *SocialStore) Like(ctx context.Context, visitor, id string) ItemState {
	return s.mutate(ctx, visitor, id, func(st *ItemState) bool {
		if st.Liked {
			return false
		}
		st.Liked = true
		st.LikeCount++
		return true
	})
}

func (s *SocialStore) ToggleSave(ctx context.Context, visitor, id string) ItemState {
	return s.mutate(ctx, visitor, id, func(st *ItemState) bool {
		st.Saved = !st.Saved
		return true
	})
}

// AddComment prepends a trimmed comment. Blank text is ignored and reported
// through the returned bool.
func (s *SocialStore) AddComment(ctx context.Context, visitor, id, text string) (ItemState, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return s.State(ctx, visitor, id), false
	}
	st := s.mutate(ctx, visitor, id, func(st *ItemState) bool {
		c := Comment{ID: uuid.NewString(), Text: text, CreatedAt: s.now().UnixMilli()}
		st.Comments = append([]Comment{c}, st.Comments...)
		return true
	})
	return st, true
}

// Comments lists the comments of id newest first; equal timestamps keep their stored order.
func (s *SocialStore) Comments(ctx context.Context, visitor, id string) []Comment {
	comments := append([]Comment{}, s.State(ctx, visitor, id).Comments...)
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt > comments[j].CreatedAt
	})
	return comments
}

// Reset drops all of the visitor's social state.
func (s *SocialStore) Reset(ctx context.Context, visitor string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Remove(ctx, stateKey(visitor)); err != nil {
		s.rec.Record(ctx, apperr.New(apperr.StorageUnavailable, "reset", stateKey(visitor), err))
	}
}

func (s *SocialStore) mutate(ctx context.Context, visitor, id string, fn func(*ItemState) bool) ItemState {
	s.mu.Lock()
	defer s.mu.Unlock()

	states := s.load(ctx, visitor)
	st, ok := states[id]
	if !ok {
		st = defaultState(id)
	}
	if !fn(&st) {
		return st
	}
	states[id] = st
	if err := kvstore.SetJSON(ctx, s.store, stateKey(visitor), states); err != nil {
		s.rec.Record(ctx, apperr.New(apperr.StorageUnavailable, "save", stateKey(visitor), err))
	}
	return st
}

func (s *SocialStore) load(ctx context.Context, visitor string) map[string]ItemState {
	states := map[string]ItemState{}
	err := kvstore.GetJSON(ctx, s.store, stateKey(visitor), &states)
	switch {
	case err == nil:
		if states == nil {
			states = map[string]ItemState{}
		}
		for id, st := range states {
			if st.Comments == nil {
				st.Comments = []Comment{}
				states[id] = st
			}
		}
		return states
	case errors.Is(err, kvstore.ErrNotFound):
	default:
		s.rec.Record(ctx, apperr.New(apperr.StorageUnavailable, "load", stateKey(visitor), err))
	}
	return map[string]ItemState{}
}
