package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/xinchao-storefront/internal/apperr"
	"github.com/wichananm65/xinchao-storefront/internal/kvstore"
)

func newTestSocialStore(t *testing.T) (*SocialStore, kvstore.Store) {
	t.Helper()
	kv := kvstore.NewMemory()
	s := NewSocialStore(kv, nil)
	clock := time.UnixMilli(1_700_000_000_000)
	s.now = func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}
	return s, kv
}

func TestSeededCount(t *testing.T) {
	// "ab": n = (0*31+97)%1000 = 97; n = (97*31+98)%1000 = 105
	assert.Equal(t, 80+105, SeededCount("ab"))
	assert.Equal(t, 80, SeededCount(""))
	for _, id := range []string{"bat-trang-bowl", "hoi-an-embroidery-pouch", "tương-bình-hiệp"} {
		n := SeededCount(id)
		assert.GreaterOrEqual(t, n, 80)
		assert.Less(t, n, 400)
		assert.Equal(t, n, SeededCount(id))
	}
}

func TestToggleLike_IsItsOwnInverse(t *testing.T) {
	s, _ := newTestSocialStore(t)
	ctx := context.Background()
	before := s.State(ctx, "v1", "bowl")

	liked := s.ToggleLike(ctx, "v1", "bowl")
	assert.True(t, liked.Liked)
	assert.Equal(t, before.LikeCount+1, liked.LikeCount)

	unliked := s.ToggleLike(ctx, "v1", "bowl")
	assert.Equal(t, before, unliked)
}

func TestToggleLike_CountFloorsAtZero(t *testing.T) {
	s, kv := newTestSocialStore(t)
	ctx := context.Background()
	require.NoError(t, kvstore.SetJSON(ctx, kv, stateKey("v1"), map[string]ItemState{
		"bowl": {Liked: true, LikeCount: 0},
	}))

	st := s.ToggleLike(ctx, "v1", "bowl")
	assert.False(t, st.Liked)
	assert.Equal(t, 0, st.LikeCount)
}

func TestDoubleTapThenToggle(t *testing.T) {
	s, kv := newTestSocialStore(t)
	ctx := context.Background()
	require.NoError(t, kvstore.SetJSON(ctx, kv, stateKey("v1"), map[string]ItemState{
		"bowl": {Liked: false, LikeCount: 0},
	}))

	st := s.Like(ctx, "v1", "bowl")
	assert.Equal(t, 1, st.LikeCount)
	assert.True(t, st.Liked)

	st = s.Like(ctx, "v1", "bowl")
	assert.Equal(t, 1, st.LikeCount)

	st = s.ToggleLike(ctx, "v1", "bowl")
	assert.Equal(t, 0, st.LikeCount)
	assert.False(t, st.Liked)
}

func TestToggleSave(t *testing.T) {
	s, _ := newTestSocialStore(t)
	ctx := context.Background()

	assert.True(t, s.ToggleSave(ctx, "v1", "bowl").Saved)
	assert.False(t, s.ToggleSave(ctx, "v1", "bowl").Saved)
}

func TestAddComment(t *testing.T) {
	s, _ := newTestSocialStore(t)
	ctx := context.Background()

	st, added := s.AddComment(ctx, "v1", "bowl", "   \t ")
	assert.False(t, added)
	assert.Empty(t, st.Comments)

	s.AddComment(ctx, "v1", "bowl", "first")
	st, added = s.AddComment(ctx, "v1", "bowl", "  hello ")
	require.True(t, added)
	require.Len(t, st.Comments, 2)
	assert.Equal(t, "hello", st.Comments[0].Text)
	assert.NotEmpty(t, st.Comments[0].ID)
	assert.Greater(t, st.Comments[0].CreatedAt, st.Comments[1].CreatedAt)
}

func TestComments_NewestFirstStable(t *testing.T) {
	s, kv := newTestSocialStore(t)
	ctx := context.Background()
	require.NoError(t, kvstore.SetJSON(ctx, kv, stateKey("v1"), map[string]ItemState{
		"bowl": {Comments: []Comment{
			{ID: "1", Text: "old", CreatedAt: 10},
			{ID: "2", Text: "same-a", CreatedAt: 20},
			{ID: "3", Text: "same-b", CreatedAt: 20},
			{ID: "4", Text: "new", CreatedAt: 30},
		}},
	}))

	var ids []string
	for _, c := range s.Comments(ctx, "v1", "bowl") {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"4", "2", "3", "1"}, ids)
}

func TestState_PersistedPerVisitor(t *testing.T) {
	s, kv := newTestSocialStore(t)
	ctx := context.Background()

	s.ToggleSave(ctx, "v1", "bowl")
	assert.False(t, s.State(ctx, "v2", "bowl").Saved)

	reopened := NewSocialStore(kv, nil)
	assert.True(t, reopened.State(ctx, "v1", "bowl").Saved)
}

func TestReset_LeavesOtherKeysAlone(t *testing.T) {
	s, kv := newTestSocialStore(t)
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, "xinChao_products", []byte(`[]`)))

	s.ToggleSave(ctx, "v1", "bowl")
	s.Reset(ctx, "v1")

	assert.False(t, s.State(ctx, "v1", "bowl").Saved)
	_, err := kv.Get(ctx, "xinChao_products")
	assert.NoError(t, err)
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, error) { return nil, errors.New("quota exceeded") }
func (brokenStore) Set(context.Context, string, []byte) error { return errors.New("quota exceeded") }
func (brokenStore) Remove(context.Context, string) error { return errors.New("quota exceeded") }

func TestSocialStore_StorageFailuresDegrade(t *testing.T) {
	rec := &apperr.MemoryRecorder{}
	s := NewSocialStore(brokenStore{}, rec)
	ctx := context.Background()

	st := s.ToggleLike(ctx, "v1", "bowl")
	assert.True(t, st.Liked)
	assert.Equal(t, SeededCount("bowl")+1, st.LikeCount)
	assert.Equal(t, 2, rec.Count(apperr.StorageUnavailable))
}

func TestSocialStore_MalformedSnapshotStartsFresh(t *testing.T) {
	rec := &apperr.MemoryRecorder{}
	kv := kvstore.NewMemory()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, stateKey("v1"), []byte(`{oops`)))
	s := NewSocialStore(kv, rec)

	assert.Equal(t, SeededCount("bowl"), s.State(ctx, "v1", "bowl").LikeCount)
	assert.Equal(t, 1, rec.Count(apperr.StorageUnavailable))
}
