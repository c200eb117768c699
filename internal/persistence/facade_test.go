package persistence

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/xinchao-storefront/internal/apperr"
	"github.com/wichananm65/xinchao-storefront/internal/kvstore"
)

type note struct {
	ID   string `json:"id"`
	Body string `json:"body"`
}

func (n note) EntityID() string { return n.ID }

type fakeRemote struct {
	rows     []note
	listErr  error
	writeErr error
	calls    []string
}

func (r *fakeRemote) List(context.Context) ([]note, error) {
	r.calls = append(r.calls, "list")
	return r.rows, r.listErr
}

func (r *fakeRemote) Create(_ context.Context, n note) error {
	r.calls = append(r.calls, "create")
	if r.writeErr != nil {
		return r.writeErr
	}
	r.rows = append([]note{n}, r.rows...)
	return nil
}

func (r *fakeRemote) Update(context.Context, note) error {
	r.calls = append(r.calls, "update")
	return r.writeErr
}

func (r *fakeRemote) Delete(context.Context, string) error {
	r.calls = append(r.calls, "delete")
	return r.writeErr
}

func (r *fakeRemote) Replace(context.Context, []note) error {
	r.calls = append(r.calls, "replace")
	return r.writeErr
}

// failingStore fails every operation, like a browser store in private mode.
type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, error) { return nil, errors.New("quota") }
func (failingStore) Set(context.Context, string, []byte) error { return errors.New("quota") }
func (failingStore) Remove(context.Context, string) error { return errors.New("quota") }

func seed() []note {
	return []note{{ID: "s1", Body: "seed one"}, {ID: "s2", Body: "seed two"}}
}

func localOnly(local kvstore.Store, rec apperr.Recorder) *Facade[note] {
	return New[note](nil, local, rec, Options[note]{Resource: "notes", LocalKey: "notes", Defaults: seed})
}

func TestLocal_ListReturnsDefaultsWhenEmpty(t *testing.T) {
	f := localOnly(kvstore.NewMemory(), nil)
	assert.False(t, f.IsRemoteConfigured())
	assert.Equal(t, seed(), f.List(context.Background()))
}

func TestLocal_CreateThenList(t *testing.T) {
	ctx := context.Background()
	f := localOnly(kvstore.NewMemory(), nil)

	require.NoError(t, f.Create(ctx, note{ID: "x", Body: "new"}))
	got := f.List(ctx)
	require.Len(t, got, 3)
	assert.Equal(t, note{ID: "x", Body: "new"}, got[2])
}

func TestLocal_CreateDuplicateIDIsRejected(t *testing.T) {
	ctx := context.Background()
	f := localOnly(kvstore.NewMemory(), nil)

	err := f.Create(ctx, note{ID: "s1", Body: "again"})
	require.True(t, apperr.Is(err, apperr.ValidationFailure))
	assert.Equal(t, seed(), f.List(ctx))
}

func TestLocal_UpdateMissingIsNoop(t *testing.T) {
	ctx := context.Background()
	f := localOnly(kvstore.NewMemory(), nil)

	require.NoError(t, f.Update(ctx, note{ID: "nope", Body: "?"}))
	assert.Equal(t, seed(), f.List(ctx))

	require.NoError(t, f.Update(ctx, note{ID: "s2", Body: "edited"}))
	assert.Equal(t, "edited", f.List(ctx)[1].Body)
}

func TestLocal_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := localOnly(kvstore.NewMemory(), nil)

	require.NoError(t, f.Delete(ctx, "missing"))
	require.NoError(t, f.Delete(ctx, "s1"))
	require.NoError(t, f.Delete(ctx, "s1"))
	assert.Equal(t, []note{{ID: "s2", Body: "seed two"}}, f.List(ctx))
}

func TestLocal_CapEvictsOldest(t *testing.T) {
	ctx := context.Background()
	f := New[note](nil, kvstore.NewMemory(), nil, Options[note]{
		Resource: "logs", LocalKey: "logs", Cap: 3, Prepend: true,
	})

	for i := 1; i <= 4; i++ {
		require.NoError(t, f.Create(ctx, note{ID: fmt.Sprint(i)}))
	}
	got := f.List(ctx)
	require.Len(t, got, 3)
	assert.Equal(t, "4", got[0].ID)
	assert.Equal(t, "2", got[2].ID)
}

func TestLocal_StorageUnavailableIsRecorded(t *testing.T) {
	ctx := context.Background()
	rec := &apperr.MemoryRecorder{}
	f := localOnly(failingStore{}, rec)

	assert.Equal(t, seed(), f.List(ctx))
	require.NoError(t, f.Create(ctx, note{ID: "x"}))
	assert.Equal(t, 3, rec.Count(apperr.StorageUnavailable))
}

func TestLocal_MalformedSnapshotFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	local := kvstore.NewMemory()
	require.NoError(t, local.Set(ctx, "notes", []byte(`{"oops":`)))
	rec := &apperr.MemoryRecorder{}

	f := localOnly(local, rec)
	assert.Equal(t, seed(), f.List(ctx))
	assert.Equal(t, 1, rec.Count(apperr.StorageUnavailable))
}

func TestRemote_ListErrorFallsBackToLocal(t *testing.T) {
	ctx := context.Background()
	local := kvstore.NewMemory()
	require.NoError(t, kvstore.SetJSON(ctx, local, "notes", []note{{ID: "cached"}}))
	rec := &apperr.MemoryRecorder{}
	remote := &fakeRemote{listErr: errors.New("dial tcp: refused")}

	f := New[note](remote, local, rec, Options[note]{Resource: "notes", LocalKey: "notes", Defaults: seed})
	assert.True(t, f.IsRemoteConfigured())
	assert.Equal(t, []note{{ID: "cached"}}, f.List(ctx))
	assert.Equal(t, 1, rec.Count(apperr.RemoteUnavailable))
}

func TestRemote_EmptyResultUsesDefaults(t *testing.T) {
	ctx := context.Background()
	local := kvstore.NewMemory()
	require.NoError(t, kvstore.SetJSON(ctx, local, "notes", []note{{ID: "cached"}}))
	rec := &apperr.MemoryRecorder{}

	f := New[note](&fakeRemote{}, local, rec, Options[note]{Resource: "notes", LocalKey: "notes", Defaults: seed})
	assert.Equal(t, seed(), f.List(ctx))
	assert.Empty(t, rec.Errors())

	noDefaults := New[note](&fakeRemote{}, local, rec, Options[note]{Resource: "logs", LocalKey: "logs"})
	assert.Empty(t, noDefaults.List(ctx))
}

func TestRemote_WriteFailurePropagates(t *testing.T) {
	ctx := context.Background()
	local := kvstore.NewMemory()
	remote := &fakeRemote{writeErr: errors.New("permission denied")}
	f := New[note](remote, local, nil, Options[note]{Resource: "notes", LocalKey: "notes", Defaults: seed})

	for name, op := range map[string]func() error{
		"create":  func() error { return f.Create(ctx, note{ID: "x"}) },
		"update":  func() error { return f.Update(ctx, note{ID: "s1"}) },
		"delete":  func() error { return f.Delete(ctx, "s1") },
		"replace": func() error { return f.Replace(ctx, nil) },
	} {
		err := op()
		require.Error(t, err, name)
		assert.True(t, apperr.Is(err, apperr.RemoteWriteFailed), name)
	}

	// nothing leaked into the local store
	_, err := local.Get(ctx, "notes")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestRemote_BestEffortWriteFallsBackToLocal(t *testing.T) {
	ctx := context.Background()
	local := kvstore.NewMemory()
	rec := &apperr.MemoryRecorder{}
	remote := &fakeRemote{writeErr: errors.New("timeout"), listErr: errors.New("timeout")}
	f := New[note](remote, local, rec, Options[note]{
		Resource: "logs", LocalKey: "logs", Cap: 100, Prepend: true, BestEffort: true,
	})

	require.NoError(t, f.Create(ctx, note{ID: "t1"}))
	assert.Equal(t, 1, rec.Count(apperr.RemoteWriteFailed))
	assert.Equal(t, []note{{ID: "t1"}}, f.List(ctx))
}

func TestRemote_SuccessDoesNotTouchLocal(t *testing.T) {
	ctx := context.Background()
	local := kvstore.NewMemory()
	remote := &fakeRemote{}
	f := New[note](remote, local, nil, Options[note]{Resource: "notes", LocalKey: "notes"})

	require.NoError(t, f.Create(ctx, note{ID: "r1"}))
	assert.Equal(t, []note{{ID: "r1"}}, f.List(ctx))
	assert.Equal(t, []string{"create", "list"}, remote.calls)

	_, err := local.Get(ctx, "notes")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestLocal_Replace(t *testing.T) {
	ctx := context.Background()
	f := localOnly(kvstore.NewMemory(), nil)

	require.NoError(t, f.Replace(ctx, []note{{ID: "only"}}))
	assert.Equal(t, []note{{ID: "only"}}, f.List(ctx))

	require.NoError(t, f.Replace(ctx, []note{}))
	assert.Empty(t, f.List(ctx))
}
