package kvstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the same contract checks against every backend.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "k", []byte("v1")))
	require.NoError(t, s.Set(ctx, "k", []byte("v2")))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))

	require.NoError(t, s.Remove(ctx, "k"))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	// removing an absent key is fine
	require.NoError(t, s.Remove(ctx, "k"))

	type doc struct {
		Name  string   `json:"name"`
		Items []string `json:"items"`
	}
	require.NoError(t, SetJSON(ctx, s, "doc", doc{Name: "gốm", Items: []string{"a", "b"}}))
	var d doc
	require.NoError(t, GetJSON(ctx, s, "doc", &d))
	assert.Equal(t, "gốm", d.Name)
	assert.Equal(t, []string{"a", "b"}, d.Items)
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestSQLite(t *testing.T) {
	s, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestSQLite_File(t *testing.T) {
	path := t.TempDir() + "/data/local.db"
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), "k", []byte("kept")))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "kept", string(got))
}

func TestRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := OpenRedis(RedisConfig{Address: mr.Addr(), Prefix: "xinchao:"})
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)

	require.NoError(t, s.Set(context.Background(), "prefixed", []byte("x")))
	assert.True(t, mr.Exists("xinchao:prefixed"))
}

func TestOpenRedis_EmptyAddress(t *testing.T) {
	s, err := OpenRedis(RedisConfig{})
	assert.ErrorIs(t, err, ErrEmptyAddress)
	assert.Nil(t, s)
}

func TestGetJSON_Malformed(t *testing.T) {
	s := NewMemory()
	require.NoError(t, s.Set(context.Background(), "bad", []byte("{not json")))
	var v map[string]any
	err := GetJSON(context.Background(), s, "bad", &v)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
