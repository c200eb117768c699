package concierge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wichananm65/xinchao-storefront/internal/apperr"
	"github.com/wichananm65/xinchao-storefront/internal/kvstore"
)

func TestLeadStore_PerVisitor(t *testing.T) {
	ctx := context.Background()
	s := NewLeadStore(kvstore.NewMemory(), nil)

	assert.Equal(t, Lead{}, s.Get(ctx, "v1"))
	s.Put(ctx, "v1", Lead{Name: "Tanaka", Contact: "line:tanaka"})

	assert.Equal(t, Lead{Name: "Tanaka", Contact: "line:tanaka"}, s.Get(ctx, "v1"))
	assert.Equal(t, Lead{}, s.Get(ctx, "v2"))
}

type failingKV struct{}

func (failingKV) Get(context.Context, string) ([]byte, error) { return nil, errors.New("disk full") }
func (failingKV) Set(context.Context, string, []byte) error { return errors.New("disk full") }
func (failingKV) Remove(context.Context, string) error { return errors.New("disk full") }

func TestLeadStore_StorageFailureIsRecorded(t *testing.T) {
	ctx := context.Background()
	rec := &apperr.MemoryRecorder{}
	s := NewLeadStore(failingKV{}, rec)

	assert.Equal(t, Lead{Name: "Tanaka"}, s.Put(ctx, "v1", Lead{Name: "Tanaka"}))
	assert.Equal(t, Lead{}, s.Get(ctx, "v1"))
	assert.Equal(t, 2, rec.Count(apperr.StorageUnavailable))
}
