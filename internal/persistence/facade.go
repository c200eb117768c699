// Package persistence gives every resource collection the same list/create/update/delete
// contract over a remote store, falling back to the local key-value store when the
// remote store is unconfigured or unreachable.
//
// Reads degrade: remote failures are recorded and the local snapshot is served.
// Writes do not: a remote write failure is returned to the caller, unless the
// collection is configured as best-effort.
package persistence

import (
	"context"
	"errors"

	"github.com/wichananm65/xinchao-storefront/internal/apperr"
	"github.com/wichananm65/xinchao-storefront/internal/kvstore"
)

// Entity is anything with a stable string id.
type Entity interface {
	EntityID() string
}

// Remote is the remote side of a collection. List returns rows newest first.
type Remote[T Entity] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, v T) error
	Update(ctx context.Context, v T) error
	Delete(ctx context.Context, id string) error
	Replace(ctx context.Context, vs []T) error
}

// Options describes one collection.
type Options[T Entity] struct {
	// Resource names the collection in errors and metrics.
	Resource string
	// LocalKey is the key of the collection snapshot in the local store.
	LocalKey string
	// Cap bounds the local snapshot; zero means unbounded.
	Cap int
	// Prepend inserts new local entries at the front (newest first).
	Prepend bool
	// BestEffort makes remote write failures fall back to the local store
	// instead of being returned.
	BestEffort bool
	// Defaults returns the seed used when nothing is stored.
	Defaults func() []T
}

// Facade is the single reader/writer boundary of a collection.
type Facade[T Entity] struct {
	remote Remote[T]
	local  kvstore.Store
	rec    apperr.Recorder
	opts   Options[T]
}

// New builds a facade. A nil remote means the remote store is not configured;
// that decision is fixed for the lifetime of the facade.
func New[T Entity](remote Remote[T], local kvstore.Store, rec apperr.Recorder, opts Options[T]) *Facade[T] {
	if rec == nil {
		rec = apperr.Nop{}
	}
	return &Facade[T]{remote: remote, local: local, rec: rec, opts: opts}
}

func (f *Facade[T]) IsRemoteConfigured() bool {
	return f.remote != nil
}

func (f *Facade[T]) Resource() string {
	return f.opts.Resource
}

// List never fails: it returns remote rows, the local snapshot or the defaults.
func (f *Facade[T]) List(ctx context.Context) []T {
	if f.remote != nil {
		rows, err := f.remote.List(ctx)
		if err == nil {
			if len(rows) == 0 {
				return f.defaults()
			}
			return rows
		}
		f.rec.Record(ctx, apperr.New(apperr.RemoteUnavailable, "list", f.opts.Resource, err))
	}
	return f.loadLocal(ctx)
}

func (f *Facade[T]) Create(ctx context.Context, v T) error {
	if f.remote != nil {
		err := f.remote.Create(ctx, v)
		if err == nil {
			return nil
		}
		if !f.opts.BestEffort {
			return apperr.New(apperr.RemoteWriteFailed, "create", f.opts.Resource, err)
		}
		f.rec.Record(ctx, apperr.New(apperr.RemoteWriteFailed, "create", f.opts.Resource, err))
	}

	items := f.loadLocal(ctx)
	for _, it := range items {
		if it.EntityID() == v.EntityID() {
			return apperr.Validation("create", f.opts.Resource, apperr.FieldErrors{"id": "id already exists"})
		}
	}
	if f.opts.Prepend {
		items = append([]T{v}, items...)
	} else {
		items = append(items, v)
	}
	f.saveLocal(ctx, items)
	return nil
}

func (f *Facade[T]) Update(ctx context.Context, v T) error {
	if f.remote != nil {
		err := f.remote.Update(ctx, v)
		if err == nil {
			return nil
		}
		if !f.opts.BestEffort {
			return apperr.New(apperr.RemoteWriteFailed, "update", f.opts.Resource, err)
		}
		f.rec.Record(ctx, apperr.New(apperr.RemoteWriteFailed, "update", f.opts.Resource, err))
	}

	items := f.loadLocal(ctx)
	for i := range items {
		if items[i].EntityID() == v.EntityID() {
			items[i] = v
			f.saveLocal(ctx, items)
			return nil
		}
	}
	return nil
}

func (f *Facade[T]) Delete(ctx context.Context, id string) error {
	if f.remote != nil {
		err := f.remote.Delete(ctx, id)
		if err == nil {
			return nil
		}
		if !f.opts.BestEffort {
			return apperr.New(apperr.RemoteWriteFailed, "delete", f.opts.Resource, err)
		}
		f.rec.Record(ctx, apperr.New(apperr.RemoteWriteFailed, "delete", f.opts.Resource, err))
	}

	items := f.loadLocal(ctx)
	kept := make([]T, 0, len(items))
	for _, it := range items {
		if it.EntityID() != id {
			kept = append(kept, it)
		}
	}
	if len(kept) != len(items) {
		f.saveLocal(ctx, kept)
	}
	return nil
}

// Replace overwrites the whole collection.
func (f *Facade[T]) Replace(ctx context.Context, vs []T) error {
	if f.remote != nil {
		err := f.remote.Replace(ctx, vs)
		if err == nil {
			return nil
		}
		if !f.opts.BestEffort {
			return apperr.New(apperr.RemoteWriteFailed, "replace", f.opts.Resource, err)
		}
		f.rec.Record(ctx, apperr.New(apperr.RemoteWriteFailed, "replace", f.opts.Resource, err))
	}
	f.saveLocal(ctx, vs)
	return nil
}

func (f *Facade[T]) defaults() []T {
	if f.opts.Defaults == nil {
		return []T{}
	}
	return f.opts.Defaults()
}

func (f *Facade[T]) loadLocal(ctx context.Context) []T {
	var items []T
	err := kvstore.GetJSON(ctx, f.local, f.opts.LocalKey, &items)
	switch {
	case err == nil:
		if items == nil {
			items = []T{}
		}
		return items
	case errors.Is(err, kvstore.ErrNotFound):
	default:
		f.rec.Record(ctx, apperr.New(apperr.StorageUnavailable, "load", f.opts.LocalKey, err))
	}
	return f.defaults()
}

func (f *Facade[T]) saveLocal(ctx context.Context, items []T) {
	if f.opts.Cap > 0 && len(items) > f.opts.Cap {
		items = items[:f.opts.Cap]
	}
	if err := kvstore.SetJSON(ctx, f.local, f.opts.LocalKey, items); err != nil {
		f.rec.Record(ctx, apperr.New(apperr.StorageUnavailable, "save", f.opts.LocalKey, err))
	}
}
