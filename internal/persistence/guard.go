package persistence

import "context"

// Guard runs check before every call to remote. A failing check is returned as
// the call's error, so the facade degrades exactly as for a failed query.
func Guard[T Entity](remote Remote[T], check func(ctx context.Context) error) Remote[T] {
	return &guarded[T]{remote: remote, check: check}
}

type guarded[T Entity] struct {
	remote Remote[T]
	check  func(ctx context.Context) error
}

func (g *guarded[T]) List(ctx context.Context) ([]T, error) {
	if err := g.check(ctx); err != nil {
		return nil, err
	}
	return g.remote.List(ctx)
}

func (g *guarded[T]) Create(ctx context.Context, v T) error {
	if err := g.check(ctx); err != nil {
		return err
	}
	return g.remote.Create(ctx, v)
}

func (g *guarded[T]) Update(ctx context.Context, v T) error {
	if err := g.check(ctx); err != nil {
		return err
	}
	return g.remote.Update(ctx, v)
}

func (g *guarded[T]) Delete(ctx context.Context, id string) error {
	if err := g.check(ctx); err != nil {
		return err
	}
	return g.remote.Delete(ctx, id)
}

func (g *guarded[T]) Replace(ctx context.Context, vs []T) error {
	if err := g.check(ctx); err != nil {
		return err
	}
	return g.remote.Replace(ctx, vs)
}
