package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/wichananm65/xinchao-storefront/internal/apperr"
	"github.com/wichananm65/xinchao-storefront/internal/persistence"
)

// LocalKey is the local-store key of the catalog snapshot.
const LocalKey = "xinChao_products"

type Service struct {
	store *persistence.Facade[Item]
}

func NewService(store *persistence.Facade[Item]) *Service {
	return &Service{store: store}
}

// StoreOptions describes the catalog collection. Catalog writes are strict: a
// failed remote write is returned to the admin so they can retry.
func StoreOptions() persistence.Options[Item] {
	return persistence.Options[Item]{
		Resource: "products",
		LocalKey: LocalKey,
		Defaults: DefaultItems,
	}
}

func (s *Service) IsRemoteConfigured() bool {
	return s.store.IsRemoteConfigured()
}

func (s *Service) List(ctx context.Context) []Item {
	return s.store.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id string) (Item, error) {
	for _, it := range s.store.List(ctx) {
		if it.ID == id {
			return it, nil
		}
	}
	return Item{}, ErrNotFound
}

// Create validates the item and assigns an id when the editor did not send one.
// An id that is already listed is rejected.
func (s *Service) Create(ctx context.Context, it Item) (Item, error) {
	if err := it.Validate(); err != nil {
		return Item{}, err
	}
	if it.ID == "" {
		it.ID = uuid.NewString()
	} else if _, err := s.GetByID(ctx, it.ID); err == nil {
		return Item{}, apperr.Validation("create", "products", apperr.FieldErrors{"id": "id already exists"})
	}
	if it.Images == nil {
		it.Images = []string{}
	}
	if err := s.store.Create(ctx, it); err != nil {
		return Item{}, err
	}
	return it, nil
}

func (s *Service) Update(ctx context.Context, id string, it Item) (Item, error) {
	if err := it.Validate(); err != nil {
		return Item{}, err
	}
	it.ID = id
	if it.Images == nil {
		it.Images = []string{}
	}
	if err := s.store.Update(ctx, it); err != nil {
		return Item{}, err
	}
	return it, nil
}

// UpdateVideo replaces only the primary video reference of an item.
func (s *Service) UpdateVideo(ctx context.Context, id, videoURL string) (Item, error) {
	it, err := s.GetByID(ctx, id)
	if err != nil {
		return Item{}, err
	}
	it.VideoURL = videoURL
	if err := s.store.Update(ctx, it); err != nil {
		return Item{}, err
	}
	return it, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Reset replaces the whole catalog (used for seeding).
func (s *Service) Reset(ctx context.Context, items []Item) error {
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
		if items[i].Images == nil {
			items[i].Images = []string{}
		}
	}
	return s.store.Replace(ctx, items)
}
