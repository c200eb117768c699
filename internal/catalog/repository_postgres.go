package catalog

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresRepository is the remote side of the catalog. It maps to the
// `products` table, whose columns are the snake_case names of Item's fields.
type PostgresRepository struct {
	db *sqlx.DB
}

type itemRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Price        int            `db:"price"`
	ShortStory   string         `db:"short_story"`
	FullStory    string         `db:"full_story"`
	MakerName    string         `db:"maker_name"`
	MakerStory   string         `db:"maker_story"`
	Region       string         `db:"region"`
	RegionInfo   string         `db:"region_info"`
	MaterialInfo string         `db:"material_info"`
	UsageTips    string         `db:"usage_tips"`
	VideoURL     string         `db:"video_url"`
	ThumbnailURL string         `db:"thumbnail_url"`
	Images       pq.StringArray `db:"images"`
}

const (
	listItemsQuery = `
		SELECT id, name, price, short_story, full_story, maker_name, maker_story, region, region_info,
			material_info, usage_tips, video_url, thumbnail_url, images
		FROM products
		ORDER BY created_at DESC
	`
	insertItemQuery = `
		INSERT INTO products (id, name, price, short_story, full_story, maker_name, maker_story, region,
			region_info, material_info, usage_tips, video_url, thumbnail_url, images)
		VALUES (:id, :name, :price, :short_story, :full_story, :maker_name, :maker_story, :region,
			:region_info, :material_info, :usage_tips, :video_url, :thumbnail_url, :images)
	`
	updateItemQuery = `
		UPDATE products
		SET name = :name,
			price = :price,
			short_story = :short_story,
			full_story = :full_story,
			maker_name = :maker_name,
			maker_story = :maker_story,
			region = :region,
			region_info = :region_info,
			material_info = :material_info,
			usage_tips = :usage_tips,
			video_url = :video_url,
			thumbnail_url = :thumbnail_url,
			images = :images,
			updated_at = now()
		WHERE id = :id
	`
	deleteItemQuery     = `DELETE FROM products WHERE id = $1`
	deleteAllItemsQuery = `DELETE FROM products`
)

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]Item, error) {
	var rows []itemRow
	if err := r.db.SelectContext(ctx, &rows, listItemsQuery); err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	out := make([]Item, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToItem(row))
	}
	return out, nil
}

func (r *PostgresRepository) Create(ctx context.Context, it Item) error {
	if _, err := r.db.NamedExecContext(ctx, insertItemQuery, itemToRow(it)); err != nil {
		return fmt.Errorf("inserting product %s: %w", it.ID, err)
	}
	return nil
}

// Update matches by id. Updating a missing row is not an error.
func (r *PostgresRepository) Update(ctx context.Context, it Item) error {
	if _, err := r.db.NamedExecContext(ctx, updateItemQuery, itemToRow(it)); err != nil {
		return fmt.Errorf("updating product %s: %w", it.ID, err)
	}
	return nil
}

// Delete is idempotent: a missing id affects no rows and succeeds.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, deleteItemQuery, id); err != nil {
		return fmt.Errorf("deleting product %s: %w", id, err)
	}
	return nil
}

// Replace deletes all products and inserts the provided list in a single transaction.
func (r *PostgresRepository) Replace(ctx context.Context, items []Item) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, deleteAllItemsQuery); err != nil {
		return fmt.Errorf("clearing products: %w", err)
	}
	for _, it := range items {
		if _, err := tx.NamedExecContext(ctx, insertItemQuery, itemToRow(it)); err != nil {
			return fmt.Errorf("inserting product %s: %w", it.ID, err)
		}
	}
	return tx.Commit()
}

func itemToRow(it Item) itemRow {
	images := pq.StringArray(it.Images)
	if images == nil {
		images = pq.StringArray{}
	}
	return itemRow{
		ID:           it.ID,
		Name:         it.Name,
		Price:        it.Price,
		ShortStory:   it.ShortStory,
		FullStory:    it.FullStory,
		MakerName:    it.MakerName,
		MakerStory:   it.MakerStory,
		Region:       it.Region,
		RegionInfo:   it.RegionInfo,
		MaterialInfo: it.MaterialInfo,
		UsageTips:    it.UsageTips,
		VideoURL:     it.VideoURL,
		ThumbnailURL: it.ThumbnailURL,
		Images:       images,
	}
}

func rowToItem(row itemRow) Item {
	images := []string(row.Images)
	if images == nil {
		images = []string{}
	}
	return Item{
		ID:           row.ID,
		Name:         row.Name,
		Price:        row.Price,
		ShortStory:   row.ShortStory,
		FullStory:    row.FullStory,
		MakerName:    row.MakerName,
		MakerStory:   row.MakerStory,
		Region:       row.Region,
		RegionInfo:   row.RegionInfo,
		MaterialInfo: row.MaterialInfo,
		UsageTips:    row.UsageTips,
		VideoURL:     row.VideoURL,
		ThumbnailURL: row.ThumbnailURL,
		Images:       images,
	}
}
