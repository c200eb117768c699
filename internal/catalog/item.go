package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wichananm65/xinchao-storefront/internal/apperr"
)

var ErrNotFound = errors.New("product not found")

// Item is a sellable artisan product. JSON tags follow the camelCase names the
// storefront client and the local snapshots use.
type Item struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Price        int      `json:"price"`
	ShortStory   string   `json:"shortStory"`
	FullStory    string   `json:"fullStory"`
	MakerName    string   `json:"makerName"`
	MakerStory   string   `json:"makerStory"`
	Region       string   `json:"region"`
	RegionInfo   string   `json:"regionInfo"`
	MaterialInfo string   `json:"materialInfo"`
	UsageTips    string   `json:"usageTips"`
	VideoURL     string   `json:"videoUrl"`
	ThumbnailURL string   `json:"thumbnailUrl"`
	Images       []string `json:"images"`
}

func (i Item) EntityID() string { return i.ID }

// Validate returns a ValidationFailure listing every problem at once.
func (i Item) Validate() error {
	errs := apperr.FieldErrors{}
	if strings.TrimSpace(i.Name) == "" {
		errs["name"] = "name is required"
	}
	if i.Price == 0 {
		errs["price"] = "price is required"
	} else if i.Price < 0 {
		errs["price"] = "price must be >= 0"
	}
	return apperr.Validation("validate", "products", errs)
}

// ShareText is the clipboard text offered by the feed's share button.
func (i Item) ShareText() string {
	return fmt.Sprintf("Xin Chào\n%s\n%s\n（ベトナム在住オーナーに買い付け相談できます）", i.Name, i.ShortStory)
}

// ChatContext describes the item to the concierge.
func (i Item) ChatContext() string {
	return fmt.Sprintf("商品名: %s\nストーリー: %s\n作り手: %s", i.Name, i.FullStory, i.MakerName)
}
