package engagement

import (
	"github.com/lifequest/lifequest/internal/domain"
)

// Catalog resolves shop items. The engine only reads it.
type Catalog interface {
	Item(id string) (domain.ShopItem, bool)
	Items() []domain.ShopItem
}

// StaticCatalog is an in-memory catalog.
type StaticCatalog struct {
	items []domain.ShopItem
	byID  map[string]domain.ShopItem
}

// NewStaticCatalog indexes items by id. Later duplicates win.
func NewStaticCatalog(items []domain.ShopItem) *StaticCatalog {
	c := &StaticCatalog{
		items: append([]domain.ShopItem(nil), items...),
		byID:  make(map[string]domain.ShopItem, len(items)),
	}
	for _, it := range items {
		c.byID[it.ID] = it
	}
	return c
}

// Item looks up one item.
func (c *StaticCatalog) Item(id string) (domain.ShopItem, bool) {
	it, ok := c.byID[id]
	return it, ok
}

// Items returns every item in catalog order.
func (c *StaticCatalog) Items() []domain.ShopItem {
	return append([]domain.ShopItem(nil), c.items...)
}

// DefaultCatalog returns the built-in shop.
func DefaultCatalog() *StaticCatalog {
	return NewStaticCatalog([]domain.ShopItem{
		{ID: "theme_forest", Name: "Forest Theme", Category: domain.ItemTheme, Cost: 150, Icon: "🌲"},
		{ID: "theme_ocean", Name: "Ocean Theme", Category: domain.ItemTheme, Cost: 150, Icon: "🌊"},
		{ID: "theme_ember", Name: "Ember Theme", Category: domain.ItemTheme, Cost: 300, Icon: "🔥"},
		{ID: "frame_silver", Name: "Silver Frame", Category: domain.ItemFrame, Cost: 200, Icon: "🥈"},
		{ID: "frame_gold", Name: "Gold Frame", Category: domain.ItemFrame, Cost: 500, Icon: "🥇"},
		{ID: StreakFreezeItem, Name: "Streak Freeze", Category: domain.ItemConsumable, Cost: 100, Repeatable: true, Icon: "🧊"},
	})
}

// DefaultTierCaps maps package tiers to their daily AI token cap.
func DefaultTierCaps() map[domain.PackageTier]int {
	return map[domain.PackageTier]int{
		domain.TierFree: 25,
		domain.TierPlus: 60,
		domain.TierPro:  150,
	}
}
