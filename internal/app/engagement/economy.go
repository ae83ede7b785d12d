package engagement

import (
	"github.com/lifequest/lifequest/internal/domain"
)

// AddCoins credits soft currency. Non-positive amounts are ignored.
func (e *Engine) AddCoins(amount int) {
	if amount <= 0 {
		return
	}
	e.addCoins(amount)
	e.commit()
}

func (e *Engine) addCoins(amount int) {
	if amount > 0 {
		e.state.Coins = satAdd(e.state.Coins, amount)
	}
}

// debitCoins removes amount if affordable. Nothing changes otherwise.
func (e *Engine) debitCoins(amount int) bool {
	if amount < 0 || e.state.Coins < amount {
		return false
	}
	e.state.Coins -= amount
	return true
}

// PurchaseItem buys one item from the catalog.
// Fails without any change if the item is unknown, unaffordable, or an
// already-owned non-repeatable item. Debit and inventory grant happen together.
func (e *Engine) PurchaseItem(itemID string) bool {
	item, ok := e.catalog.Item(itemID)
	if !ok {
		return false
	}
	if !item.Repeatable && e.owns(itemID) {
		return false
	}
	if !e.debitCoins(item.Cost) {
		return false
	}
	e.state.Inventory = append(e.state.Inventory, itemID)
	e.emit(domain.EventItemPurchased, itemID, item.Cost)
	e.commit()
	return true
}

// EquipItem puts an owned, equippable item in its category slot.
func (e *Engine) EquipItem(itemID string) bool {
	item, ok := e.catalog.Item(itemID)
	if !ok || !item.Equippable() || !e.owns(itemID) {
		return false
	}
	if e.state.Equipped == nil {
		e.state.Equipped = map[string]string{}
	}
	e.state.Equipped[string(item.Category)] = itemID
	e.commit()
	return true
}

// ShopItems lists the catalog.
func (e *Engine) ShopItems() []domain.ShopItem {
	return e.catalog.Items()
}

func (e *Engine) owns(itemID string) bool {
	for _, id := range e.state.Inventory {
		if id == itemID {
			return true
		}
	}
	return false
}

// consumeItem removes one copy of itemID from the inventory.
func (e *Engine) consumeItem(itemID string) bool {
	for i, id := range e.state.Inventory {
		if id == itemID {
			e.state.Inventory = append(e.state.Inventory[:i:i], e.state.Inventory[i+1:]...)
			return true
		}
	}
	return false
}
