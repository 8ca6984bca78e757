// Package inventory реализует игровые инвентари персонажей.
// Предметы хранятся стаками: ключ стака — (инвентарь, предмет, заточка).
package inventory

import "time"

// Inventory — инвентарь персонажа.
// У каждого персонажа может быть основной инвентарь (holding = false)
// и аукционный склад (holding = true), куда доставляются выигранные лоты.
type Inventory struct {
	ID            int64
	CharacterName string
	Holding       bool
	CreatedAt     time.Time
}

// Item — стак предметов в инвентаре.
// Количество не бывает отрицательным; стак с нулевым количеством удаляется.
type Item struct {
	ID          int64
	InventoryID int64
	ItemID      int
	Enchant     int
	Quantity    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
