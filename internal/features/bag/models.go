// Package bag реализует сумку наград — второй инвентарь игрока,
// отдельный от игровых инвентарей персонажей. Сюда падают выигрыши
// из боксов и призы рулетки, откуда игрок забирает их в игру.
package bag

import "time"

// Bag — сумка наград, одна на пользователя.
type Bag struct {
	ID        int64
	UserID    int64
	CreatedAt time.Time
}

// Item — стак наград в сумке, ключ — (сумка, предмет, заточка).
type Item struct {
	ID        int64
	BagID     int64
	ItemID    int
	Enchant   int
	Name      string
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}
