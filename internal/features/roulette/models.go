// Package roulette реализует рулетку портала: спин за фишку
// и взвешенный розыгрыш приза из пула.
// models.go описывает структуры данных рулетки.
package roulette

import "time"

// Prize — приз рулетки. Вероятность выпадения пропорциональна Weight.
type Prize struct {
	ID        int64
	Name      string
	ItemID    int
	Enchant   int
	Weight    float64
	Enabled   bool
	CreatedAt time.Time
}

// Spin — запись истории спинов, только дописывается.
type Spin struct {
	ID        int64
	UserID    int64
	PrizeID   int64
	CreatedAt time.Time
}
