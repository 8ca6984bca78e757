// Package boxes реализует гача-боксы портала: покупка бокса,
// наполнение наградами по шансам редкостей и открытие со взвешенным
// розыгрышем. models.go описывает структуры данных боксов.
package boxes

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rarity — редкость награды.
type Rarity string

const (
	RarityLegendary Rarity = "legendary"
	RarityEpic      Rarity = "epic"
	RarityRare      Rarity = "rare"
	RarityCommon    Rarity = "common"
)

// BoxType — конфигурация покупаемого бокса: цена, число слотов
// и шансы редкостей. Четыре шанса в сумме дают ровно 100 —
// это проверяется при создании/изменении типа, не при розыгрыше.
type BoxType struct {
	ID              int64
	Name            string
	Price           decimal.Decimal
	BoostersAmount  int
	ChanceLegendary float64
	ChanceEpic      float64
	ChanceRare      float64
	ChanceCommon    float64
	Enabled         bool
	CreatedAt       time.Time
}

// TypeItem — предмет, разрешённый для данного типа бокса.
type TypeItem struct {
	ID        int64
	BoxTypeID int64
	ItemID    int
	Enchant   int
	Name      string
	Rarity    Rarity
}

// Box — купленный экземпляр бокса. Открывается один раз.
type Box struct {
	ID        int64
	UserID    int64
	BoxTypeID int64
	Opened    bool
	CreatedAt time.Time
	OpenedAt  *time.Time
}

// BoxItem — заранее разыгранный слот награды внутри бокса.
// Probability — вес слота во взвешенном розыгрыше при открытии.
type BoxItem struct {
	ID          int64
	BoxID       int64
	ItemID      int
	Enchant     int
	Name        string
	Rarity      Rarity
	Probability float64
}
