// Package wallet реализует кошелёк игрока и леджер транзакций.
// models.go описывает структуры данных кошелька.
package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction — направление движения средств в леджере.
// Словарь унаследован от бразильского игрового сообщества:
// ENTRADA — приход, SAIDA — расход.
type Direction string

const (
	DirectionEntrada Direction = "ENTRADA"
	DirectionSaida   Direction = "SAIDA"
)

// Valid проверяет, что направление одно из двух допустимых.
func (d Direction) Valid() bool {
	return d == DirectionEntrada || d == DirectionSaida
}

// Wallet — кошелёк игрока. Одна запись на пользователя.
// Balance и BonusBalance — кэшированные проекции леджера:
// меняются ТОЛЬКО через Apply/ApplyBonus, напрямую — никогда.
// Fichas — фишки рулетки, отдельная целочисленная валюта.
type Wallet struct {
	ID           int64
	UserID       int64
	Balance      decimal.Decimal
	BonusBalance decimal.Decimal
	Fichas       int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Entry — неизменяемая запись леджера. Создаётся один раз, не обновляется.
// Основной и бонусный леджеры имеют одинаковую форму, но живут
// в разных таблицах и никогда не смешиваются.
type Entry struct {
	ID          int64
	WalletID    int64
	Direction   Direction
	Amount      decimal.Decimal
	Description string
	Origin      string
	Destination string
	// Reference — внешний идентификатор записи для сверок и поддержки
	Reference uuid.UUID
	CreatedAt time.Time
}
