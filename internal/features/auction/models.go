// Package auction реализует аукционный дом портала: выставление лотов,
// ставки, завершение и отмену с полной сверкой денег и предметов.
// models.go описывает структуры данных аукциона.
package auction

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status — состояние аукциона.
// Жизненный цикл: pending → finished | cancelled | expired.
// Терминальные состояния финальны, переходов из них нет.
type Status string

const (
	StatusPending   Status = "pending"
	StatusFinished  Status = "finished"
	StatusCancelled Status = "cancelled"
	// StatusExpired — время вышло, ставок не было, лот вернулся продавцу
	StatusExpired Status = "expired"
)

// Terminal сообщает, финально ли состояние.
func (s Status) Terminal() bool {
	return s != StatusPending
}

// Auction — лот аукциона: один стак предмета на продажу.
// CurrentBid и HighestBidder* равны nil, пока не сделана первая ставка.
type Auction struct {
	ID                     int64
	SellerUserID           int64
	SellerCharacter        string
	ItemID                 int
	Enchant                int
	Quantity               int
	StartingBid            decimal.Decimal
	CurrentBid             *decimal.Decimal
	HighestBidderID        *int64
	HighestBidderCharacter *string
	EndTime                time.Time
	Status                 Status
	CreatedAt              time.Time
}

// Bid — неизменяемая запись ставки, история только дописывается.
type Bid struct {
	ID              int64
	AuctionID       int64
	BidderUserID    int64
	BidderCharacter string
	Amount          decimal.Decimal
	CreatedAt       time.Time
}

// PlaceBidResult — итог размещения ставки.
// OutbidUserID/RefundedAmount заполнены, если предыдущий лидер
// был перебит и получил возврат в той же транзакции.
type PlaceBidResult struct {
	Bid            *Bid
	OutbidUserID   *int64
	RefundedAmount *decimal.Decimal
}

// FinishResult — итог завершения аукциона.
// WinnerUserID и SoldAmount равны nil, если ставок не было.
type FinishResult struct {
	AuctionID    int64
	Status       Status
	WinnerUserID *int64
	SoldAmount   *decimal.Decimal
}

// CancelResult — итог отмены лота продавцом.
// RefundedUserID/RefundedAmount заполнены, если текущему лидеру
// вернулись удержанные средства.
type CancelResult struct {
	AuctionID      int64
	RefundedUserID *int64
	RefundedAmount *decimal.Decimal
}
