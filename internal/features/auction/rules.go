// Package auction — rules.go содержит правила переходов аукциона.
// Правила — чистые функции: их используют и сервис (быстрая проверка
// до транзакции), и репозиторий (повторная проверка под блокировкой
// строки), поэтому разойтись они не могут.
package auction

import (
	"time"

	"github.com/shopspring/decimal"

	"serotonyl.ru/l2portal/internal/common"
)

// CheckBid проверяет допустимость ставки.
//
// Правила:
//   - аукцион должен быть в состоянии pending и время не вышло
//   - ставка строго больше текущей; пока ставок нет, планкой служит
//     стартовая цена (CurrentBid == nil означает «планка = StartingBid»)
//   - равная ставка отклоняется: ничья решается в пользу раннего лидера
func CheckBid(a *Auction, amount decimal.Decimal, now time.Time) error {
	if a.Status.Terminal() || !now.Before(a.EndTime) {
		return common.ErrAuctionClosed
	}

	floor := a.StartingBid
	if a.CurrentBid != nil {
		floor = *a.CurrentBid
	}
	if amount.Cmp(floor) <= 0 {
		return common.ErrInvalidBid
	}
	return nil
}

// CheckFinish проверяет, можно ли завершить аукцион.
// Повторное завершение упирается в терминальный статус и падает чисто,
// без двойной выплаты — на этом держится идемпотентность обхода.
func CheckFinish(a *Auction, now time.Time) error {
	if a.Status.Terminal() {
		return common.ErrAuctionClosed
	}
	if now.Before(a.EndTime) {
		return common.ErrAuctionStillActive
	}
	return nil
}

// CheckCancel проверяет, может ли продавец отменить лот.
// После конца торгов отмена невозможна — лот завершает обход.
func CheckCancel(a *Auction, sellerUserID int64, now time.Time) error {
	if a.Status.Terminal() || !now.Before(a.EndTime) {
		return common.ErrAuctionClosed
	}
	if a.SellerUserID != sellerUserID {
		return common.ErrNotSeller
	}
	return nil
}
