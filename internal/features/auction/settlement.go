// Package auction — settlement.go вычисляет денежные итоги операций
// над лотом: кому и сколько вернуть или выплатить. Как и rules.go,
// это чистые функции: репозиторий применяет их под блокировкой строки,
// а тесты проверяют суммы напрямую, без БД.
package auction

import "github.com/shopspring/decimal"

// HeldRefund возвращает текущего лидера и удержанную с него сумму.
// Именно эти деньги возвращаются при перебитии ставки и при отмене
// лота: у лота в любой момент удержаны средства максимум одного
// участника, перебитые лидеры получили возврат ещё при перекупе.
// (nil, nil) — ставок нет, возвращать нечего.
func HeldRefund(a *Auction) (*int64, *decimal.Decimal) {
	if a.HighestBidderID == nil {
		return nil, nil
	}
	refund := *a.CurrentBid
	return a.HighestBidderID, &refund
}

// FinishOutcome — денежный итог завершения лота.
// SellerCredit и Winner* равны nil, если ставок не было.
type FinishOutcome struct {
	Status          Status
	WinnerUserID    *int64
	WinnerCharacter *string
	SellerCredit    *decimal.Decimal
}

// SettleFinish вычисляет итог завершения лота:
//   - есть лидер — продавцу причитается ровно текущая ставка,
//     предмет уходит лидеру, лот завершается как finished
//   - ставок не было — выплат нет, предмет возвращается продавцу,
//     лот завершается как expired
//
// Сама функция денег не двигает; двойную выплату при повторном
// завершении исключает CheckFinish по терминальному статусу.
func SettleFinish(a *Auction) FinishOutcome {
	if a.HighestBidderID == nil {
		return FinishOutcome{Status: StatusExpired}
	}
	credit := *a.CurrentBid
	return FinishOutcome{
		Status:          StatusFinished,
		WinnerUserID:    a.HighestBidderID,
		WinnerCharacter: a.HighestBidderCharacter,
		SellerCredit:    &credit,
	}
}
