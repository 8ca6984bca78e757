package auction

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/l2portal/internal/common"
)

func TestHeldRefund(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("ставок нет — возвращать нечего", func(t *testing.T) {
		a := pendingAuction("50.00", nil, now.Add(time.Hour))
		userID, refund := HeldRefund(a)
		assert.Nil(t, userID)
		assert.Nil(t, refund)
	})

	t.Run("возвращается ровно удержанная ставка", func(t *testing.T) {
		a := pendingAuction("50.00", strPtr("100.00"), now.Add(time.Hour))
		userID, refund := HeldRefund(a)
		require.NotNil(t, userID)
		assert.Equal(t, *a.HighestBidderID, *userID)
		assert.True(t, refund.Equal(dec("100.00")), "возврат: %s", refund)
	})
}

func TestSettleFinish(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("продавец получает ровно текущую ставку", func(t *testing.T) {
		a := pendingAuction("50.00", strPtr("150.00"), now.Add(-time.Minute))
		ch := "Baium"
		a.HighestBidderCharacter = &ch

		outcome := SettleFinish(a)
		assert.Equal(t, StatusFinished, outcome.Status)
		require.NotNil(t, outcome.SellerCredit)
		assert.True(t, outcome.SellerCredit.Equal(dec("150.00")), "выплата: %s", outcome.SellerCredit)
		assert.Equal(t, *a.HighestBidderID, *outcome.WinnerUserID)
		assert.Equal(t, "Baium", *outcome.WinnerCharacter)
	})

	t.Run("без ставок — expired и никаких выплат", func(t *testing.T) {
		a := pendingAuction("50.00", nil, now.Add(-time.Minute))
		outcome := SettleFinish(a)
		assert.Equal(t, StatusExpired, outcome.Status)
		assert.Nil(t, outcome.SellerCredit)
		assert.Nil(t, outcome.WinnerUserID)
	})
}

// applyBid воспроизводит шаги размещения ставки над балансами в памяти:
// возврат удержанных средств перебитому лидеру, списание с нового,
// обновление лидера лота. Тот же порядок, что в репозитории.
func applyBid(t *testing.T, a *Auction, balances map[int64]decimal.Decimal, bidder int64, amount decimal.Decimal, now time.Time) {
	t.Helper()
	require.NoError(t, CheckBid(a, amount, now))

	if userID, refund := HeldRefund(a); userID != nil {
		balances[*userID] = balances[*userID].Add(*refund)
	}
	balances[bidder] = balances[bidder].Sub(amount)

	a.CurrentBid = &amount
	a.HighestBidderID = &bidder
}

// Последовательность ставок 100 → 150: у лота в любой момент удержаны
// средства ровно одного участника, перебитый получает назад ровно 100.
func TestBidSequenceRefundsExactly(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	a := pendingAuction("50.00", nil, now.Add(time.Hour))

	balances := map[int64]decimal.Decimal{
		101: dec("500.00"),
		102: dec("500.00"),
	}

	applyBid(t, a, balances, 101, dec("100.00"), now)
	assert.True(t, balances[101].Equal(dec("400.00")), "после ставки: %s", balances[101])

	applyBid(t, a, balances, 102, dec("150.00"), now)

	// Перебитый участник 101 получил назад ровно 100
	assert.True(t, balances[101].Equal(dec("500.00")), "после возврата: %s", balances[101])
	assert.True(t, balances[102].Equal(dec("350.00")), "у лидера удержано 150: %s", balances[102])
}

// Завершение: продавцу зачисляется ровно текущая ставка, повторное
// завершение упирается в терминальный статус и не платит второй раз.
func TestFinishPaysSellerOnce(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	a := pendingAuction("50.00", nil, now.Add(time.Hour))
	a.SellerUserID = 100

	balances := map[int64]decimal.Decimal{100: dec("0.00"), 101: dec("500.00")}
	applyBid(t, a, balances, 101, dec("150.00"), now)

	// Торги закончились
	later := a.EndTime.Add(time.Minute)
	require.NoError(t, CheckFinish(a, later))
	outcome := SettleFinish(a)
	balances[a.SellerUserID] = balances[a.SellerUserID].Add(*outcome.SellerCredit)
	a.Status = outcome.Status

	assert.True(t, balances[100].Equal(dec("150.00")), "выплата продавцу: %s", balances[100])

	// Второй проход обхода: терминальный статус, до выплаты не доходит
	assert.ErrorIs(t, CheckFinish(a, later), common.ErrAuctionClosed)
	assert.True(t, balances[100].Equal(dec("150.00")), "повторная выплата: %s", balances[100])
}

// Отмена лота: баланс каждого участника равен балансу до его ставок —
// перебитые получили возврат при перекупе, лидер при отмене.
func TestCancelRestoresEveryBidderBalance(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	a := pendingAuction("50.00", nil, now.Add(time.Hour))

	initial := dec("500.00")
	balances := map[int64]decimal.Decimal{101: initial, 102: initial, 103: initial}

	applyBid(t, a, balances, 101, dec("100.00"), now)
	applyBid(t, a, balances, 102, dec("150.00"), now)
	applyBid(t, a, balances, 103, dec("225.50"), now)

	require.NoError(t, CheckCancel(a, a.SellerUserID, now))
	if userID, refund := HeldRefund(a); userID != nil {
		balances[*userID] = balances[*userID].Add(*refund)
	}
	a.Status = StatusCancelled

	for bidder, balance := range balances {
		assert.True(t, balance.Equal(initial),
			"баланс участника %d после отмены: %s", bidder, balance)
	}
}
