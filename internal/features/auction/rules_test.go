package auction

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"serotonyl.ru/l2portal/internal/common"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func pendingAuction(starting string, current *string, end time.Time) *Auction {
	a := &Auction{
		SellerUserID: 1,
		StartingBid:  dec(starting),
		EndTime:      end,
		Status:       StatusPending,
	}
	if current != nil {
		c := dec(*current)
		a.CurrentBid = &c
		bidder := int64(2)
		a.HighestBidderID = &bidder
	}
	return a
}

func strPtr(s string) *string { return &s }

func TestCheckBid(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)

	tests := []struct {
		name    string
		auction *Auction
		amount  decimal.Decimal
		wantErr error
	}{
		{
			name:    "первая ставка выше стартовой цены",
			auction: pendingAuction("50.00", nil, future),
			amount:  dec("100.00"),
		},
		{
			name:    "первая ставка равна стартовой цене — отказ",
			auction: pendingAuction("50.00", nil, future),
			amount:  dec("50.00"),
			wantErr: common.ErrInvalidBid,
		},
		{
			name:    "перебитие текущей ставки",
			auction: pendingAuction("50.00", strPtr("100.00"), future),
			amount:  dec("150.00"),
		},
		{
			name:    "ставка равна текущей — ничья в пользу раннего",
			auction: pendingAuction("50.00", strPtr("100.00"), future),
			amount:  dec("100.00"),
			wantErr: common.ErrInvalidBid,
		},
		{
			name:    "ставка ниже текущей",
			auction: pendingAuction("50.00", strPtr("100.00"), future),
			amount:  dec("75.00"),
			wantErr: common.ErrInvalidBid,
		},
		{
			name:    "время вышло",
			auction: pendingAuction("50.00", nil, now.Add(-time.Minute)),
			amount:  dec("100.00"),
			wantErr: common.ErrAuctionClosed,
		},
		{
			name:    "ровно в момент окончания — уже закрыт",
			auction: pendingAuction("50.00", nil, now),
			amount:  dec("100.00"),
			wantErr: common.ErrAuctionClosed,
		},
		{
			name: "терминальный статус",
			auction: &Auction{
				StartingBid: dec("50.00"),
				EndTime:     future,
				Status:      StatusCancelled,
			},
			amount:  dec("100.00"),
			wantErr: common.ErrAuctionClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckBid(tt.auction, tt.amount, now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckFinish(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("истёкший pending завершается", func(t *testing.T) {
		a := pendingAuction("50.00", nil, now.Add(-time.Minute))
		assert.NoError(t, CheckFinish(a, now))
	})

	t.Run("активный лот завершать рано", func(t *testing.T) {
		a := pendingAuction("50.00", nil, now.Add(time.Hour))
		assert.ErrorIs(t, CheckFinish(a, now), common.ErrAuctionStillActive)
	})

	// Повторное завершение — основа идемпотентности обхода
	t.Run("уже завершённый лот отвечает ErrAuctionClosed", func(t *testing.T) {
		a := pendingAuction("50.00", nil, now.Add(-time.Minute))
		a.Status = StatusFinished
		assert.ErrorIs(t, CheckFinish(a, now), common.ErrAuctionClosed)
	})
}

func TestCheckCancel(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("продавец отменяет активный лот", func(t *testing.T) {
		a := pendingAuction("50.00", nil, now.Add(time.Hour))
		assert.NoError(t, CheckCancel(a, a.SellerUserID, now))
	})

	t.Run("чужой лот отменить нельзя", func(t *testing.T) {
		a := pendingAuction("50.00", nil, now.Add(time.Hour))
		assert.ErrorIs(t, CheckCancel(a, 999, now), common.ErrNotSeller)
	})

	t.Run("после окончания торгов отмена невозможна", func(t *testing.T) {
		a := pendingAuction("50.00", nil, now.Add(-time.Minute))
		assert.ErrorIs(t, CheckCancel(a, a.SellerUserID, now), common.ErrAuctionClosed)
	})

	t.Run("терминальный статус", func(t *testing.T) {
		a := pendingAuction("50.00", nil, now.Add(time.Hour))
		a.Status = StatusExpired
		assert.ErrorIs(t, CheckCancel(a, a.SellerUserID, now), common.ErrAuctionClosed)
	})
}
