// Package auction — repository.go выполняет все операции с таблицами
// auctions и bids.
//
// Каждая операция, двигающая деньги (ставка, завершение, отмена),
// выполняется в одной транзакции БД: строка аукциона блокируется
// FOR UPDATE, правила перепроверяются под блокировкой, деньги идут
// через wallet.ApplyTx, предметы — через inventory.*Tx. Конкурентным
// читателям не видно состояния «списано, но ещё не зачислено».
package auction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"serotonyl.ru/l2portal/internal/common"
	"serotonyl.ru/l2portal/internal/db/postgres"
	"serotonyl.ru/l2portal/internal/features/inventory"
	"serotonyl.ru/l2portal/internal/features/wallet"
)

const auctionColumns = `
	id, seller_user_id, seller_character, item_id, enchant, quantity,
	starting_bid, current_bid, highest_bidder_user_id, highest_bidder_character,
	end_time, status, created_at
`

// Repository предоставляет методы для работы с аукционами.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий аукционов.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func scanAuction(row pgx.Row) (*Auction, error) {
	var a Auction
	var status string
	err := row.Scan(
		&a.ID, &a.SellerUserID, &a.SellerCharacter, &a.ItemID, &a.Enchant, &a.Quantity,
		&a.StartingBid, &a.CurrentBid, &a.HighestBidderID, &a.HighestBidderCharacter,
		&a.EndTime, &status, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Status = Status(status)
	return &a, nil
}

// GetByID возвращает лот по id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Auction, error) {
	a, err := scanAuction(r.db.QueryRow(ctx,
		`SELECT `+auctionColumns+` FROM auctions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения лота: %w", err)
	}
	return a, nil
}

// lockAuction читает строку лота под блокировкой FOR UPDATE.
func lockAuction(ctx context.Context, tx pgx.Tx, id int64) (*Auction, error) {
	a, err := scanAuction(tx.QueryRow(ctx,
		`SELECT `+auctionColumns+` FROM auctions WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка блокировки лота: %w", err)
	}
	return a, nil
}

// List возвращает открытые лоты для страниц аукционного дома.
func (r *Repository) List(ctx context.Context, status Status, limit int) ([]*Auction, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+auctionColumns+` FROM auctions WHERE status = $1 ORDER BY end_time LIMIT $2`,
		string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения лотов: %w", err)
	}
	defer rows.Close()

	var auctions []*Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования лота: %w", err)
		}
		auctions = append(auctions, a)
	}
	return auctions, rows.Err()
}

// ListExpiredIDs возвращает id лотов, у которых время вышло,
// а статус всё ещё pending. Их подбирает фоновый обход.
func (r *Repository) ListExpiredIDs(ctx context.Context, now time.Time) ([]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id FROM auctions WHERE status = $1 AND end_time <= $2 ORDER BY end_time`,
		string(StatusPending), now)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска истёкших лотов: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ошибка сканирования id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Create выставляет лот: стак уходит из инвентаря продавца в эскроу лота.
// Списание предмета и создание лота — одна транзакция.
func (r *Repository) Create(ctx context.Context, a *Auction) error {
	return postgres.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		invID, err := inventory.GetOrCreateTx(ctx, tx, a.SellerCharacter, false)
		if err != nil {
			return err
		}
		if err := inventory.RemoveStackTx(ctx, tx, invID, a.ItemID, a.Enchant, a.Quantity); err != nil {
			return err
		}

		return tx.QueryRow(ctx, `
			INSERT INTO auctions (seller_user_id, seller_character, item_id, enchant, quantity,
			                      starting_bid, end_time, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at
		`, a.SellerUserID, a.SellerCharacter, a.ItemID, a.Enchant, a.Quantity,
			a.StartingBid, a.EndTime, string(StatusPending),
		).Scan(&a.ID, &a.CreatedAt)
	})
}

// PlaceBid размещает ставку. Атомарно, в одной транзакции:
//  1. лот блокируется, правила перепроверяются под блокировкой
//  2. предыдущему лидеру возвращаются удержанные средства (ENTRADA)
//  3. с нового лидера списывается ставка (SAIDA)
//  4. лот получает нового лидера, в историю дописывается Bid
//
// В любой момент удержаны средства максимум одного участника:
// возврат старому лидеру и списание с нового фиксируются вместе.
func (r *Repository) PlaceBid(ctx context.Context, auctionID, bidderUserID int64, bidderCharacter string, amount decimal.Decimal, now time.Time) (*PlaceBidResult, error) {
	var result *PlaceBidResult
	err := postgres.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		a, err := lockAuction(ctx, tx, auctionID)
		if err != nil {
			return err
		}
		if err := CheckBid(a, amount, now); err != nil {
			return err
		}

		result = &PlaceBidResult{}

		// Возвращаем удержанные средства перебитому лидеру
		if userID, refund := HeldRefund(a); userID != nil {
			_, err = wallet.ApplyTx(ctx, tx, *userID, wallet.DirectionEntrada, *refund,
				fmt.Sprintf("Devolução de lance — leilão #%d", a.ID),
				fmt.Sprintf("leilao #%d", a.ID), "carteira")
			if err != nil {
				return fmt.Errorf("ошибка возврата ставки: %w", err)
			}
			result.OutbidUserID = userID
			result.RefundedAmount = refund
		}

		// Списываем ставку с нового лидера
		_, err = wallet.ApplyTx(ctx, tx, bidderUserID, wallet.DirectionSaida, amount,
			fmt.Sprintf("Lance no leilão #%d", a.ID),
			"carteira", fmt.Sprintf("leilao #%d", a.ID))
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE auctions
			SET current_bid = $2, highest_bidder_user_id = $3, highest_bidder_character = $4
			WHERE id = $1
		`, a.ID, amount, bidderUserID, bidderCharacter)
		if err != nil {
			return fmt.Errorf("ошибка обновления лота: %w", err)
		}

		bid := &Bid{
			AuctionID:       a.ID,
			BidderUserID:    bidderUserID,
			BidderCharacter: bidderCharacter,
			Amount:          amount,
		}
		err = tx.QueryRow(ctx, `
			INSERT INTO bids (auction_id, bidder_user_id, bidder_character, amount)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at
		`, a.ID, bidderUserID, bidderCharacter, amount).Scan(&bid.ID, &bid.CreatedAt)
		if err != nil {
			return fmt.Errorf("ошибка записи ставки: %w", err)
		}
		result.Bid = bid
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Finish завершает истёкший аукцион. Атомарно:
//   - есть лидер: продавцу зачисляется текущая ставка (ENTRADA),
//     стак доставляется на аукционный склад победителя, статус finished
//   - ставок не было: стак возвращается продавцу, статус expired
//
// Повторный вызов упирается в терминальный статус под блокировкой
// и возвращает ErrAuctionClosed — двойной выплаты не бывает.
func (r *Repository) Finish(ctx context.Context, auctionID int64, now time.Time) (*FinishResult, error) {
	var result *FinishResult
	err := postgres.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		a, err := lockAuction(ctx, tx, auctionID)
		if err != nil {
			return err
		}
		if err := CheckFinish(a, now); err != nil {
			return err
		}

		outcome := SettleFinish(a)
		result = &FinishResult{AuctionID: a.ID}

		if outcome.SellerCredit != nil {
			// Продавец получает деньги, победитель — предмет
			_, err = wallet.ApplyTx(ctx, tx, a.SellerUserID, wallet.DirectionEntrada, *outcome.SellerCredit,
				fmt.Sprintf("Venda no leilão #%d", a.ID),
				fmt.Sprintf("leilao #%d", a.ID), "carteira")
			if err != nil {
				return fmt.Errorf("ошибка выплаты продавцу: %w", err)
			}

			invID, err := inventory.GetOrCreateTx(ctx, tx, *outcome.WinnerCharacter, true)
			if err != nil {
				return err
			}
			if err := inventory.AddStackTx(ctx, tx, invID, a.ItemID, a.Enchant, a.Quantity); err != nil {
				return err
			}

			result.WinnerUserID = outcome.WinnerUserID
			result.SoldAmount = outcome.SellerCredit
		} else {
			// Ставок не было — стак возвращается продавцу
			invID, err := inventory.GetOrCreateTx(ctx, tx, a.SellerCharacter, false)
			if err != nil {
				return err
			}
			if err := inventory.AddStackTx(ctx, tx, invID, a.ItemID, a.Enchant, a.Quantity); err != nil {
				return err
			}
		}

		if _, err := tx.Exec(ctx,
			`UPDATE auctions SET status = $2 WHERE id = $1`, a.ID, string(outcome.Status)); err != nil {
			return fmt.Errorf("ошибка обновления статуса: %w", err)
		}
		result.Status = outcome.Status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Cancel отменяет лот по инициативе продавца до конца торгов. Атомарно:
// текущему лидеру возвращаются удержанные средства (перебитые ставки
// были возвращены ещё при перекупе), стак накапливается обратно
// в инвентарь продавца, статус становится cancelled.
func (r *Repository) Cancel(ctx context.Context, auctionID, sellerUserID int64, now time.Time) (*CancelResult, error) {
	var result *CancelResult
	err := postgres.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		a, err := lockAuction(ctx, tx, auctionID)
		if err != nil {
			return err
		}
		if err := CheckCancel(a, sellerUserID, now); err != nil {
			return err
		}

		result = &CancelResult{AuctionID: a.ID}

		if userID, refund := HeldRefund(a); userID != nil {
			_, err = wallet.ApplyTx(ctx, tx, *userID, wallet.DirectionEntrada, *refund,
				fmt.Sprintf("Leilão #%d cancelado — devolução", a.ID),
				fmt.Sprintf("leilao #%d", a.ID), "carteira")
			if err != nil {
				return fmt.Errorf("ошибка возврата ставки: %w", err)
			}
			result.RefundedUserID = userID
			result.RefundedAmount = refund
		}

		invID, err := inventory.GetOrCreateTx(ctx, tx, a.SellerCharacter, false)
		if err != nil {
			return err
		}
		if err := inventory.AddStackTx(ctx, tx, invID, a.ItemID, a.Enchant, a.Quantity); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`UPDATE auctions SET status = $2 WHERE id = $1`, a.ID, string(StatusCancelled)); err != nil {
			return fmt.Errorf("ошибка обновления статуса: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Bids возвращает историю ставок лота, новые сверху.
func (r *Repository) Bids(ctx context.Context, auctionID int64) ([]*Bid, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, auction_id, bidder_user_id, bidder_character, amount, created_at
		FROM bids
		WHERE auction_id = $1
		ORDER BY created_at DESC
	`, auctionID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения ставок: %w", err)
	}
	defer rows.Close()

	var bids []*Bid
	for rows.Next() {
		var b Bid
		if err := rows.Scan(&b.ID, &b.AuctionID, &b.BidderUserID, &b.BidderCharacter, &b.Amount, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования ставки: %w", err)
		}
		bids = append(bids, &b)
	}
	return bids, rows.Err()
}
