// Package boxes — repository.go выполняет операции с таблицами
// box_types, box_type_items, boxes и box_items.
// Покупка (списание денег + создание бокса + слоты) и открытие
// (потребление бокса + награда в сумку) — атомарные транзакции.
package boxes

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/l2portal/internal/common"
	"serotonyl.ru/l2portal/internal/db/postgres"
	"serotonyl.ru/l2portal/internal/features/bag"
	"serotonyl.ru/l2portal/internal/features/wallet"
)

// Repository предоставляет методы для работы с боксами.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий боксов.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateBoxType сохраняет новый тип бокса.
func (r *Repository) CreateBoxType(ctx context.Context, bt *BoxType) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO box_types (name, price, boosters_amount,
		                       chance_legendary, chance_epic, chance_rare, chance_common, enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, bt.Name, bt.Price, bt.BoostersAmount,
		bt.ChanceLegendary, bt.ChanceEpic, bt.ChanceRare, bt.ChanceCommon, bt.Enabled,
	).Scan(&bt.ID, &bt.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания типа бокса: %w", err)
	}
	return nil
}

// UpdateBoxType обновляет конфигурацию типа бокса.
func (r *Repository) UpdateBoxType(ctx context.Context, bt *BoxType) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE box_types
		SET name = $2, price = $3, boosters_amount = $4,
		    chance_legendary = $5, chance_epic = $6, chance_rare = $7, chance_common = $8,
		    enabled = $9
		WHERE id = $1
	`, bt.ID, bt.Name, bt.Price, bt.BoostersAmount,
		bt.ChanceLegendary, bt.ChanceEpic, bt.ChanceRare, bt.ChanceCommon, bt.Enabled)
	if err != nil {
		return fmt.Errorf("ошибка обновления типа бокса: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

// GetBoxType возвращает тип бокса по id.
func (r *Repository) GetBoxType(ctx context.Context, id int64) (*BoxType, error) {
	var bt BoxType
	err := r.db.QueryRow(ctx, `
		SELECT id, name, price, boosters_amount,
		       chance_legendary, chance_epic, chance_rare, chance_common, enabled, created_at
		FROM box_types
		WHERE id = $1
	`, id).Scan(&bt.ID, &bt.Name, &bt.Price, &bt.BoostersAmount,
		&bt.ChanceLegendary, &bt.ChanceEpic, &bt.ChanceRare, &bt.ChanceCommon, &bt.Enabled, &bt.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения типа бокса: %w", err)
	}
	return &bt, nil
}

// TypeItems возвращает предметы, разрешённые для типа бокса.
func (r *Repository) TypeItems(ctx context.Context, boxTypeID int64) ([]*TypeItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, box_type_id, item_id, enchant, name, rarity
		FROM box_type_items
		WHERE box_type_id = $1
	`, boxTypeID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения пула предметов: %w", err)
	}
	defer rows.Close()

	var items []*TypeItem
	for rows.Next() {
		var it TypeItem
		var rarity string
		if err := rows.Scan(&it.ID, &it.BoxTypeID, &it.ItemID, &it.Enchant, &it.Name, &rarity); err != nil {
			return nil, fmt.Errorf("ошибка сканирования предмета: %w", err)
		}
		it.Rarity = Rarity(rarity)
		items = append(items, &it)
	}
	return items, rows.Err()
}

// Buy оформляет покупку бокса. Атомарно: списание цены через леджер
// (SAIDA), создание бокса и вставка заранее разыгранных слотов.
func (r *Repository) Buy(ctx context.Context, userID int64, bt *BoxType, contents []*BoxItem) (*Box, error) {
	box := &Box{UserID: userID, BoxTypeID: bt.ID}
	err := postgres.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := wallet.ApplyTx(ctx, tx, userID, wallet.DirectionSaida, bt.Price,
			fmt.Sprintf("Compra de caixa — %s", bt.Name),
			"carteira", "caixas")
		if err != nil {
			return err
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO boxes (user_id, box_type_id, opened)
			VALUES ($1, $2, FALSE)
			RETURNING id, created_at
		`, userID, bt.ID).Scan(&box.ID, &box.CreatedAt)
		if err != nil {
			return fmt.Errorf("ошибка создания бокса: %w", err)
		}

		return insertBoxItemsTx(ctx, tx, box.ID, contents)
	})
	if err != nil {
		return nil, err
	}
	return box, nil
}

// GetBox возвращает бокс по id.
func (r *Repository) GetBox(ctx context.Context, id int64) (*Box, error) {
	var b Box
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, box_type_id, opened, created_at, opened_at
		FROM boxes
		WHERE id = $1
	`, id).Scan(&b.ID, &b.UserID, &b.BoxTypeID, &b.Opened, &b.CreatedAt, &b.OpenedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения бокса: %w", err)
	}
	return &b, nil
}

// BoxItems возвращает слоты наград бокса.
func (r *Repository) BoxItems(ctx context.Context, boxID int64) ([]*BoxItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, box_id, item_id, enchant, name, rarity, probability
		FROM box_items
		WHERE box_id = $1
	`, boxID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения слотов бокса: %w", err)
	}
	defer rows.Close()

	var items []*BoxItem
	for rows.Next() {
		var it BoxItem
		var rarity string
		if err := rows.Scan(&it.ID, &it.BoxID, &it.ItemID, &it.Enchant, &it.Name, &rarity, &it.Probability); err != nil {
			return nil, fmt.Errorf("ошибка сканирования слота: %w", err)
		}
		it.Rarity = Rarity(rarity)
		items = append(items, &it)
	}
	return items, rows.Err()
}

// InsertBoxItems дополняет существующий бокс слотами наград.
func (r *Repository) InsertBoxItems(ctx context.Context, boxID int64, contents []*BoxItem) error {
	return postgres.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return insertBoxItemsTx(ctx, tx, boxID, contents)
	})
}

func insertBoxItemsTx(ctx context.Context, tx pgx.Tx, boxID int64, contents []*BoxItem) error {
	for _, it := range contents {
		_, err := tx.Exec(ctx, `
			INSERT INTO box_items (box_id, item_id, enchant, name, rarity, probability)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, boxID, it.ItemID, it.Enchant, it.Name, string(it.Rarity), it.Probability)
		if err != nil {
			return fmt.Errorf("ошибка вставки слота: %w", err)
		}
	}
	return nil
}

// Consume потребляет бокс и кладёт выигранную награду в сумку. Атомарно:
// условие opened = FALSE в UPDATE защищает от двойного открытия —
// конкурентное открытие того же бокса получит ErrNotFound.
func (r *Repository) Consume(ctx context.Context, box *Box, won *BoxItem) error {
	return postgres.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var id int64
		err := tx.QueryRow(ctx, `
			UPDATE boxes
			SET opened = TRUE, opened_at = NOW()
			WHERE id = $1 AND opened = FALSE
			RETURNING id
		`, box.ID).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			return common.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("ошибка открытия бокса: %w", err)
		}

		return bag.UpsertItemTx(ctx, tx, box.UserID, won.ItemID, won.Enchant, won.Name, 1)
	})
}
