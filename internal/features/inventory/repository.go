// Package inventory — repository.go выполняет операции с таблицами
// inventories и inventory_items.
//
// Tx-функции (GetOrCreateTx, AddStackTx, RemoveStackTx) работают внутри
// транзакции вызывающего: аукцион двигает предметы в той же транзакции,
// что и деньги, поэтому частично видимых состояний не бывает.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/l2portal/internal/common"
)

// Repository предоставляет методы чтения инвентарей для страниц портала.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий инвентарей.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// List возвращает стаки инвентаря персонажа.
func (r *Repository) List(ctx context.Context, characterName string, holding bool) ([]*Item, error) {
	query := `
		SELECT it.id, it.inventory_id, it.item_id, it.enchant, it.quantity, it.created_at, it.updated_at
		FROM inventory_items it
		JOIN inventories inv ON inv.id = it.inventory_id
		WHERE inv.character_name = $1 AND inv.holding = $2
		ORDER BY it.item_id, it.enchant
	`
	rows, err := r.db.Query(ctx, query, characterName, holding)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения инвентаря: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.InventoryID, &it.ItemID, &it.Enchant, &it.Quantity, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования стака: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

// GetOrCreateTx возвращает id инвентаря персонажа, создавая его при необходимости.
func GetOrCreateTx(ctx context.Context, tx pgx.Tx, characterName string, holding bool) (int64, error) {
	_, err := tx.Exec(ctx, `
		INSERT INTO inventories (character_name, holding)
		VALUES ($1, $2)
		ON CONFLICT (character_name, holding) DO NOTHING
	`, characterName, holding)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания инвентаря: %w", err)
	}

	var id int64
	err = tx.QueryRow(ctx,
		`SELECT id FROM inventories WHERE character_name = $1 AND holding = $2`,
		characterName, holding,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка получения инвентаря: %w", err)
	}
	return id, nil
}

// AddStackTx добавляет количество к стаку (инвентарь, предмет, заточка).
// Если подходящий стак уже есть — количество накапливается,
// иначе создаётся новый стак.
func AddStackTx(ctx context.Context, tx pgx.Tx, inventoryID int64, itemID, enchant, quantity int) error {
	if quantity <= 0 {
		return common.ErrInvalidAmount
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO inventory_items (inventory_id, item_id, enchant, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (inventory_id, item_id, enchant)
		DO UPDATE SET quantity = inventory_items.quantity + EXCLUDED.quantity, updated_at = NOW()
	`, inventoryID, itemID, enchant, quantity)
	if err != nil {
		return fmt.Errorf("ошибка добавления в инвентарь: %w", err)
	}
	return nil
}

// RemoveStackTx списывает количество из стака.
// Условие quantity >= $4 в UPDATE не даёт стаку уйти в минус;
// опустевший стак удаляется.
func RemoveStackTx(ctx context.Context, tx pgx.Tx, inventoryID int64, itemID, enchant, quantity int) error {
	if quantity <= 0 {
		return common.ErrInvalidAmount
	}

	var remaining int
	err := tx.QueryRow(ctx, `
		UPDATE inventory_items
		SET quantity = quantity - $4, updated_at = NOW()
		WHERE inventory_id = $1 AND item_id = $2 AND enchant = $3 AND quantity >= $4
		RETURNING quantity
	`, inventoryID, itemID, enchant, quantity).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		return common.ErrNotEnoughItems
	}
	if err != nil {
		return fmt.Errorf("ошибка списания из инвентаря: %w", err)
	}

	if remaining == 0 {
		_, err = tx.Exec(ctx, `
			DELETE FROM inventory_items
			WHERE inventory_id = $1 AND item_id = $2 AND enchant = $3
		`, inventoryID, itemID, enchant)
		if err != nil {
			return fmt.Errorf("ошибка удаления пустого стака: %w", err)
		}
	}
	return nil
}
