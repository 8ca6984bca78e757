// Package bag — repository.go выполняет операции с таблицами bags и bag_items.
package bag

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository предоставляет методы для работы с сумками наград.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий сумок.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// List возвращает содержимое сумки пользователя.
func (r *Repository) List(ctx context.Context, userID int64) ([]*Item, error) {
	query := `
		SELECT it.id, it.bag_id, it.item_id, it.enchant, it.name, it.quantity, it.created_at, it.updated_at
		FROM bag_items it
		JOIN bags b ON b.id = it.bag_id
		WHERE b.user_id = $1
		ORDER BY it.item_id, it.enchant
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения сумки: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.BagID, &it.ItemID, &it.Enchant, &it.Name, &it.Quantity, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования награды: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

// UpsertItemTx кладёт награду в сумку внутри транзакции вызывающего.
// Сумка создаётся при необходимости; совпадающий по (предмет, заточка)
// стак получает +quantity, иначе создаётся новый стак.
// Боксы и рулетка вызывают это в той же транзакции, где списывают
// бокс/фишку, поэтому награда и оплата фиксируются вместе.
func UpsertItemTx(ctx context.Context, tx pgx.Tx, userID int64, itemID, enchant int, name string, quantity int) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO bags (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	if err != nil {
		return fmt.Errorf("ошибка создания сумки: %w", err)
	}

	var bagID int64
	if err := tx.QueryRow(ctx, `SELECT id FROM bags WHERE user_id = $1`, userID).Scan(&bagID); err != nil {
		return fmt.Errorf("ошибка получения сумки: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO bag_items (bag_id, item_id, enchant, name, quantity)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (bag_id, item_id, enchant)
		DO UPDATE SET quantity = bag_items.quantity + EXCLUDED.quantity, updated_at = NOW()
	`, bagID, itemID, enchant, name, quantity)
	if err != nil {
		return fmt.Errorf("ошибка добавления награды: %w", err)
	}
	return nil
}
