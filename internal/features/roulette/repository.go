// Package roulette — repository.go выполняет операции с таблицами
// roulette_prizes и roulette_spins.
package roulette

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/l2portal/internal/common"
	"serotonyl.ru/l2portal/internal/db/postgres"
	"serotonyl.ru/l2portal/internal/features/bag"
)

// Repository предоставляет методы для работы с рулеткой.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий рулетки.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreatePrize добавляет приз в пул.
func (r *Repository) CreatePrize(ctx context.Context, p *Prize) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO roulette_prizes (name, item_id, enchant, weight, enabled)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, p.Name, p.ItemID, p.Enchant, p.Weight, p.Enabled).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания приза: %w", err)
	}
	return nil
}

// ListEnabledPrizes возвращает активный пул призов.
func (r *Repository) ListEnabledPrizes(ctx context.Context) ([]*Prize, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, item_id, enchant, weight, enabled, created_at
		FROM roulette_prizes
		WHERE enabled = TRUE
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения призов: %w", err)
	}
	defer rows.Close()

	var prizes []*Prize
	for rows.Next() {
		var p Prize
		if err := rows.Scan(&p.ID, &p.Name, &p.ItemID, &p.Enchant, &p.Weight, &p.Enabled, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования приза: %w", err)
		}
		prizes = append(prizes, &p)
	}
	return prizes, rows.Err()
}

// Spin списывает одну фишку и фиксирует выигрыш. Атомарно:
// условное обновление fichas > 0 выполняет и проверку, и списание
// одним запросом — гонка двух конкурентных спинов невозможна;
// запись истории и награда в сумку фиксируются вместе со списанием.
func (r *Repository) Spin(ctx context.Context, userID int64, prize *Prize) (*Spin, error) {
	spin := &Spin{UserID: userID, PrizeID: prize.ID}
	err := postgres.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var remaining int
		err := tx.QueryRow(ctx, `
			UPDATE wallets
			SET fichas = fichas - 1, updated_at = NOW()
			WHERE user_id = $1 AND fichas > 0
			RETURNING fichas
		`, userID).Scan(&remaining)
		if errors.Is(err, pgx.ErrNoRows) {
			return common.ErrNoTokens
		}
		if err != nil {
			return fmt.Errorf("ошибка списания фишки: %w", err)
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO roulette_spins (user_id, prize_id)
			VALUES ($1, $2)
			RETURNING id, created_at
		`, userID, prize.ID).Scan(&spin.ID, &spin.CreatedAt)
		if err != nil {
			return fmt.Errorf("ошибка записи спина: %w", err)
		}

		return bag.UpsertItemTx(ctx, tx, userID, prize.ItemID, prize.Enchant, prize.Name, 1)
	})
	if err != nil {
		return nil, err
	}
	return spin, nil
}

// History возвращает последние спины пользователя.
func (r *Repository) History(ctx context.Context, userID int64, limit int) ([]*Spin, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, prize_id, created_at
		FROM roulette_spins
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения истории спинов: %w", err)
	}
	defer rows.Close()

	var spins []*Spin
	for rows.Next() {
		var s Spin
		if err := rows.Scan(&s.ID, &s.UserID, &s.PrizeID, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования спина: %w", err)
		}
		spins = append(spins, &s)
	}
	return spins, rows.Err()
}
