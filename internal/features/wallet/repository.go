// Package wallet — repository.go выполняет все операции с таблицами
// wallets, wallet_entries и bonus_entries.
// Все денежные операции выполняются в транзакциях БД с блокировкой
// строки кошелька FOR UPDATE: строка кошелька — точка сериализации,
// две конкурентные ставки на один кошелёк выполняются по очереди.
package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"serotonyl.ru/l2portal/internal/common"
	"serotonyl.ru/l2portal/internal/db/postgres"
)

// Repository предоставляет методы для работы с кошельками и леджером.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий кошельков.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Ensure гарантирует, что у пользователя есть кошелёк.
// Если нет — создаёт со стартовым балансом. Вызывается при регистрации.
func (r *Repository) Ensure(ctx context.Context, userID int64, starting decimal.Decimal) error {
	query := `
		INSERT INTO wallets (user_id, balance, bonus_balance, fichas)
		VALUES ($1, $2, 0, 0)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, userID, starting)
	if err != nil {
		return fmt.Errorf("ошибка создания кошелька: %w", err)
	}
	return nil
}

// GetByUserID возвращает кошелёк пользователя.
func (r *Repository) GetByUserID(ctx context.Context, userID int64) (*Wallet, error) {
	query := `
		SELECT id, user_id, balance, bonus_balance, fichas, created_at, updated_at
		FROM wallets
		WHERE user_id = $1
	`
	var w Wallet
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&w.ID, &w.UserID, &w.Balance, &w.BonusBalance, &w.Fichas,
		&w.CreatedAt, &w.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения кошелька: %w", err)
	}
	return &w, nil
}

// Apply применяет транзакцию к основному балансу в отдельной транзакции БД.
func (r *Repository) Apply(ctx context.Context, userID int64, direction Direction, amount decimal.Decimal, description, origin, destination string) (*Entry, error) {
	var entry *Entry
	err := postgres.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var txErr error
		entry, txErr = ApplyTx(ctx, tx, userID, direction, amount, description, origin, destination)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ApplyBonus применяет транзакцию к бонусному балансу в отдельной транзакции БД.
func (r *Repository) ApplyBonus(ctx context.Context, userID int64, direction Direction, amount decimal.Decimal, description, origin, destination string) (*Entry, error) {
	var entry *Entry
	err := postgres.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var txErr error
		entry, txErr = ApplyBonusTx(ctx, tx, userID, direction, amount, description, origin, destination)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ApplyTx применяет транзакцию к основному балансу внутри транзакции вызывающего.
// Именно через эту функцию аукцион, боксы и рулетка двигают деньги:
// один леджер, одна реализация, общая атомарность с остальными шагами операции.
//
// Гарантии:
//   - строка кошелька блокируется FOR UPDATE на всё чтение-изменение-запись
//   - SAIDA при нехватке средств возвращает common.ErrInsufficientFunds,
//     баланс не меняется, запись в леджер не создаётся
//   - изменение баланса и запись леджера видны только вместе (атомарность
//     обеспечивает транзакция вызывающего)
func ApplyTx(ctx context.Context, tx pgx.Tx, userID int64, direction Direction, amount decimal.Decimal, description, origin, destination string) (*Entry, error) {
	return applyLedgerTx(ctx, tx, userID, direction, amount, description, origin, destination, "balance", "wallet_entries")
}

// ApplyBonusTx — то же самое для бонусного баланса и бонусного леджера.
// Контракт идентичен ApplyTx, но балансы и леджеры никогда не смешиваются.
func ApplyBonusTx(ctx context.Context, tx pgx.Tx, userID int64, direction Direction, amount decimal.Decimal, description, origin, destination string) (*Entry, error) {
	return applyLedgerTx(ctx, tx, userID, direction, amount, description, origin, destination, "bonus_balance", "bonus_entries")
}

// applyLedgerTx — общая реализация для обоих леджеров.
// balanceCol и entriesTable приходят только из ApplyTx/ApplyBonusTx,
// пользовательские данные в имена таблиц не попадают.
func applyLedgerTx(ctx context.Context, tx pgx.Tx, userID int64, direction Direction, amount decimal.Decimal, description, origin, destination, balanceCol, entriesTable string) (*Entry, error) {
	if !direction.Valid() {
		return nil, fmt.Errorf("неизвестное направление транзакции: %q", direction)
	}
	if !amount.IsPositive() {
		return nil, common.ErrInvalidAmount
	}

	// Блокируем строку кошелька и читаем текущий баланс
	var walletID int64
	var balance decimal.Decimal
	err := tx.QueryRow(ctx,
		fmt.Sprintf(`SELECT id, %s FROM wallets WHERE user_id = $1 FOR UPDATE`, balanceCol),
		userID,
	).Scan(&walletID, &balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения баланса: %w", err)
	}

	// Проверяем достаточность средств ДО каких-либо изменений
	var newBalance decimal.Decimal
	switch direction {
	case DirectionEntrada:
		newBalance = balance.Add(amount)
	case DirectionSaida:
		if balance.LessThan(amount) {
			return nil, common.ErrInsufficientFunds
		}
		newBalance = balance.Sub(amount)
	}

	// Обновляем баланс
	_, err = tx.Exec(ctx,
		fmt.Sprintf(`UPDATE wallets SET %s = $2, updated_at = NOW() WHERE id = $1`, balanceCol),
		walletID, newBalance,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка обновления баланса: %w", err)
	}

	// Записываем неизменяемую запись леджера, зеркалящую операцию
	entry := &Entry{
		WalletID:    walletID,
		Direction:   direction,
		Amount:      amount,
		Description: description,
		Origin:      origin,
		Destination: destination,
		Reference:   uuid.New(),
	}
	err = tx.QueryRow(ctx,
		fmt.Sprintf(`
			INSERT INTO %s (wallet_id, direction, amount, description, origin, destination, reference)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at
		`, entriesTable),
		walletID, string(direction), amount, description, origin, destination, entry.Reference,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("ошибка записи леджера: %w", err)
	}

	return entry, nil
}

// Entries возвращает последние N записей основного леджера пользователя.
func (r *Repository) Entries(ctx context.Context, userID int64, limit int) ([]*Entry, error) {
	return r.entries(ctx, userID, limit, "wallet_entries")
}

// BonusEntries возвращает последние N записей бонусного леджера.
func (r *Repository) BonusEntries(ctx context.Context, userID int64, limit int) ([]*Entry, error) {
	return r.entries(ctx, userID, limit, "bonus_entries")
}

func (r *Repository) entries(ctx context.Context, userID int64, limit int, table string) ([]*Entry, error) {
	query := fmt.Sprintf(`
		SELECT e.id, e.wallet_id, e.direction, e.amount, e.description, e.origin, e.destination, e.reference, e.created_at
		FROM %s e
		JOIN wallets w ON w.id = e.wallet_id
		WHERE w.user_id = $1
		ORDER BY e.created_at DESC
		LIMIT $2
	`, table)
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения истории: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		var dir string
		err := rows.Scan(&e.ID, &e.WalletID, &dir, &e.Amount, &e.Description, &e.Origin, &e.Destination, &e.Reference, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи: %w", err)
		}
		e.Direction = Direction(dir)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// GrantFichas начисляет игроку фишки рулетки.
// Используется админкой и внешним магазином.
func (r *Repository) GrantFichas(ctx context.Context, userID int64, count int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE wallets SET fichas = fichas + $2, updated_at = NOW() WHERE user_id = $1`,
		userID, count,
	)
	if err != nil {
		return fmt.Errorf("ошибка начисления фишек: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}
