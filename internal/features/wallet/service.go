// Package wallet — service.go содержит бизнес-логику кошелька.
// Валидация, применение транзакций, история леджера.
package wallet

import (
	"context"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/l2portal/internal/common"
	"serotonyl.ru/l2portal/internal/config"
)

// repository — контракт хранилища, нужный сервису.
// Конкретная реализация выбирается при сборке приложения (internal/app),
// в тестах подставляется мок.
type repository interface {
	Ensure(ctx context.Context, userID int64, starting decimal.Decimal) error
	GetByUserID(ctx context.Context, userID int64) (*Wallet, error)
	Apply(ctx context.Context, userID int64, direction Direction, amount decimal.Decimal, description, origin, destination string) (*Entry, error)
	ApplyBonus(ctx context.Context, userID int64, direction Direction, amount decimal.Decimal, description, origin, destination string) (*Entry, error)
	Entries(ctx context.Context, userID int64, limit int) ([]*Entry, error)
	BonusEntries(ctx context.Context, userID int64, limit int) ([]*Entry, error)
	GrantFichas(ctx context.Context, userID int64, count int) error
}

// Service управляет кошельками игроков.
type Service struct {
	repo repository
	cfg  *config.Config
}

// NewService создаёт сервис кошельков.
func NewService(repo repository, cfg *config.Config) *Service {
	return &Service{repo: repo, cfg: cfg}
}

// EnsureWallet создаёт кошелёк для нового игрока, если его ещё нет.
func (s *Service) EnsureWallet(ctx context.Context, userID int64) error {
	return s.repo.Ensure(ctx, userID, s.cfg.StartingBalance())
}

// Get возвращает кошелёк пользователя.
func (s *Service) Get(ctx context.Context, userID int64) (*Wallet, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// Apply применяет транзакцию к основному балансу и создаёт запись леджера.
// Валидация выполняется ДО любых изменений: при ошибке состояние не меняется.
func (s *Service) Apply(ctx context.Context, userID int64, direction Direction, amount decimal.Decimal, description, origin, destination string) (*Entry, error) {
	if !amount.IsPositive() {
		return nil, common.ErrInvalidAmount
	}

	entry, err := s.repo.Apply(ctx, userID, direction, amount, description, origin, destination)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user":      userID,
		"direction": direction,
		"amount":    amount.String(),
		"origin":    origin,
		"reference": entry.Reference,
	}).Info("Транзакция кошелька применена")

	return entry, nil
}

// ApplyBonus применяет транзакцию к бонусному балансу.
// Контракт идентичен Apply, но балансы и леджеры не смешиваются.
func (s *Service) ApplyBonus(ctx context.Context, userID int64, direction Direction, amount decimal.Decimal, description, origin, destination string) (*Entry, error) {
	if !amount.IsPositive() {
		return nil, common.ErrInvalidAmount
	}

	entry, err := s.repo.ApplyBonus(ctx, userID, direction, amount, description, origin, destination)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user":      userID,
		"direction": direction,
		"amount":    amount.String(),
		"origin":    origin,
		"reference": entry.Reference,
	}).Info("Бонусная транзакция применена")

	return entry, nil
}

// History возвращает последние записи основного леджера.
func (s *Service) History(ctx context.Context, userID int64, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.Entries(ctx, userID, limit)
}

// BonusHistory возвращает последние записи бонусного леджера.
func (s *Service) BonusHistory(ctx context.Context, userID int64, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.BonusEntries(ctx, userID, limit)
}

// GrantFichas начисляет фишки рулетки.
func (s *Service) GrantFichas(ctx context.Context, userID int64, count int) error {
	if count <= 0 {
		return common.ErrInvalidAmount
	}
	return s.repo.GrantFichas(ctx, userID, count)
}
