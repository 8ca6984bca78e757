// Package roulette — service.go координирует спин рулетки.
package roulette

import (
	"context"
	"math/rand"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/l2portal/internal/common"
	"serotonyl.ru/l2portal/internal/config"
)

// repository — контракт хранилища рулетки.
type repository interface {
	CreatePrize(ctx context.Context, p *Prize) error
	ListEnabledPrizes(ctx context.Context) ([]*Prize, error)
	Spin(ctx context.Context, userID int64, prize *Prize) (*Spin, error)
	History(ctx context.Context, userID int64, limit int) ([]*Spin, error)
}

// Service управляет рулеткой.
type Service struct {
	repo repository
	cfg  *config.Config
	// roll — источник случайности [0, 1); в тестах подменяется
	roll func() float64
}

// NewService создаёт сервис рулетки.
func NewService(repo repository, cfg *config.Config) *Service {
	return &Service{repo: repo, cfg: cfg, roll: rand.Float64}
}

// AddPrize валидирует и добавляет приз в пул.
func (s *Service) AddPrize(ctx context.Context, p *Prize) error {
	if p.Weight <= 0 {
		return common.ErrInvalidAmount
	}
	return s.repo.CreatePrize(ctx, p)
}

// Spin выполняет полный цикл спина: выбор приза пропорционально весу,
// списание ровно одной фишки и запись истории — атомарно в репозитории.
func (s *Service) Spin(ctx context.Context, userID int64) (*Prize, error) {
	if !s.cfg.FeatureRouletteEnabled {
		return nil, common.ErrRouletteDisabled
	}

	prizes, err := s.repo.ListEnabledPrizes(ctx)
	if err != nil {
		return nil, err
	}
	if len(prizes) == 0 {
		return nil, common.ErrNoPrizes
	}

	weights := make([]float64, len(prizes))
	for i, p := range prizes {
		weights[i] = p.Weight
	}
	idx := common.WeightedIndex(weights, s.roll())
	if idx < 0 {
		return nil, common.ErrNoPrizes
	}
	prize := prizes[idx]

	if _, err := s.repo.Spin(ctx, userID, prize); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user":  userID,
		"prize": prize.Name,
	}).Info("Спин рулетки")
	return prize, nil
}

// History возвращает последние спины пользователя.
func (s *Service) History(ctx context.Context, userID int64, limit int) ([]*Spin, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.History(ctx, userID, limit)
}
