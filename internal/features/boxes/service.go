// Package boxes — service.go координирует жизненный цикл бокса:
// конфигурация типов, покупка с наполнением, открытие с розыгрышем.
package boxes

import (
	"context"
	"math/rand"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/l2portal/internal/common"
	"serotonyl.ru/l2portal/internal/config"
)

// repository — контракт хранилища боксов.
// Реализация — *Repository (PostgreSQL), в тестах — мок.
type repository interface {
	CreateBoxType(ctx context.Context, bt *BoxType) error
	UpdateBoxType(ctx context.Context, bt *BoxType) error
	GetBoxType(ctx context.Context, id int64) (*BoxType, error)
	TypeItems(ctx context.Context, boxTypeID int64) ([]*TypeItem, error)
	Buy(ctx context.Context, userID int64, bt *BoxType, contents []*BoxItem) (*Box, error)
	GetBox(ctx context.Context, id int64) (*Box, error)
	BoxItems(ctx context.Context, boxID int64) ([]*BoxItem, error)
	InsertBoxItems(ctx context.Context, boxID int64, contents []*BoxItem) error
	Consume(ctx context.Context, box *Box, won *BoxItem) error
}

// Service управляет боксами.
type Service struct {
	repo repository
	cfg  *config.Config
	// roll — источник случайности [0, 1); в тестах подменяется
	roll func() float64
}

// NewService создаёт сервис боксов.
func NewService(repo repository, cfg *config.Config) *Service {
	return &Service{repo: repo, cfg: cfg, roll: rand.Float64}
}

// CreateBoxType валидирует и сохраняет новый тип бокса.
// Шансы редкостей должны в сумме давать ровно 100.
func (s *Service) CreateBoxType(ctx context.Context, bt *BoxType) error {
	if err := s.validateBoxType(bt); err != nil {
		return err
	}
	return s.repo.CreateBoxType(ctx, bt)
}

// UpdateBoxType валидирует и обновляет тип бокса.
func (s *Service) UpdateBoxType(ctx context.Context, bt *BoxType) error {
	if err := s.validateBoxType(bt); err != nil {
		return err
	}
	return s.repo.UpdateBoxType(ctx, bt)
}

func (s *Service) validateBoxType(bt *BoxType) error {
	if !bt.Price.IsPositive() {
		return common.ErrInvalidAmount
	}
	if bt.BoostersAmount <= 0 || bt.BoostersAmount > s.cfg.BoxMaxBoosters {
		return common.ErrInvalidAmount
	}
	return ValidateChances(bt)
}

// Buy покупает бокс: цена списывается через леджер (SAIDA), бокс
// создаётся и сразу наполняется разыгранными слотами — одна транзакция.
func (s *Service) Buy(ctx context.Context, userID, boxTypeID int64) (*Box, error) {
	if !s.cfg.FeatureBoxesEnabled {
		return nil, common.ErrBoxesDisabled
	}

	bt, err := s.repo.GetBoxType(ctx, boxTypeID)
	if err != nil {
		return nil, err
	}
	if !bt.Enabled {
		return nil, common.ErrNotFound
	}

	allowed, err := s.repo.TypeItems(ctx, boxTypeID)
	if err != nil {
		return nil, err
	}

	contents := RollContents(bt, allowed, s.roll)
	box, err := s.repo.Buy(ctx, userID, bt, contents)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user":  userID,
		"box":   box.ID,
		"type":  bt.Name,
		"slots": len(contents),
	}).Info("Бокс куплен")
	return box, nil
}

// Populate дополняет существующий бокс слотами по шансам его типа.
// Используется админкой для переразыгрыша пустых боксов.
func (s *Service) Populate(ctx context.Context, boxID int64) error {
	box, err := s.repo.GetBox(ctx, boxID)
	if err != nil {
		return err
	}
	// Открытый бокс дополнять нельзя — награда по нему уже выдана
	if box.Opened {
		return common.ErrNotFound
	}

	bt, err := s.repo.GetBoxType(ctx, box.BoxTypeID)
	if err != nil {
		return err
	}
	allowed, err := s.repo.TypeItems(ctx, bt.ID)
	if err != nil {
		return err
	}

	contents := RollContents(bt, allowed, s.roll)
	return s.repo.InsertBoxItems(ctx, boxID, contents)
}

// Open открывает бокс: взвешенный розыгрыш по слотам и награда в сумку.
// Возвращает выигранный предмет либо ошибку — никогда оба сразу.
func (s *Service) Open(ctx context.Context, userID, boxID int64) (*BoxItem, error) {
	if !s.cfg.FeatureBoxesEnabled {
		return nil, common.ErrBoxesDisabled
	}

	box, err := s.repo.GetBox(ctx, boxID)
	if err != nil {
		return nil, err
	}
	// Чужой или уже открытый бокс для игрока не существует
	if box.UserID != userID || box.Opened {
		return nil, common.ErrNotFound
	}

	items, err := s.repo.BoxItems(ctx, boxID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, common.ErrEmptyBox
	}

	weights := make([]float64, len(items))
	for i, it := range items {
		weights[i] = it.Probability
	}
	idx := common.WeightedIndex(weights, s.roll())
	if idx < 0 {
		return nil, common.ErrEmptyBox
	}
	won := items[idx]

	if err := s.repo.Consume(ctx, box, won); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user":   userID,
		"box":    boxID,
		"item":   won.ItemID,
		"rarity": won.Rarity,
	}).Info("Бокс открыт")
	return won, nil
}
