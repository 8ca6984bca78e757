// Package auction — service.go координирует операции аукциона:
// валидация, вызов атомарных операций репозитория, уведомления.
package auction

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/l2portal/internal/common"
	"serotonyl.ru/l2portal/internal/config"
	"serotonyl.ru/l2portal/internal/notify"
)

// repository — контракт хранилища аукционов.
// Реализация — *Repository (PostgreSQL), в тестах — мок.
type repository interface {
	Create(ctx context.Context, a *Auction) error
	GetByID(ctx context.Context, id int64) (*Auction, error)
	List(ctx context.Context, status Status, limit int) ([]*Auction, error)
	ListExpiredIDs(ctx context.Context, now time.Time) ([]int64, error)
	PlaceBid(ctx context.Context, auctionID, bidderUserID int64, bidderCharacter string, amount decimal.Decimal, now time.Time) (*PlaceBidResult, error)
	Finish(ctx context.Context, auctionID int64, now time.Time) (*FinishResult, error)
	Cancel(ctx context.Context, auctionID, sellerUserID int64, now time.Time) (*CancelResult, error)
	Bids(ctx context.Context, auctionID int64) ([]*Bid, error)
}

// Service управляет аукционным домом.
type Service struct {
	repo     repository
	notifier notify.Notifier
	cfg      *config.Config
}

// NewService создаёт сервис аукциона.
func NewService(repo repository, notifier notify.Notifier, cfg *config.Config) *Service {
	return &Service{repo: repo, notifier: notifier, cfg: cfg}
}

// CreateParams — параметры нового лота.
type CreateParams struct {
	SellerUserID    int64
	SellerCharacter string
	ItemID          int
	Enchant         int
	Quantity        int
	StartingBid     decimal.Decimal
	EndTime         time.Time
}

// Create выставляет лот на аукцион.
// Стак уходит из инвентаря продавца в эскроу в той же транзакции.
func (s *Service) Create(ctx context.Context, p CreateParams) (*Auction, error) {
	if !p.StartingBid.IsPositive() {
		return nil, common.ErrInvalidAmount
	}
	if p.Quantity <= 0 {
		return nil, common.ErrInvalidAmount
	}
	now := time.Now()
	if !p.EndTime.After(now) {
		return nil, fmt.Errorf("время окончания лота уже прошло")
	}
	maxEnd := now.Add(time.Duration(s.cfg.AuctionMaxDurationHours) * time.Hour)
	if p.EndTime.After(maxEnd) {
		return nil, fmt.Errorf("лот не может длиться дольше %d часов", s.cfg.AuctionMaxDurationHours)
	}

	a := &Auction{
		SellerUserID:    p.SellerUserID,
		SellerCharacter: p.SellerCharacter,
		ItemID:          p.ItemID,
		Enchant:         p.Enchant,
		Quantity:        p.Quantity,
		StartingBid:     p.StartingBid,
		EndTime:         p.EndTime,
		Status:          StatusPending,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"auction": a.ID,
		"seller":  a.SellerUserID,
		"item":    a.ItemID,
		"end":     common.FormatDateTime(a.EndTime),
	}).Info("Лот выставлен")
	return a, nil
}

// Get возвращает лот по id.
func (s *Service) Get(ctx context.Context, id int64) (*Auction, error) {
	return s.repo.GetByID(ctx, id)
}

// ListOpen возвращает открытые лоты.
func (s *Service) ListOpen(ctx context.Context, limit int) ([]*Auction, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.List(ctx, StatusPending, limit)
}

// Bids возвращает историю ставок лота.
func (s *Service) Bids(ctx context.Context, auctionID int64) ([]*Bid, error) {
	return s.repo.Bids(ctx, auctionID)
}

// PlaceBid размещает ставку от имени игрока.
// Все проверки и движение денег атомарны внутри репозитория;
// перебитый лидер получает уведомление уже после фиксации.
func (s *Service) PlaceBid(ctx context.Context, auctionID, bidderUserID int64, bidderCharacter string, amount decimal.Decimal) (*Bid, error) {
	if !amount.IsPositive() {
		return nil, common.ErrInvalidBid
	}

	result, err := s.repo.PlaceBid(ctx, auctionID, bidderUserID, bidderCharacter, amount, time.Now())
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"auction": auctionID,
		"bidder":  bidderUserID,
		"amount":  amount.String(),
	}).Info("Ставка принята")

	if result.OutbidUserID != nil {
		s.notifier.Notify(ctx, *result.OutbidUserID,
			fmt.Sprintf("Seu lance de %s no leilão #%d foi superado. O valor voltou para a sua carteira.",
				result.RefundedAmount.StringFixed(2), auctionID))
	}
	return result.Bid, nil
}

// Finish завершает истёкший аукцион и уведомляет победителя.
func (s *Service) Finish(ctx context.Context, auctionID int64) (*FinishResult, error) {
	result, err := s.repo.Finish(ctx, auctionID, time.Now())
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"auction": auctionID,
		"status":  result.Status,
	}).Info("Аукцион завершён")

	if result.WinnerUserID != nil {
		s.notifier.Notify(ctx, *result.WinnerUserID,
			fmt.Sprintf("Você venceu o leilão #%d por %s! O item está no seu depósito de leilão.",
				auctionID, result.SoldAmount.StringFixed(2)))
	}
	return result, nil
}

// Cancel отменяет лот по инициативе продавца.
func (s *Service) Cancel(ctx context.Context, auctionID, sellerUserID int64) (*CancelResult, error) {
	result, err := s.repo.Cancel(ctx, auctionID, sellerUserID, time.Now())
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"auction": auctionID,
		"seller":  sellerUserID,
	}).Info("Лот отменён продавцом")

	if result.RefundedUserID != nil {
		s.notifier.Notify(ctx, *result.RefundedUserID,
			fmt.Sprintf("O leilão #%d foi cancelado pelo vendedor. Seu lance de %s foi devolvido.",
				auctionID, result.RefundedAmount.StringFixed(2)))
	}
	return result, nil
}

// SweepExpired завершает все лоты, у которых вышло время.
// Ошибки обрабатываются ПО-ШТУЧНО: один проблемный лот логируется
// и пропускается, остальная пачка продолжает обрабатываться.
// Повторный запуск безопасен — уже завершённые лоты отвечают
// ErrAuctionClosed и не выплачиваются второй раз.
func (s *Service) SweepExpired(ctx context.Context) error {
	ids, err := s.repo.ListExpiredIDs(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("ошибка поиска истёкших лотов: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	finished := 0
	for _, id := range ids {
		if _, err := s.Finish(ctx, id); err != nil {
			log.WithError(err).WithField("auction", id).Error("Ошибка завершения лота")
			continue
		}
		finished++
	}

	log.WithFields(log.Fields{"total": len(ids), "finished": finished}).Info("Обход истёкших лотов завершён")
	return nil
}
