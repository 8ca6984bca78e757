// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: периодический обход
// истёкших аукционов.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/l2portal/internal/config"
	"serotonyl.ru/l2portal/internal/features/auction"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron           *cron.Cron
	auctionService *auction.Service
	sweepSpec      string
}

// NewScheduler создаёт планировщик задач в часовом поясе игрового сервера.
func NewScheduler(auctionService *auction.Service, cfg *config.Config) *Scheduler {
	loc, err := time.LoadLocation(cfg.AppTimezone)
	if err != nil {
		log.WithError(err).Warnf("Не удалось загрузить %s, используем UTC-3", cfg.AppTimezone)
		loc = time.FixedZone("BRT", -3*60*60)
	}

	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:           c,
		auctionService: auctionService,
		sweepSpec:      cfg.AuctionSweepSpec,
	}
}

// Start запускает все фоновые задачи.
// Обход аукционов идемпотентен: в мультипроцессном деплое
// пересекающиеся запуски безопасны — уже завершённые лоты
// отваливаются по статусу и не выплачиваются повторно.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.sweepSpec, func() {
		log.Debug("[CRON] Обход истёкших аукционов")
		if err := s.auctionService.SweepExpired(ctx); err != nil {
			log.WithError(err).Error("[CRON] Ошибка обхода аукционов")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Infof("Планировщик задач запущен (%s)", s.sweepSpec)
	return nil
}

// Stop останавливает планировщик, дождавшись текущих задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
