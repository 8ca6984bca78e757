// Package notify доставляет игрокам уведомления о событиях экономики
// (перебитая ставка, победа в аукционе, отмена лота).
//
// Доставка строго fire-and-forget: уведомление отправляется ПОСЛЕ
// фиксации денежной транзакции, а его ошибка только логируется и
// никогда не откатывает экономическую операцию.
package notify

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Notifier — диспетчер уведомлений.
// Реализация выбирается при сборке приложения: Telegram при наличии
// токена, иначе Noop.
type Notifier interface {
	Notify(ctx context.Context, userID int64, text string)
}

// Noop пишет уведомления только в лог.
// Используется в окружениях без Telegram-токена и в тестах.
type Noop struct{}

// NewNoop создаёт лог-заглушку диспетчера.
func NewNoop() *Noop {
	return &Noop{}
}

// Notify логирует уведомление и ничего не отправляет.
func (n *Noop) Notify(_ context.Context, userID int64, text string) {
	log.WithFields(log.Fields{"user": userID, "text": text}).Debug("Уведомление (noop)")
}
