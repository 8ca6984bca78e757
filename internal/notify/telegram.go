// Package notify — telegram.go отправляет уведомления через Telegram-бота.
// Привязку user_id → chat_id игрок настраивает в личном кабинете портала,
// она хранится в таблице notification_channels.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"
)

// Telegram — диспетчер уведомлений через Telegram Bot API.
type Telegram struct {
	bot *telego.Bot
	db  *pgxpool.Pool
}

// NewTelegram создаёт Telegram-диспетчер.
func NewTelegram(token string, db *pgxpool.Pool) (*Telegram, error) {
	bot, err := telego.NewBot(token, telego.WithDiscardLogger())
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram-бота: %w", err)
	}
	return &Telegram{bot: bot, db: db}, nil
}

// Notify отправляет текст игроку, если у него настроена привязка чата.
// Ошибки отправки только логируются: уведомление не имеет права
// повлиять на уже зафиксированную экономическую операцию.
func (t *Telegram) Notify(ctx context.Context, userID int64, text string) {
	chatID, err := t.chatID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		// Игрок не привязывал Telegram — молча пропускаем
		return
	}
	if err != nil {
		log.WithError(err).WithField("user", userID).Error("Ошибка поиска привязки чата")
		return
	}

	_, err = t.bot.SendMessage(ctx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: chatID},
		Text:   text,
	})
	if err != nil {
		log.WithError(err).WithField("user", userID).Error("Ошибка отправки уведомления")
		return
	}

	log.WithField("user", userID).Debug("Уведомление отправлено")
}

func (t *Telegram) chatID(ctx context.Context, userID int64) (int64, error) {
	var chatID int64
	err := t.db.QueryRow(ctx,
		`SELECT telegram_chat_id FROM notification_channels WHERE user_id = $1`,
		userID,
	).Scan(&chatID)
	return chatID, err
}
