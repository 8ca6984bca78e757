// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях экономического ядра портала.
// Эти ошибки позволяют внешнему слою (веб-интерфейсу) различать типы
// проблем и показывать игроку понятные сообщения.
package common

import "errors"

// Ошибки кошелька (леджер)
var (
	// ErrInsufficientFunds — на балансе не хватает средств для списания
	ErrInsufficientFunds = errors.New("недостаточно средств на кошельке")
	// ErrInvalidAmount — некорректная сумма (ноль или отрицательная)
	ErrInvalidAmount = errors.New("сумма должна быть положительной")
	// ErrNotFound — запрошенная запись не найдена в базе
	ErrNotFound = errors.New("запись не найдена")
)

// Ошибки аукциона
var (
	// ErrAuctionClosed — аукцион уже завершён, отменён или время вышло
	ErrAuctionClosed = errors.New("аукцион закрыт")
	// ErrAuctionStillActive — аукцион ещё идёт, завершать рано
	ErrAuctionStillActive = errors.New("аукцион ещё не завершился")
	// ErrInvalidBid — ставка не выше текущей (требуется строго больше)
	ErrInvalidBid = errors.New("ставка должна быть строго выше текущей")
	// ErrNotSeller — отменить лот может только продавец
	ErrNotSeller = errors.New("лот принадлежит другому продавцу")
)

// Ошибки инвентаря
var (
	// ErrNotEnoughItems — в стаке нет нужного количества предметов
	ErrNotEnoughItems = errors.New("недостаточно предметов в инвентаре")
)

// Ошибки боксов (гача)
var (
	// ErrEmptyBox — в боксе нет ни одного предмета
	ErrEmptyBox = errors.New("бокс пуст")
	// ErrInvalidChances — шансы редкостей бокса не дают в сумме ровно 100
	ErrInvalidChances = errors.New("шансы редкостей должны в сумме давать 100")
	// ErrBoxesDisabled — боксы отключены в настройках
	ErrBoxesDisabled = errors.New("боксы временно отключены")
)

// Ошибки рулетки
var (
	// ErrNoTokens — у игрока нет фишек для спина
	ErrNoTokens = errors.New("нет фишек для спина")
	// ErrNoPrizes — пул призов рулетки пуст
	ErrNoPrizes = errors.New("пул призов пуст")
	// ErrRouletteDisabled — рулетка отключена в настройках
	ErrRouletteDisabled = errors.New("рулетка временно отключена")
)
