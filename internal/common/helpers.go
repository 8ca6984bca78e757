// Package common содержит общие утилиты, используемые во всём проекте.
package common

import "time"

// ServerLocation возвращает часовой пояс игрового сервера (America/Sao_Paulo).
// Используется для отображения времени окончания аукционов.
func ServerLocation() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		// Если база зон недоступна — BRT вручную
		loc = time.FixedZone("BRT", -3*60*60)
	}
	return loc
}

// FormatDateTime форматирует время в формат "02.01.2006 15:04".
// Используется для отображения дат транзакций и ставок.
func FormatDateTime(t time.Time) string {
	return t.In(ServerLocation()).Format("02.01.2006 15:04")
}
