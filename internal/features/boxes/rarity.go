// Package boxes — rarity.go содержит чистую логику розыгрыша редкостей
// и наполнения бокса. Случайность передаётся снаружи (roll-функция),
// поэтому вся логика проверяется тестами без БД.
package boxes

import (
	"github.com/shopspring/decimal"

	"serotonyl.ru/l2portal/internal/common"
)

// RarityForRoll возвращает редкость для броска roll из [0, 100).
// Пороги идут кумулятивно и проверяются в фиксированном порядке:
// сначала legendary, затем legendary+epic, затем legendary+epic+rare;
// всё, что выше — common.
func RarityForRoll(bt *BoxType, roll float64) Rarity {
	threshold := bt.ChanceLegendary
	if roll < threshold {
		return RarityLegendary
	}
	threshold += bt.ChanceEpic
	if roll < threshold {
		return RarityEpic
	}
	threshold += bt.ChanceRare
	if roll < threshold {
		return RarityRare
	}
	return RarityCommon
}

// ValidateChances проверяет шансы типа бокса:
// все четыре неотрицательны и в сумме дают ровно 100.
// Сумма считается в decimal: колонки chance_* двухзнаковые, и набор
// вроде 32.58+31.55+2.82+33.05 во float64 недотягивает до 100.
func ValidateChances(bt *BoxType) error {
	chances := []float64{bt.ChanceLegendary, bt.ChanceEpic, bt.ChanceRare, bt.ChanceCommon}
	sum := decimal.Zero
	for _, c := range chances {
		if c < 0 {
			return common.ErrInvalidChances
		}
		sum = sum.Add(decimal.NewFromFloat(c))
	}
	if !sum.Equal(decimal.NewFromInt(100)) {
		return common.ErrInvalidChances
	}
	return nil
}

// RollContents разыгрывает содержимое бокса: boosters_amount итераций,
// на каждой — бросок редкости, фильтр разрешённых предметов этой
// редкости и равномерный выбор одного из них. Редкость без кандидатов
// молча пропускается — итерация не даёт награды.
//
// roll — источник равномерных чисел из [0, 1), обычно rand.Float64.
func RollContents(bt *BoxType, allowed []*TypeItem, roll func() float64) []*BoxItem {
	var contents []*BoxItem
	for i := 0; i < bt.BoostersAmount; i++ {
		rarity := RarityForRoll(bt, roll()*100)

		var candidates []*TypeItem
		for _, it := range allowed {
			if it.Rarity == rarity {
				candidates = append(candidates, it)
			}
		}
		if len(candidates) == 0 {
			continue
		}

		pick := candidates[int(roll()*float64(len(candidates)))]
		contents = append(contents, &BoxItem{
			ItemID:      pick.ItemID,
			Enchant:     pick.Enchant,
			Name:        pick.Name,
			Rarity:      pick.Rarity,
			Probability: 1.0,
		})
	}
	return contents
}
