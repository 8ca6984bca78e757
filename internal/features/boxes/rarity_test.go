package boxes

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"serotonyl.ru/l2portal/internal/common"
)

func boxType(legendary, epic, rare, common float64) *BoxType {
	return &BoxType{
		Name:            "Caixa Misteriosa",
		Price:           decimal.RequireFromString("100.00"),
		BoostersAmount:  5,
		ChanceLegendary: legendary,
		ChanceEpic:      epic,
		ChanceRare:      rare,
		ChanceCommon:    common,
		Enabled:         true,
	}
}

func TestRarityForRoll(t *testing.T) {
	bt := boxType(5, 15, 30, 50)

	tests := []struct {
		roll float64
		want Rarity
	}{
		{0, RarityLegendary},
		{4.99, RarityLegendary},
		{5, RarityEpic},
		{19.99, RarityEpic},
		{20, RarityRare},
		{49.99, RarityRare},
		{50, RarityCommon},
		{99.99, RarityCommon},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RarityForRoll(bt, tt.roll), "roll=%v", tt.roll)
	}
}

// Шанс common = 100 — никакая другая редкость выпасть не может.
func TestRarityForRollAllCommon(t *testing.T) {
	bt := boxType(0, 0, 0, 100)
	rng := rand.New(rand.NewSource(13))

	for i := 0; i < 1000; i++ {
		assert.Equal(t, RarityCommon, RarityForRoll(bt, rng.Float64()*100))
	}
}

func TestValidateChances(t *testing.T) {
	tests := []struct {
		name    string
		bt      *BoxType
		wantErr bool
	}{
		{"сумма ровно 100", boxType(5, 15, 30, 50), false},
		{"всё в common", boxType(0, 0, 0, 100), false},
		{"двухзнаковые шансы, float-сумма 99.99999999999999", boxType(32.58, 31.55, 2.82, 33.05), false},
		{"двухзнаковые шансы, настоящая недостача 0.01", boxType(32.58, 31.55, 2.81, 33.05), true},
		{"сумма меньше 100", boxType(5, 15, 30, 40), true},
		{"сумма больше 100", boxType(10, 20, 30, 50), true},
		{"отрицательный шанс", boxType(-5, 15, 40, 50), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChances(tt.bt)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidChances)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// rollScript возвращает заранее заданную последовательность бросков.
func rollScript(values ...float64) func() float64 {
	i := 0
	return func() float64 {
		v := values[i%len(values)]
		i++
		return v
	}
}

func TestRollContents(t *testing.T) {
	bt := boxType(10, 0, 0, 90)
	bt.BoostersAmount = 2
	allowed := []*TypeItem{
		{ItemID: 6656, Name: "Earring of Antharas", Rarity: RarityLegendary},
		{ItemID: 57, Name: "Adena Pack", Rarity: RarityCommon},
		{ItemID: 1458, Name: "Crystal D", Rarity: RarityCommon},
	}

	// Итерация 1: roll 0.05 → legendary, выбор 0.0 → единственный кандидат.
	// Итерация 2: roll 0.50 → common, выбор 0.9 → второй из двух.
	contents := RollContents(bt, allowed, rollScript(0.05, 0.0, 0.50, 0.9))

	assert.Len(t, contents, 2)
	assert.Equal(t, 6656, contents[0].ItemID)
	assert.Equal(t, RarityLegendary, contents[0].Rarity)
	assert.Equal(t, 1458, contents[1].ItemID)
	assert.Equal(t, RarityCommon, contents[1].Rarity)
	for _, c := range contents {
		assert.Equal(t, 1.0, c.Probability)
	}
}

// Редкость без кандидатов молча пропускается: слот не создаётся.
func TestRollContentsSkipsEmptyRarity(t *testing.T) {
	bt := boxType(100, 0, 0, 0)
	bt.BoostersAmount = 3
	allowed := []*TypeItem{
		{ItemID: 57, Name: "Adena Pack", Rarity: RarityCommon},
	}

	contents := RollContents(bt, allowed, rollScript(0.5))
	assert.Empty(t, contents)
}
