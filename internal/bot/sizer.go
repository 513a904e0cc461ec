package bot

import "memebot/pkg/utils"

// Sizer вычисляет размер позиции от доступного капитала
//
// tierPct задаёт долю капитала на уровень; отсутствие уровня в map
// означает, что торговля этим уровнем отключена.
type Sizer struct {
	tierPct     map[string]float64
	minNotional float64
}

// Доля капитала, которую нельзя превышать одной сделкой
// (резерв на комиссии и проскальзывание)
const maxCapitalFraction = 0.99

// NewSizer создаёт калькулятор размера позиции
func NewSizer(tierPct map[string]float64, minNotional float64) *Sizer {
	return &Sizer{tierPct: tierPct, minNotional: minNotional}
}

// Size возвращает размер сделки в квотируемом активе
//
// Правила:
// - 0 при неположительном капитале или отключённом уровне
// - базовый размер = available × tierPct[tier]
// - поднимается до minNotional если вышло меньше
// - не более 99% доступного капитала
func (s *Sizer) Size(available float64, tier string) float64 {
	if available <= 0 {
		return 0
	}

	pct, ok := s.tierPct[tier]
	if !ok {
		return 0
	}

	size := utils.Max(available*pct, s.minNotional)
	return utils.Min(size, available*maxCapitalFraction)
}
