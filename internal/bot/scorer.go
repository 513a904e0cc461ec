package bot

import (
	"memebot/internal/config"
	"memebot/internal/models"
)

// Коэффициенты смягчения порогов для уровня A
const (
	tierALiquidityFactor = 0.9 // 90% от порога ликвидности
	tierAPoolAgeFactor   = 0.5 // 50% от порога возраста пула
)

// Scorer - чистый классификатор кандидатов по уровням качества
//
// Не имеет состояния и не делает сетевых запросов: один и тот же
// кандидат с одними и теми же порогами всегда даёт один уровень.
type Scorer struct {
	thresholds config.StrategyConfig
}

// NewScorer создаёт классификатор с порогами из конфигурации
func NewScorer(thresholds config.StrategyConfig) *Scorer {
	return &Scorer{thresholds: thresholds}
}

// Classify присваивает кандидату уровень качества
//
// Порядок проверок:
// 1. Моментум-гейт: изменение цены ниже порога входа - сразу REJECTED
// 2. A_PLUS: ликвидность, объём и возраст пула проходят жёсткие пороги
// 3. A: смягчённые пороги (90% ликвидности, полный объём, 50% возраста)
// 4. Иначе REJECTED
func (s *Scorer) Classify(c models.Candidate) models.Tier {
	t := s.thresholds

	if c.PriceChangePct < t.EntryThresholdPct {
		return models.TierRejected
	}

	if c.LiquidityUsd >= t.MinLiquidityUsd &&
		c.Volume24hUsd >= t.MinVolumeUsd &&
		c.PoolAgeSec >= t.MinPoolAgeSec {
		return models.TierAPlus
	}

	if c.LiquidityUsd >= t.MinLiquidityUsd*tierALiquidityFactor &&
		c.Volume24hUsd >= t.MinVolumeUsd &&
		float64(c.PoolAgeSec) >= float64(t.MinPoolAgeSec)*tierAPoolAgeFactor {
		return models.TierA
	}

	return models.TierRejected
}
