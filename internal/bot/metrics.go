package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ============================================================
// Prometheus метрики торгового ядра
// ============================================================
//
// Использование:
// - Grafana дашборды для визуализации
// - Alertmanager для уведомлений о проблемах

// ============ Метрики тика ============

// TickDuration - длительность полного тика планировщика
var TickDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: "memebot",
		Subsystem: "scheduler",
		Name:      "tick_duration_seconds",
		Help:      "Duration of a full scheduler tick in seconds",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	},
)

// TicksTotal - количество тиков по результату
var TicksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "memebot",
		Subsystem: "scheduler",
		Name:      "ticks_total",
		Help:      "Total number of scheduler ticks",
	},
	[]string{"result"}, // ok, halted, scan_failed
)

// CandidatesScored - кандидаты по уровням за всё время
var CandidatesScored = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "memebot",
		Subsystem: "scoring",
		Name:      "candidates_scored_total",
		Help:      "Total number of candidates scored by tier",
	},
	[]string{"tier"}, // A_PLUS, A, REJECTED
)

// ============ Метрики сделок ============

// TradesTotal - количество сделок
var TradesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "memebot",
		Subsystem: "trading",
		Name:      "trades_total",
		Help:      "Total number of trades",
	},
	[]string{"side", "result"}, // side: buy, sell; result: success, failed
)

// ExitsTotal - закрытия позиций по причинам
var ExitsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "memebot",
		Subsystem: "trading",
		Name:      "exits_total",
		Help:      "Total number of position exits by reason",
	},
	[]string{"reason"}, // STOP_LOSS, TRAILING_TP, MANUAL
)

// PnlObserved - распределение результатов закрытых сделок (доля от входа)
var PnlObserved = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: "memebot",
		Subsystem: "trading",
		Name:      "pnl_fraction",
		Help:      "Realized PnL per closed trade as a fraction of entry",
		Buckets:   []float64{-0.5, -0.2, -0.1, -0.05, 0, 0.05, 0.1, 0.2, 0.3, 0.5, 1, 2},
	},
)

// ============ Метрики состояния ============

// OpenPositions - текущее количество открытых позиций
var OpenPositions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "memebot",
		Subsystem: "trading",
		Name:      "open_positions",
		Help:      "Current number of open positions",
	},
)

// BlacklistSize - количество активных записей чёрного списка
var BlacklistSize = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "memebot",
		Subsystem: "risk",
		Name:      "blacklist_size",
		Help:      "Current number of active blacklist entries",
	},
)

// Halted - флаг остановки планировщика (1 = остановлен)
var Halted = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "memebot",
		Subsystem: "scheduler",
		Name:      "halted",
		Help:      "Whether the scheduler is halted (1=halted, 0=running)",
	},
)

// ============ Метрики риска ============

// ProbeFailures - провалы honeypot-зонда
var ProbeFailures = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "memebot",
		Subsystem: "risk",
		Name:      "probe_failures_total",
		Help:      "Total number of honeypot probe failures",
	},
)

// ExecFailures - неудачи исполнения по адресам
var ExecFailures = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "memebot",
		Subsystem: "risk",
		Name:      "exec_failures_total",
		Help:      "Total number of swap execution failures",
	},
	[]string{"side"}, // buy, sell
)

// ============ Метрики источников данных ============

// ScanCandidates - размер выборки по источникам
var ScanCandidates = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "memebot",
		Subsystem: "scanner",
		Name:      "candidates",
		Help:      "Number of candidates fetched per source on the last scan",
	},
	[]string{"source"},
)

// ScanErrors - ошибки запросов к источникам
var ScanErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "memebot",
		Subsystem: "scanner",
		Name:      "errors_total",
		Help:      "Total number of market data source errors",
	},
	[]string{"source"},
)

// ============ Вспомогательные функции ============

// RecordTick записывает результат и длительность тика
func RecordTick(result string, seconds float64) {
	TicksTotal.WithLabelValues(result).Inc()
	TickDuration.Observe(seconds)
}

// RecordTier записывает результат классификации кандидата
func RecordTier(tier string) {
	CandidatesScored.WithLabelValues(tier).Inc()
}

// RecordTrade записывает исполненную или неудавшуюся сделку
func RecordTrade(side string, success bool) {
	result := "failed"
	if success {
		result = "success"
	}
	TradesTotal.WithLabelValues(side, result).Inc()
}

// RecordExit записывает закрытие позиции
func RecordExit(reason string, pnlFraction float64) {
	ExitsTotal.WithLabelValues(reason).Inc()
	PnlObserved.Observe(pnlFraction)
}

// UpdateStateGauges обновляет gauge-метрики состояния
func UpdateStateGauges(openPositions, blacklistSize int, halted bool) {
	OpenPositions.Set(float64(openPositions))
	BlacklistSize.Set(float64(blacklistSize))
	if halted {
		Halted.Set(1)
	} else {
		Halted.Set(0)
	}
}
