package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Режимы исполнения сделок
const (
	ModeSimu = "SIMU" // виртуальное исполнение, без транзакций в сети
	ModeReal = "REAL" // реальные свопы через Jupiter
)

// Режимы проверки маршрута свопа
const (
	RouteCheckStrict     = "strict"     // все площадки маршрута должны быть в allow-list
	RouteCheckPermissive = "permissive" // достаточно первой площадки маршрута
)

// Варианты ранжирования кандидатов внутри тика
const (
	RankingMomentum  = "momentum"  // по изменению цены (канонический вариант)
	RankingComposite = "composite" // моментум, взвешенный логарифмом объёма
)

// Config содержит всю конфигурацию приложения.
// Строится один раз при старте и дальше не изменяется.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Security  SecurityConfig
	Bot       BotConfig
	Strategy  StrategyConfig
	Scanner   ScannerConfig
	Executor  ExecutorConfig
	Storage   StorageConfig
	Logging   LoggingConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Port int
	Host string
}

// DatabaseConfig - настройки подключения к БД (журнал сделок и уведомлений)
type DatabaseConfig struct {
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

// SecurityConfig - настройки безопасности
type SecurityConfig struct {
	// Ключ AES-256 для шифрования приватного ключа кошелька на диске
	EncryptionKey string
	// bcrypt-хэш API токена; пустая строка отключает авторизацию
	APITokenHash string
}

// BotConfig - общие настройки планировщика
type BotConfig struct {
	TickInterval     time.Duration // интервал между тиками
	MaxOpenPositions int           // максимум одновременных позиций
	StartHalted      bool          // стартовать в остановленном состоянии
}

// StrategyConfig - пороги скоринга, сайзинга и выхода.
// Все проценты выражены долями: 0.10 = 10%.
type StrategyConfig struct {
	// Скоринг
	EntryThresholdPct float64 // минимальный моментум для рассмотрения, % (как у провайдера)
	MinLiquidityUsd   float64 // жёсткий порог ликвидности
	MinVolumeUsd      float64 // жёсткий порог объёма за 24ч
	MinPoolAgeSec     int64   // жёсткий порог возраста пула
	Ranking           string  // momentum | composite

	// Сайзинг
	TierPct     map[string]float64 // доля капитала по уровням (A_PLUS, A); отсутствие = уровень отключён
	MinNotional float64            // минимальный размер сделки в квотируемом активе

	// Выход
	StopLossPct          float64 // доля просадки от входа для стоп-лосса
	TrailingTriggerPct   float64 // доля прироста для активации трейлинга
	TrailingThrowbackPct float64 // доля отката от пика для выхода

	// Entry gate
	ProbeNotional     float64       // размер honeypot-зонда (в квотируемом активе)
	ProbeCooldown     time.Duration // блокировка после провала зонда
	ExecFailThreshold int           // подряд неудачных исполнений до блокировки
	ExecFailCooldown  time.Duration // блокировка после серии неудач
	AllowedVenues     []string      // allow-list площадок исполнения
	RouteCheck        string        // strict | permissive
	Whitelist         []string      // если не пуст - торгуем только эти адреса
}

// ScannerConfig - настройки сканера рынка
type ScannerConfig struct {
	Sources       []string      // dexscreener, gecko, birdeye (в порядке приоритета)
	BirdeyeAPIKey string        // обязателен только если birdeye в Sources
	FetchTimeout  time.Duration // таймаут одного запроса к провайдеру
	MaxCandidates int           // ограничение размера выборки с одного источника
	RateLimit     float64       // запросов в секунду к одному провайдеру
}

// ExecutorConfig - настройки исполнения свопов
type ExecutorConfig struct {
	Mode             string        // SIMU | REAL
	RPCEndpoint      string        // Solana RPC
	PrivateKey       string        // base58 приватный ключ (зашифрован, если задан EncryptionKey)
	SlippageBps      int           // допустимое проскальзывание, базисные пункты
	QuoteTimeout     time.Duration // таймаут запроса котировки
	SimStartBalance  float64       // стартовый виртуальный баланс для SIMU
}

// StorageConfig - настройки снапшотов состояния
type StorageConfig struct {
	Dir string // каталог для positions.json и blacklist.json
}

// LoggingConfig - настройки логирования
type LoggingConfig struct {
	Level  string
	Format string
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvAsInt("SERVER_PORT", 8080),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			Name:     getEnv("DB_NAME", "memebot"),
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Security: SecurityConfig{
			EncryptionKey: getEnv("ENCRYPTION_KEY", ""),
			APITokenHash:  getEnv("API_TOKEN_HASH", ""),
		},
		Bot: BotConfig{
			TickInterval:     getEnvAsDuration("TICK_INTERVAL", 30*time.Second),
			MaxOpenPositions: getEnvAsInt("MAX_OPEN_POSITIONS", 4),
			StartHalted:      getEnvAsBool("START_HALTED", false),
		},
		Strategy: StrategyConfig{
			EntryThresholdPct: getEnvAsFloat("ENTRY_THRESHOLD_PCT", 20),
			MinLiquidityUsd:   getEnvAsFloat("MIN_LIQUIDITY_USD", 20000),
			MinVolumeUsd:      getEnvAsFloat("MIN_VOLUME_USD", 10000),
			MinPoolAgeSec:     int64(getEnvAsInt("MIN_POOL_AGE_SEC", 7200)),
			Ranking:           getEnv("RANKING", RankingMomentum),

			TierPct:     parseTierPct(getEnv("TIER_PCT", "A_PLUS:0.25,A:0.10")),
			MinNotional: getEnvAsFloat("MIN_NOTIONAL", 0.05),

			StopLossPct:          getEnvAsFloat("STOP_LOSS_PCT", 0.10),
			TrailingTriggerPct:   getEnvAsFloat("TRAILING_TRIGGER_PCT", 0.30),
			TrailingThrowbackPct: getEnvAsFloat("TRAILING_THROWBACK_PCT", 0.20),

			ProbeNotional:     getEnvAsFloat("PROBE_NOTIONAL", 0.01),
			ProbeCooldown:     getEnvAsDuration("PROBE_COOLDOWN", 24*time.Hour),
			ExecFailThreshold: getEnvAsInt("EXEC_FAIL_THRESHOLD", 3),
			ExecFailCooldown:  getEnvAsDuration("EXEC_FAIL_COOLDOWN", 6*time.Hour),
			AllowedVenues:     splitList(getEnv("ALLOWED_VENUES", "Raydium,Orca,Meteora,Phoenix")),
			RouteCheck:        getEnv("ROUTE_CHECK", RouteCheckStrict),
			Whitelist:         splitList(getEnv("WHITELIST", "")),
		},
		Scanner: ScannerConfig{
			Sources:       splitList(getEnv("SOURCES", "dexscreener,gecko")),
			BirdeyeAPIKey: getEnv("BIRDEYE_API_KEY", ""),
			FetchTimeout:  getEnvAsDuration("SCANNER_TIMEOUT", 10*time.Second),
			MaxCandidates: getEnvAsInt("SCANNER_MAX_CANDIDATES", 100),
			RateLimit:     getEnvAsFloat("SCANNER_RATE_LIMIT", 5),
		},
		Executor: ExecutorConfig{
			Mode:            strings.ToUpper(getEnv("MODE", ModeSimu)),
			RPCEndpoint:     getEnv("RPC_ENDPOINT", "https://api.mainnet-beta.solana.com"),
			PrivateKey:      getEnv("PRIVATE_KEY", ""),
			SlippageBps:     getEnvAsInt("SLIPPAGE_BPS", 300),
			QuoteTimeout:    getEnvAsDuration("QUOTE_TIMEOUT", 10*time.Second),
			SimStartBalance: getEnvAsFloat("SIM_START_BALANCE", 10),
		},
		Storage: StorageConfig{
			Dir: getEnv("STATE_DIR", "./state"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validateRanges(); err != nil {
		return nil, err
	}
	if err := cfg.validateSecurity(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateRanges проверяет числовые диапазоны параметров
func (c *Config) validateRanges() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Bot.MaxOpenPositions < 1 {
		return fmt.Errorf("MAX_OPEN_POSITIONS must be positive, got %d", c.Bot.MaxOpenPositions)
	}

	if c.Bot.TickInterval <= 0 {
		return fmt.Errorf("TICK_INTERVAL must be positive, got %v", c.Bot.TickInterval)
	}

	// Доли должны лежать в (0, 1)
	for name, v := range map[string]float64{
		"STOP_LOSS_PCT":          c.Strategy.StopLossPct,
		"TRAILING_TRIGGER_PCT":   c.Strategy.TrailingTriggerPct,
		"TRAILING_THROWBACK_PCT": c.Strategy.TrailingThrowbackPct,
	} {
		if v <= 0 || v >= 1 {
			return fmt.Errorf("%s must be a fraction in (0, 1), got %v", name, v)
		}
	}

	for tier, pct := range c.Strategy.TierPct {
		if pct <= 0 || pct > 1 {
			return fmt.Errorf("TIER_PCT for %s must be in (0, 1], got %v", tier, pct)
		}
	}

	if c.Strategy.ProbeNotional <= 0 {
		return fmt.Errorf("PROBE_NOTIONAL must be positive, got %v", c.Strategy.ProbeNotional)
	}

	if c.Strategy.ExecFailThreshold < 1 {
		return fmt.Errorf("EXEC_FAIL_THRESHOLD must be at least 1, got %d", c.Strategy.ExecFailThreshold)
	}

	if c.Strategy.RouteCheck != RouteCheckStrict && c.Strategy.RouteCheck != RouteCheckPermissive {
		return fmt.Errorf("ROUTE_CHECK must be %q or %q, got %q",
			RouteCheckStrict, RouteCheckPermissive, c.Strategy.RouteCheck)
	}

	if c.Strategy.Ranking != RankingMomentum && c.Strategy.Ranking != RankingComposite {
		return fmt.Errorf("RANKING must be %q or %q, got %q",
			RankingMomentum, RankingComposite, c.Strategy.Ranking)
	}

	if len(c.Strategy.AllowedVenues) == 0 {
		return fmt.Errorf("ALLOWED_VENUES cannot be empty")
	}

	if c.Executor.Mode != ModeSimu && c.Executor.Mode != ModeReal {
		return fmt.Errorf("MODE must be %q or %q, got %q", ModeSimu, ModeReal, c.Executor.Mode)
	}

	if c.Executor.SlippageBps < 0 || c.Executor.SlippageBps > 10000 {
		return fmt.Errorf("SLIPPAGE_BPS must be between 0 and 10000, got %d", c.Executor.SlippageBps)
	}

	return nil
}

// validateSecurity проверяет параметры безопасности
func (c *Config) validateSecurity() error {
	// В REAL режиме обязателен приватный ключ
	if c.Executor.Mode == ModeReal && c.Executor.PrivateKey == "" {
		return fmt.Errorf("PRIVATE_KEY is required for REAL mode")
	}

	// Если задан ключ шифрования - строго 32 байта (AES-256)
	if c.Security.EncryptionKey != "" && len(c.Security.EncryptionKey) != 32 {
		return fmt.Errorf("ENCRYPTION_KEY must be exactly 32 bytes for AES-256")
	}

	return nil
}

// DSN возвращает строку подключения к базе данных
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// DSNWithoutPassword возвращает строку подключения без пароля (для логирования)
func (d DatabaseConfig) DSNWithoutPassword() string {
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Name, d.SSLMode)
}

// parseTierPct разбирает строку вида "A_PLUS:0.25,A:0.10" в map.
// Некорректные элементы пропускаются: отсутствие уровня в map означает,
// что торговля этим уровнем отключена.
func parseTierPct(s string) map[string]float64 {
	out := make(map[string]float64)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			continue
		}
		pct, err := strconv.ParseFloat(strings.TrimSpace(kv[1]), 64)
		if err != nil {
			continue
		}
		out[strings.TrimSpace(kv[0])] = pct
	}
	return out
}

// splitList разбирает список через запятую, отбрасывая пустые элементы
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Вспомогательные функции для чтения переменных окружения

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
