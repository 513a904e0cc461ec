package utils

// logger.go - настройка структурированного логирования
//
// Обёртка над zap: уровни, формат (json/text), вывод в файл,
// глобальный логгер и доменные конструкторы полей.

import (
	"math"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogConfig - конфигурация логирования
type LogConfig struct {
	Level       string // debug, info, warn, error, fatal
	Format      string // json или text
	Output      string // путь к файлу; пусто = stderr
	Development bool   // режим разработки (человекочитаемые стектрейсы)
}

// Logger - обёртка над zap.Logger с sugar-вариантом
type Logger struct {
	*zap.Logger
	sugar *zap.SugaredLogger
}

// InitLogger создаёт логгер по конфигурации.
// Никогда не возвращает nil: при ошибках fallback на stderr.
func InitLogger(config LogConfig) *Logger {
	level := parseLevel(config.Level)

	var encoderConfig zapcore.EncoderConfig
	if config.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	var encoder zapcore.Encoder
	if strings.ToLower(config.Format) == "text" {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	sink := zapcore.AddSync(os.Stderr)
	if config.Output != "" {
		file, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			sink = zapcore.AddSync(file)
		}
	}

	core := zapcore.NewCore(encoder, sink, level)

	var opts []zap.Option
	if config.Development {
		opts = append(opts, zap.Development())
	}
	opts = append(opts, zap.AddCaller())

	zapLogger := zap.New(core, opts...)
	return &Logger{
		Logger: zapLogger,
		sugar:  zapLogger.Sugar(),
	}
}

// parseLevel переводит строку в уровень zap (по умолчанию info)
func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// With возвращает новый логгер с дополнительными полями
func (l *Logger) With(fields ...zap.Field) *Logger {
	newLogger := l.Logger.With(fields...)
	return &Logger{
		Logger: newLogger,
		sugar:  newLogger.Sugar(),
	}
}

// WithComponent добавляет имя компонента
func (l *Logger) WithComponent(component string) *Logger {
	return l.With(Component(component))
}

// WithSource добавляет источник рыночных данных
func (l *Logger) WithSource(source string) *Logger {
	return l.With(Source(source))
}

// WithSymbol добавляет тикер токена
func (l *Logger) WithSymbol(symbol string) *Logger {
	return l.With(Symbol(symbol))
}

// WithAddress добавляет mint адрес токена
func (l *Logger) WithAddress(address string) *Logger {
	return l.With(Address(address))
}

// Sugar возвращает sugar-вариант логгера
func (l *Logger) Sugar() *zap.SugaredLogger {
	return l.sugar
}

// ============================================================
// Глобальный логгер
// ============================================================

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// InitGlobalLogger создаёт глобальный логгер по конфигурации
func InitGlobalLogger(config LogConfig) *Logger {
	logger := InitLogger(config)
	SetGlobalLogger(logger)
	return logger
}

// SetGlobalLogger устанавливает глобальный логгер
func SetGlobalLogger(logger *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = logger
}

// GetGlobalLogger возвращает глобальный логгер, создавая дефолтный при необходимости
func GetGlobalLogger() *Logger {
	globalMu.RLock()
	if globalLogger != nil {
		defer globalMu.RUnlock()
		return globalLogger
	}
	globalMu.RUnlock()

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = InitLogger(LogConfig{})
	}
	return globalLogger
}

// L - сокращение для GetGlobalLogger
func L() *Logger {
	return GetGlobalLogger()
}

// Debug логирует через глобальный логгер
func Debug(msg string, fields ...zap.Field) { GetGlobalLogger().Debug(msg, fields...) }

// Info логирует через глобальный логгер
func Info(msg string, fields ...zap.Field) { GetGlobalLogger().Info(msg, fields...) }

// Warn логирует через глобальный логгер
func Warn(msg string, fields ...zap.Field) { GetGlobalLogger().Warn(msg, fields...) }

// Error логирует через глобальный логгер
func Error(msg string, fields ...zap.Field) { GetGlobalLogger().Error(msg, fields...) }

// Debugf - форматированный debug через глобальный логгер
func Debugf(template string, args ...interface{}) { GetGlobalLogger().sugar.Debugf(template, args...) }

// Infof - форматированный info через глобальный логгер
func Infof(template string, args ...interface{}) { GetGlobalLogger().sugar.Infof(template, args...) }

// Warnf - форматированный warn через глобальный логгер
func Warnf(template string, args ...interface{}) { GetGlobalLogger().sugar.Warnf(template, args...) }

// Errorf - форматированный error через глобальный логгер
func Errorf(template string, args ...interface{}) { GetGlobalLogger().sugar.Errorf(template, args...) }

// ============================================================
// Доменные конструкторы полей
// ============================================================

// Source - источник рыночных данных (dexscreener, gecko, birdeye)
func Source(source string) zap.Field { return zap.String("source", source) }

// Symbol - тикер токена
func Symbol(symbol string) zap.Field { return zap.String("symbol", symbol) }

// Address - mint адрес токена
func Address(address string) zap.Field { return zap.String("address", address) }

// TierField - уровень кандидата (A_PLUS, A, REJECTED)
func TierField(tier string) zap.Field { return zap.String("tier", tier) }

// Signature - подпись транзакции
func Signature(signature string) zap.Field { return zap.String("signature", signature) }

// Price - цена
func Price(price float64) zap.Field { return zap.Float64("price", price) }

// Volume - объём
func Volume(volume float64) zap.Field { return zap.Float64("volume", volume) }

// PNL - результат сделки
func PNL(pnl float64) zap.Field { return zap.Float64("pnl", pnl) }

// Side - направление сделки (buy, sell)
func Side(side string) zap.Field { return zap.String("side", side) }

// State - состояние позиции
func State(state string) zap.Field { return zap.String("state", state) }

// Latency - задержка в миллисекундах
func Latency(ms float64) zap.Field { return zap.Float64("latency_ms", ms) }

// RequestID - идентификатор HTTP запроса
func RequestID(id string) zap.Field { return zap.String("request_id", id) }

// Component - имя компонента
func Component(component string) zap.Field { return zap.String("component", component) }

// ============================================================
// Переэкспорт стандартных конструкторов zap
// ============================================================

// String - строковое поле
func String(key, value string) zap.Field { return zap.String(key, value) }

// Int - целочисленное поле
func Int(key string, value int) zap.Field { return zap.Int(key, value) }

// Int64 - поле int64
func Int64(key string, value int64) zap.Field { return zap.Int64(key, value) }

// Float64 - поле float64
func Float64(key string, value float64) zap.Field { return zap.Float64(key, value) }

// Bool - булево поле
func Bool(key string, value bool) zap.Field { return zap.Bool(key, value) }

// Err - поле ошибки
func Err(err error) zap.Field { return zap.Error(err) }

// Any - произвольное поле
func Any(key string, value interface{}) zap.Field { return zap.Any(key, value) }

// fieldsToInterface переводит zap поля в пары ключ-значение для sugar API
func fieldsToInterface(fields []zap.Field) []interface{} {
	result := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		var value interface{}
		switch f.Type {
		case zapcore.StringType:
			value = f.String
		case zapcore.Int64Type, zapcore.Int32Type:
			value = f.Integer
		case zapcore.Float64Type:
			value = math.Float64frombits(uint64(f.Integer))
		case zapcore.BoolType:
			value = f.Integer == 1
		default:
			value = f.Interface
		}
		result = append(result, f.Key, value)
	}
	return result
}
