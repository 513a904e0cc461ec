package utils

// math.go - численные хелперы торговой логики
//
// Доли и проценты: внутри бот считает в долях (0.10 = 10%),
// наружу (API, журнал сделок) отдаёт проценты.

import "math"

// PercentChange возвращает изменение цены в процентах от базы
func PercentChange(base, current float64) float64 {
	if base == 0 {
		return 0
	}
	return (current - base) / base * 100
}

// GainFraction возвращает рост цены как долю от базы (0.30 = +30%)
func GainFraction(base, current float64) float64 {
	if base == 0 {
		return 0
	}
	return current/base - 1
}

// DropFraction возвращает падение цены как долю от базы (0.20 = -20%).
// Для current >= base возвращает 0.
func DropFraction(base, current float64) float64 {
	if base == 0 || current >= base {
		return 0
	}
	return 1 - current/base
}

// RoundToStep округляет значение вниз до кратного шага.
// Шаг <= 0 возвращает значение без изменений.
func RoundToStep(value, step float64) float64 {
	if step <= 0 {
		return value
	}
	return math.Floor(value/step) * step
}

// Abs возвращает модуль числа
func Abs(x float64) float64 {
	return math.Abs(x)
}

// Min возвращает меньшее из двух чисел
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Max возвращает большее из двух чисел
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Clamp ограничивает значение диапазоном [min, max]
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
