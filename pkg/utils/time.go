package utils

// time.go - работа с временными периодами
//
// Используется для границ "сегодняшней" статистики и
// форматирования аптайма.

import (
	"fmt"
	"time"
)

// GetDayStart возвращает начало текущих суток (UTC)
func GetDayStart() time.Time {
	return GetDayStartFrom(time.Now())
}

// GetDayStartFrom возвращает начало суток для указанного момента (UTC)
func GetDayStartFrom(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// GetWeekStart возвращает начало текущей недели (понедельник, UTC)
func GetWeekStart() time.Time {
	return GetWeekStartFrom(time.Now())
}

// GetWeekStartFrom возвращает начало недели для указанного момента (UTC)
func GetWeekStartFrom(t time.Time) time.Time {
	day := GetDayStartFrom(t)
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7 // воскресенье считаем седьмым днём
	}
	return day.AddDate(0, 0, -(weekday - 1))
}

// GetMonthStart возвращает начало текущего месяца (UTC)
func GetMonthStart() time.Time {
	return GetMonthStartFrom(time.Now())
}

// GetMonthStartFrom возвращает начало месяца для указанного момента (UTC)
func GetMonthStartFrom(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// TimeRange - интервал времени [From, To)
type TimeRange struct {
	From time.Time
	To   time.Time
}

// Contains проверяет попадание момента в интервал
func (tr TimeRange) Contains(t time.Time) bool {
	return !t.Before(tr.From) && t.Before(tr.To)
}

// Duration возвращает длину интервала
func (tr TimeRange) Duration() time.Duration {
	return tr.To.Sub(tr.From)
}

// GetLastNHours возвращает интервал последних N часов
func GetLastNHours(n int) TimeRange {
	now := time.Now().UTC()
	return TimeRange{From: now.Add(-time.Duration(n) * time.Hour), To: now}
}

// FormatDuration форматирует длительность в человекочитаемый вид:
// "45s", "12m30s", "3h05m", "2d07h"
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	default:
		days := int(d.Hours()) / 24
		return fmt.Sprintf("%dd%02dh", days, int(d.Hours())%24)
	}
}

// UnixMillis возвращает текущее время в unix миллисекундах
func UnixMillis() int64 {
	return time.Now().UnixMilli()
}

// FromUnixMillis переводит unix миллисекунды во время
func FromUnixMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}
