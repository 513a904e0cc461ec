package utils

import (
	"math"
	"testing"
)

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name     string
		base     float64
		current  float64
		expected float64
	}{
		{"gain", 1.0, 1.28, 28.0},
		{"loss", 1.0, 0.85, -15.0},
		{"unchanged", 2.0, 2.0, 0},
		{"zero base", 0, 5.0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentChange(tt.base, tt.current)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("PercentChange(%v, %v) = %v, want %v", tt.base, tt.current, got, tt.expected)
			}
		})
	}
}

func TestGainFraction(t *testing.T) {
	tests := []struct {
		name     string
		base     float64
		current  float64
		expected float64
	}{
		{"thirty percent gain", 1.0, 1.30, 0.30},
		{"loss is negative", 1.0, 0.90, -0.10},
		{"zero base", 0, 1.0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GainFraction(tt.base, tt.current)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("GainFraction(%v, %v) = %v, want %v", tt.base, tt.current, got, tt.expected)
			}
		})
	}
}

func TestDropFraction(t *testing.T) {
	tests := []struct {
		name     string
		base     float64
		current  float64
		expected float64
	}{
		{"twenty percent drop", 1.60, 1.28, 0.20},
		{"above base", 1.0, 1.5, 0},
		{"equal", 1.0, 1.0, 0},
		{"zero base", 0, 1.0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DropFraction(tt.base, tt.current)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("DropFraction(%v, %v) = %v, want %v", tt.base, tt.current, got, tt.expected)
			}
		})
	}
}

func TestRoundToStep(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		step     float64
		expected float64
	}{
		{"rounds down", 10.7, 0.5, 10.5},
		{"exact multiple", 10.0, 0.5, 10.0},
		{"zero step", 10.7, 0, 10.7},
		{"negative step", 10.7, -1, 10.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundToStep(tt.value, tt.step)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("RoundToStep(%v, %v) = %v, want %v", tt.value, tt.step, got, tt.expected)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		min      float64
		max      float64
		expected float64
	}{
		{"within range", 5, 0, 10, 5},
		{"below min", -1, 0, 10, 0},
		{"above max", 15, 0, 10, 10},
		{"at boundary", 10, 0, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.value, tt.min, tt.max); got != tt.expected {
				t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.value, tt.min, tt.max, got, tt.expected)
			}
		})
	}
}

func TestMinMaxAbs(t *testing.T) {
	if Min(1, 2) != 1 || Min(2, 1) != 1 {
		t.Error("Min is broken")
	}
	if Max(1, 2) != 2 || Max(2, 1) != 2 {
		t.Error("Max is broken")
	}
	if Abs(-1.5) != 1.5 || Abs(1.5) != 1.5 {
		t.Error("Abs is broken")
	}
}
