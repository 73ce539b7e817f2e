package units

import (
	"math"
	"testing"
)

func TestMMToPx(t *testing.T) {
	tests := []struct {
		name string
		mm   float64
		dpi  float64
		want int
	}{
		{"one inch at 300", 25.4, 300, 300},
		{"zero at 300", 0, 300, 0},
		{"zero at 72", 0, 72, 0},
		{"label width", 50, 300, 591},
		{"label height", 30, 300, 354},
		{"half pixel rounds up", 12.7, 1, 1},
		{"just under half rounds down", 12, 1, 0},
		{"one and a half rounds up", 38.1, 1, 2},
		{"one inch at 203", 25.4, 203, 203},
		{"huge saturates", 4294967296, 25.4, MaxPx},
		{"infinite saturates", math.Inf(1), 300, MaxPx},
		{"negative infinite saturates", math.Inf(-1), 300, -MaxPx},
		{"nan", math.NaN(), 300, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MMToPx(tt.mm, tt.dpi); got != tt.want {
				t.Errorf("MMToPx(%v, %v) = %d, want %d", tt.mm, tt.dpi, got, tt.want)
			}
		})
	}
}

func TestMMToPxZeroForAnyDPI(t *testing.T) {
	for _, dpi := range []float64{1, 72, 96, 203, 300, 600, 1200} {
		if got := MMToPx(0, dpi); got != 0 {
			t.Errorf("MMToPx(0, %v) = %d, want 0", dpi, got)
		}
	}
}

func TestPxToMM(t *testing.T) {
	if got := PxToMM(300, 300); math.Abs(got-25.4) > 1e-9 {
		t.Errorf("PxToMM(300, 300) = %v, want 25.4", got)
	}
	if got := PxToMM(10, 0); got != 0 {
		t.Errorf("PxToMM with zero dpi = %v, want 0", got)
	}
}
