package geo

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	// EDDB threshold 25L to a point ~1 degree north (~111km)
	p1 := Point{Lat: 52.362, Lon: 13.500}
	p2 := Point{Lat: 53.362, Lon: 13.500}

	d := Distance(p1, p2)
	if d < 110000 || d > 112500 {
		t.Errorf("Expected ~111km, got %.0fm", d)
	}

	if d := Distance(p1, p1); d != 0 {
		t.Errorf("Expected 0 for identical points, got %.2f", d)
	}
}

func TestBearing(t *testing.T) {
	p1 := Point{Lat: 52.0, Lon: 13.0}
	north := Point{Lat: 53.0, Lon: 13.0}
	east := Point{Lat: 52.0, Lon: 14.0}

	if b := Bearing(p1, north); math.Abs(b) > 0.5 && math.Abs(b-360) > 0.5 {
		t.Errorf("Expected ~0 deg for due north, got %.2f", b)
	}
	if b := Bearing(p1, east); math.Abs(b-90) > 1.0 {
		t.Errorf("Expected ~90 deg for due east, got %.2f", b)
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{190, -170},
		{-190, 170},
		{360, 0},
		{540, 180},
	}
	for _, tt := range tests {
		if got := NormalizeAngle(tt.in); got != tt.want {
			t.Errorf("NormalizeAngle(%.0f) = %.0f, want %.0f", tt.in, got, tt.want)
		}
	}
}

func TestHeadingAligned(t *testing.T) {
	tests := []struct {
		name    string
		heading float64
		ref     float64
		want    bool
	}{
		{"exact", 250, 250, true},
		{"within tolerance", 265, 250, true},
		{"outside tolerance", 275, 250, false},
		{"reciprocal", 70, 250, true},
		{"reciprocal within tolerance", 85, 250, true},
		{"perpendicular", 340, 250, false},
		{"wraparound", 5, 350, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HeadingAligned(tt.heading, tt.ref, 20); got != tt.want {
				t.Errorf("HeadingAligned(%.0f, %.0f, 20) = %v, want %v", tt.heading, tt.ref, got, tt.want)
			}
		})
	}
}
