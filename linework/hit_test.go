package linework

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestHitLine(t *testing.T) {
	paths := map[int]PathSpec{
		1: BuildPath(orb.LineString{{10, 0}, {10, 100}}),
		2: BuildPath(orb.LineString{{50, 0}, {50, 100}}),
		3: {},
	}
	tests := []struct {
		name  string
		p     orb.Point
		label int
		ok    bool
	}{
		{"on line 1", orb.Point{10, 50}, 1, true},
		{"inside wide hit area", orb.Point{18, 50}, 1, true},
		{"closer to line 2", orb.Point{45, 20}, 2, true},
		{"between lines", orb.Point{30, 50}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, ok := HitLine(paths, tt.p, HitTolerance)
			if ok != tt.ok || label != tt.label {
				t.Errorf("HitLine(%v) = %d, %v; want %d, %v", tt.p, label, ok, tt.label, tt.ok)
			}
		})
	}
}

func TestHitHandle(t *testing.T) {
	pts := orb.LineString{{0, 0}, {20, 0}, {24, 0}}
	if i, ok := HitHandle(pts, orb.Point{23, 1}, HandleRadius); !ok || i != 2 {
		t.Errorf("HitHandle = %d, %v; want 2, true", i, ok)
	}
	if _, ok := HitHandle(pts, orb.Point{100, 100}, HandleRadius); ok {
		t.Error("far point should miss")
	}
}
