package dotcluster

import (
	"slices"
	"testing"
)

func TestCircleContains(t *testing.T) {
	withFudge := DefaultConfig()
	noFudge := DefaultConfig()
	noFudge.FudgeEnabled = false

	tests := []struct {
		name   string
		cfg    Config
		px, py float64
		want   bool
	}{
		{"centre", noFudge, 0, 0, true},
		{"inside", noFudge, 30, 40, true},
		{"on boundary", noFudge, 0, 50, true},
		{"just outside", noFudge, 0, 50.001, false},
		{"outside but within fudge", withFudge, 0, 52.5, true},
		{"on fudged boundary", withFudge, 0, 53, true},
		{"outside fudge", withFudge, 0, 53.5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.CircleContains(0, 0, 50, tt.px, tt.py); got != tt.want {
				t.Errorf("CircleContains(0,0,50,%v,%v) = %v, want %v", tt.px, tt.py, got, tt.want)
			}
		})
	}
}

func TestCoordKey_Order(t *testing.T) {
	keys := []CoordKey{{2, 1}, {1, 5}, {1, -3}, {0, 9}, {2, 0}}
	slices.SortFunc(keys, CompareKeys)
	want := []CoordKey{{0, 9}, {1, -3}, {1, 5}, {2, 0}, {2, 1}}
	if !slices.Equal(keys, want) {
		t.Fatalf("sorted = %v, want %v", keys, want)
	}
	for i := 1; i < len(keys); i++ {
		if !keys[i-1].Less(keys[i]) {
			t.Errorf("%v.Less(%v) = false", keys[i-1], keys[i])
		}
		if keys[i].Less(keys[i-1]) {
			t.Errorf("%v.Less(%v) = true", keys[i], keys[i-1])
		}
	}
	if (CoordKey{1, 1}).Less(CoordKey{1, 1}) {
		t.Error("a key must not be less than itself")
	}
}

func TestCentroid(t *testing.T) {
	if got := centroid(nil); got != (CoordKey{}) {
		t.Errorf("centroid(nil) = %v, want origin", got)
	}
	got := centroid([]CoordKey{{0, 0}, {4, 0}, {2, 6}})
	if got != (CoordKey{2, 2}) {
		t.Errorf("centroid = %v, want (2, 2)", got)
	}
}
