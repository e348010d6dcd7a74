package dotcluster

import (
	"math/rand"
	"testing"
)

func generateBenchPoints(n int, span float64) []Point {
	rng := rand.New(rand.NewSource(42))
	points := make([]Point, n)
	for i := range points {
		points[i] = Point{
			X:        rng.Float64() * span,
			Y:        rng.Float64() * span,
			Payloads: []uint64{uint64(i)},
		}
	}
	return points
}

// --- Level 1 ---

func benchBuildL1(b *testing.B, n int) {
	b.Helper()
	points := generateBenchPoints(n, 5000)
	cz, err := New(DefaultConfig())
	if err != nil {
		b.Fatal(err)
	}
	cz.LoadDots(points)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := cz.BuildLevel(Level1, false); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBuildL1_100(b *testing.B)  { benchBuildL1(b, 100) }
func BenchmarkBuildL1_500(b *testing.B)  { benchBuildL1(b, 500) }
func BenchmarkBuildL1_1000(b *testing.B) { benchBuildL1(b, 1000) }

// --- Full hierarchy ---

func benchBuildAll(b *testing.B, n int) {
	b.Helper()
	points := generateBenchPoints(n, 50000)
	cz, err := New(DefaultConfig())
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cz.LoadDots(points)
		for l := Level1; l <= Level4; l++ {
			if _, err := cz.BuildLevel(l, l == Level4); err != nil {
				b.Fatal(err)
			}
		}
	}
}

func BenchmarkBuildAll_100(b *testing.B)  { benchBuildAll(b, 100) }
func BenchmarkBuildAll_500(b *testing.B)  { benchBuildAll(b, 500) }
func BenchmarkBuildAll_1000(b *testing.B) { benchBuildAll(b, 1000) }

// --- Queries ---

func BenchmarkPayloads_L4(b *testing.B) {
	cz, err := New(DefaultConfig())
	if err != nil {
		b.Fatal(err)
	}
	cz.LoadDots(generateBenchPoints(1000, 50000))
	for l := Level1; l <= Level4; l++ {
		if _, err := cz.BuildLevel(l, true); err != nil {
			b.Fatal(err)
		}
	}
	top := cz.Elements(Level4)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e := top[i%len(top)]
		if _, err := cz.Payloads(Level4, e.X, e.Y); err != nil {
			b.Fatal(err)
		}
	}
}
