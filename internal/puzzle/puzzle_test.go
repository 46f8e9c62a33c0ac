package puzzle

import (
	"math/rand"
	"testing"
)

// stuckSource always yields the lowest draw, so every puzzle comes out as
// [1,1,1,1], which cannot reach 24.
type stuckSource struct{}

func (stuckSource) Int63() int64 { return 0 }
func (stuckSource) Seed(int64)   {}

func toFloats(nums [4]int) []float64 {
	return []float64{float64(nums[0]), float64(nums[1]), float64(nums[2]), float64(nums[3])}
}

func TestSolvableKnownSets(t *testing.T) {
	cases := []struct {
		nums []float64
		want bool
	}{
		{[]float64{1, 5, 5, 5}, true},  // (5 - 1/5) * 5
		{[]float64{3, 3, 8, 8}, true},  // 8 / (3 - 8/3)
		{[]float64{4, 6, 1, 1}, true},  // 4 * 6 * 1 * 1
		{[]float64{1, 1, 1, 1}, false},
		{[]float64{1, 1, 1, 2}, false},
	}
	for _, c := range cases {
		if got := Solvable(c.nums); got != c.want {
			t.Errorf("Solvable(%v) = %v, want %v", c.nums, got, c.want)
		}
	}
}

func TestGeneratePuzzlesAreSolvable(t *testing.T) {
	g := NewWithRand(rand.New(rand.NewSource(1)))
	for i := 0; i < 100; i++ {
		p := g.Generate()
		for _, n := range p.Nums {
			if n < 1 || n > 13 {
				t.Fatalf("number out of range: %v", p.Nums)
			}
		}
		if p.Par < 6 || p.Par > 45 {
			t.Fatalf("par out of bounds: %d", p.Par)
		}
		if !Solvable(toFloats(p.Nums)) {
			t.Fatalf("generated unsolvable puzzle: %v", p.Nums)
		}
	}
}

func TestGenerateFallsBackOnUnsolvableDraws(t *testing.T) {
	g := NewWithRand(rand.New(stuckSource{}))
	p := g.Generate()
	if p != Fallback {
		t.Fatalf("expected fallback puzzle, got %+v", p)
	}
	if !Solvable(toFloats(p.Nums)) {
		t.Fatalf("fallback puzzle is not solvable: %v", p.Nums)
	}
}

func TestParForClampsAndGrows(t *testing.T) {
	if got := parFor(0); got != parFor(4) {
		t.Errorf("parFor floors exp at 4: got %d vs %d", got, parFor(4))
	}
	if got := parFor(1 << 30); got != 45 {
		t.Errorf("parFor(huge) = %d, want 45", got)
	}
	prev := 0
	for _, exp := range []int{4, 30, 100, 1000, 100000} {
		p := parFor(exp)
		if p < 6 || p > 45 {
			t.Fatalf("parFor(%d) = %d out of [6,45]", exp, p)
		}
		if p < prev {
			t.Fatalf("parFor not monotonic at exp=%d", exp)
		}
		prev = p
	}
}

func TestSampleDifficultyFloor(t *testing.T) {
	g := NewWithRand(rand.New(rand.NewSource(7)))
	// 4*6*1*1 is found almost immediately; the floor keeps its par sane.
	if exp := g.sampleDifficulty([]float64{4, 6, 1, 1}); exp < minSamples {
		t.Errorf("sampleDifficulty = %d, want >= %d", exp, minSamples)
	}
}
