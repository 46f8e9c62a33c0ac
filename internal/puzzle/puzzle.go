// Package puzzle generates 4-number sets solvable to 24 with the four
// basic operators and prices each set into a per-round time budget ("par").
package puzzle

import (
	"math"
	"math/rand"
	"time"
)

const (
	target  = 24
	epsilon = 1e-6

	// maxDraws bounds the retry loop; past it Generate falls back to a
	// known-solvable set instead of failing.
	maxDraws = 300

	// minSamples floors the difficulty sample so trivially-found
	// solutions still get a playable par.
	minSamples = 30
)

// Puzzle is one round: four numbers in [1,13] and the par budget in
// whole seconds. Immutable once generated.
type Puzzle struct {
	Nums [4]int `json:"nums"`
	Par  int    `json:"par"`
}

// Fallback is returned when maxDraws draws all come up unsolvable.
// (5 - 1/5) * 5 = 24, so it is always a fair round.
var Fallback = Puzzle{Nums: [4]int{1, 5, 5, 5}, Par: 12}

// Generator draws puzzles from its own rand source so tests can seed it.
type Generator struct {
	rng *rand.Rand
}

func New() *Generator {
	return NewWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

func NewWithRand(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Generate draws numbers until a solvable set appears, then estimates its
// difficulty. It never fails: after maxDraws unsolvable draws it returns
// Fallback.
func (g *Generator) Generate() Puzzle {
	for i := 0; i < maxDraws; i++ {
		nums := [4]int{g.draw(), g.draw(), g.draw(), g.draw()}
		fs := []float64{float64(nums[0]), float64(nums[1]), float64(nums[2]), float64(nums[3])}
		if !Solvable(fs) {
			continue
		}
		return Puzzle{Nums: nums, Par: parFor(g.sampleDifficulty(fs))}
	}
	return Fallback
}

func (g *Generator) draw() int { return g.rng.Intn(13) + 1 }

// Solvable reports whether nums can reach 24. The search is exhaustive
// over every pairing and operand order, so a false result is ground truth.
// It is exported as the correctness oracle for generated puzzles.
func Solvable(nums []float64) bool {
	if len(nums) == 1 {
		return math.Abs(nums[0]-target) < epsilon
	}
	for i := 0; i < len(nums); i++ {
		for j := i + 1; j < len(nums); j++ {
			rest := without(nums, i, j)
			for _, v := range combine(nums[i], nums[j]) {
				if Solvable(append(rest, v)) {
					return true
				}
			}
		}
	}
	return false
}

// sampleDifficulty runs a second, randomized and non-exhaustive search
// over a set already known solvable, counting expansions until any
// solution turns up. More wandering before success reads as a puzzle
// whose solution is harder to spot; this is a perception heuristic, not
// a complexity bound, and it must stay separate from Solvable.
func (g *Generator) sampleDifficulty(nums []float64) int {
	count := 0
	var dfs func(list []float64) bool
	dfs = func(list []float64) bool {
		count++
		if len(list) == 1 {
			return math.Abs(list[0]-target) < epsilon
		}
		i := g.rng.Intn(len(list))
		j := i
		for j == i {
			j = g.rng.Intn(len(list))
		}
		rest := without(list, i, j)
		opts := combine(list[i], list[j])
		g.rng.Shuffle(len(opts), func(a, b int) { opts[a], opts[b] = opts[b], opts[a] })
		for _, v := range opts {
			if dfs(append(rest, v)) {
				return true
			}
		}
		return false
	}
	dfs(nums)
	if count < minSamples {
		count = minSamples
	}
	return count
}

// combine yields every value reachable from one operator application.
// Subtraction and division go both ways; division by a near-zero value
// is skipped.
func combine(a, b float64) []float64 {
	out := []float64{a + b, a - b, b - a, a * b}
	if math.Abs(b) > epsilon {
		out = append(out, a/b)
	}
	if math.Abs(a) > epsilon {
		out = append(out, b/a)
	}
	return out
}

func without(nums []float64, i, j int) []float64 {
	out := make([]float64, 0, len(nums)-2)
	for k, v := range nums {
		if k != i && k != j {
			out = append(out, v)
		}
	}
	return out
}

// parFor maps a difficulty sample to seconds. Logarithmic growth keeps
// budgets in a narrow, game-balanced band regardless of search variance.
func parFor(exp int) int {
	if exp < 4 {
		exp = 4
	}
	par := int(math.Round(4 + 3*math.Log2(float64(exp))))
	if par < 6 {
		par = 6
	}
	if par > 45 {
		par = 45
	}
	return par
}
