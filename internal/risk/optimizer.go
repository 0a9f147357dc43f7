package risk

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

// ErrOptimizationFailed signals that the weight solver could not produce a
// feasible solution; callers keep the previous weights.
var ErrOptimizationFailed = errors.New("optimization failed")

// GA parameters tuned for small books (a handful of symbols). The search
// space is a simplex of at most ~10 dimensions, so a modest population
// converges quickly.
const (
	gaPopulationSize = 40
	gaGenerations    = 60
	gaMutationRate   = 0.25
	gaCrossoverRate  = 0.85
	gaEliteSize      = 4
	gaTournamentSize = 3
	gaSeed           = 1
)

type gaIndividual struct {
	weights []float64
	fitness float64 // portfolio variance, lower is better
}

// MinVariance finds long-only weights summing to one that minimize the
// portfolio variance wᵀΣw for the given volatilities and correlation
// matrix. The solver is seeded, so identical inputs yield identical
// weights.
func MinVariance(vols []float64, corr [][]float64) ([]float64, error) {
	n := len(vols)
	if n == 0 || len(corr) != n {
		return nil, ErrOptimizationFailed
	}
	if n == 1 {
		return []float64{1}, nil
	}

	rng := rand.New(rand.NewSource(gaSeed))

	population := make([]*gaIndividual, gaPopulationSize)
	for i := range population {
		population[i] = &gaIndividual{weights: randomSimplex(n, rng)}
	}
	// Seed equal weights so the baseline is always in the pool.
	equal := make([]float64, n)
	for i := range equal {
		equal[i] = 1 / float64(n)
	}
	population[0].weights = equal

	var best *gaIndividual
	for gen := 0; gen < gaGenerations; gen++ {
		for _, ind := range population {
			ind.fitness = variance(ind.weights, vols, corr)
		}
		sort.Slice(population, func(i, j int) bool {
			return population[i].fitness < population[j].fitness
		})
		if best == nil || population[0].fitness < best.fitness {
			best = &gaIndividual{
				weights: append([]float64(nil), population[0].weights...),
				fitness: population[0].fitness,
			}
		}
		if gen < gaGenerations-1 {
			population = nextGeneration(population, rng)
		}
	}

	if best == nil || !feasible(best.weights) {
		return nil, ErrOptimizationFailed
	}
	return best.weights, nil
}

func nextGeneration(population []*gaIndividual, rng *rand.Rand) []*gaIndividual {
	next := make([]*gaIndividual, len(population))
	for i := 0; i < gaEliteSize; i++ {
		next[i] = &gaIndividual{
			weights: append([]float64(nil), population[i].weights...),
			fitness: population[i].fitness,
		}
	}
	for i := gaEliteSize; i < len(population); i++ {
		p1 := tournament(population, rng)
		p2 := tournament(population, rng)
		child := crossover(p1, p2, rng)
		mutate(child, rng)
		next[i] = child
	}
	return next
}

func tournament(population []*gaIndividual, rng *rand.Rand) *gaIndividual {
	best := population[rng.Intn(len(population))]
	for i := 1; i < gaTournamentSize; i++ {
		c := population[rng.Intn(len(population))]
		if c.fitness < best.fitness {
			best = c
		}
	}
	return best
}

// crossover blends two parents and re-projects the child onto the simplex.
func crossover(p1, p2 *gaIndividual, rng *rand.Rand) *gaIndividual {
	child := &gaIndividual{weights: append([]float64(nil), p1.weights...)}
	if rng.Float64() < gaCrossoverRate {
		alpha := rng.Float64()
		for i := range child.weights {
			child.weights[i] = alpha*p1.weights[i] + (1-alpha)*p2.weights[i]
		}
	}
	normalizeSimplex(child.weights)
	return child
}

func mutate(ind *gaIndividual, rng *rand.Rand) {
	if rng.Float64() >= gaMutationRate {
		return
	}
	i := rng.Intn(len(ind.weights))
	ind.weights[i] += (rng.Float64() - 0.5) * 0.2
	if ind.weights[i] < 0 {
		ind.weights[i] = 0
	}
	normalizeSimplex(ind.weights)
}

// randomSimplex draws a uniform random point on the unit simplex.
func randomSimplex(n int, rng *rand.Rand) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = -math.Log(1 - rng.Float64())
	}
	normalizeSimplex(w)
	return w
}

func normalizeSimplex(w []float64) {
	total := 0.0
	for i := range w {
		if w[i] < 0 {
			w[i] = 0
		}
		total += w[i]
	}
	if total == 0 {
		for i := range w {
			w[i] = 1 / float64(len(w))
		}
		return
	}
	for i := range w {
		w[i] /= total
	}
}

func feasible(w []float64) bool {
	sum := 0.0
	for _, x := range w {
		if math.IsNaN(x) || x < 0 || x > 1 {
			return false
		}
		sum += x
	}
	return math.Abs(sum-1) < 1e-6
}

func variance(weights, vols []float64, corr [][]float64) float64 {
	s := PortfolioStdDev(weights, vols, corr)
	return s * s
}

// OptimizedLots translates minimum-variance weights for the current
// snapshot back into lot sizes, preserving each position's direction and
// rounding to two decimals. Symbols excluded from the snapshot are left
// untouched.
func OptimizedLots(snap *Snapshot, weights []float64) map[string]float64 {
	out := make(map[string]float64)
	symbols := snap.Correlations.Symbols
	lotsFor := make(map[string]float64, len(snap.Positions))
	for _, p := range snap.Positions {
		lotsFor[p.Symbol] = p.Lots
	}
	for i, s := range symbols {
		nominal := snap.NominalValues[s]
		lots := lotsFor[s]
		if nominal == 0 || lots == 0 {
			continue
		}
		perLot := abs(nominal) / abs(lots)
		raw := weights[i] * snap.NominalValue / perLot
		if lots < 0 {
			raw = -raw
		}
		out[s] = math.Round(raw*100) / 100
	}
	return out
}
