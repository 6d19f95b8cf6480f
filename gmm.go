package main

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

const (
	maxMixtureComponents = 20
	mixtureRegCovar      = 1e-6
	mixtureTol           = 1e-3
	mixtureMaxIter       = 100
	kmeansMaxIter        = 100
)

var (
	ErrNoSamples          = errors.New("no samples")
	ErrSingularCovariance = errors.New("covariance is not positive definite")
	ErrTooManyComponents  = errors.New("more components than samples")
)

// GaussianMixture is a fitted mixture in the output format: component weights, mean
// vectors and full covariance matrices.
type GaussianMixture struct {
	Weights     []float64     `json:"weights"`
	Means       [][]float64   `json:"means"`
	Covariances [][][]float64 `json:"covariances"`
}

type mixtureModel struct {
	weights []float64
	means   [][]float64
	covs    []*mat.SymDense
	logLik  float64 // total log-likelihood of the training data
	n, d    int
}

// bic is -2·logL + p·ln(n) with p free parameters of a full-covariance mixture.
func (m *mixtureModel) bic() float64 {
	k := float64(len(m.weights))
	d := float64(m.d)
	params := k*d + k*d*(d+1)/2 + k - 1
	return -2*m.logLik + params*math.Log(float64(m.n))
}

func (m *mixtureModel) export() GaussianMixture {
	g := GaussianMixture{
		Weights:     append([]float64(nil), m.weights...),
		Means:       make([][]float64, len(m.means)),
		Covariances: make([][][]float64, len(m.covs)),
	}
	for c := range m.means {
		g.Means[c] = append([]float64(nil), m.means[c]...)
		cov := make([][]float64, m.d)
		for i := 0; i < m.d; i++ {
			cov[i] = make([]float64, m.d)
			for j := 0; j < m.d; j++ {
				cov[i][j] = m.covs[c].At(i, j)
			}
		}
		g.Covariances[c] = cov
	}
	return g
}

// selectMixture fits mixtures with 1, 2, ... components and stops as soon as the BIC
// gets worse than the previous count, returning the previous model.
func selectMixture(x [][]float64, maxComponents int, rng *rand.Rand) (*mixtureModel, error) {
	if len(x) == 0 {
		return nil, ErrNoSamples
	}

	var best *mixtureModel
	bestBIC := math.Inf(1)
	for k := 1; k <= maxComponents && k <= len(x); k++ {
		m, err := fitMixture(x, k, rng)
		if err != nil {
			if best == nil {
				return nil, err
			}
			break
		}
		b := m.bic()
		if best != nil && b > bestBIC {
			break
		}
		best, bestBIC = m, b
	}
	return best, nil
}

// fitMixture runs EM for a k-component full-covariance mixture initialised from
// k-means clusters.
func fitMixture(x [][]float64, k int, rng *rand.Rand) (*mixtureModel, error) {
	n := len(x)
	if n == 0 {
		return nil, ErrNoSamples
	}
	if k > n {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyComponents, k, n)
	}
	d := len(x[0])

	resp := make([][]float64, n)
	for i := range resp {
		resp[i] = make([]float64, k)
	}
	for i, label := range kmeans(x, k, rng) {
		resp[i][label] = 1
	}

	m := &mixtureModel{n: n, d: d}
	m.maximize(x, resp)

	prev := math.Inf(-1)
	for iter := 0; iter < mixtureMaxIter; iter++ {
		ll, err := m.expect(x, resp)
		if err != nil {
			return nil, err
		}
		m.logLik = ll
		m.maximize(x, resp)

		lower := ll / float64(n)
		if math.Abs(lower-prev) < mixtureTol {
			break
		}
		prev = lower
	}

	// Score the final parameters.
	ll, err := m.expect(x, resp)
	if err != nil {
		return nil, err
	}
	m.logLik = ll
	return m, nil
}

// expect fills resp with component responsibilities and returns the total
// log-likelihood.
func (m *mixtureModel) expect(x [][]float64, resp [][]float64) (float64, error) {
	k := len(m.weights)
	normals := make([]*distmv.Normal, k)
	for c := 0; c < k; c++ {
		nrm, ok := distmv.NewNormal(m.means[c], m.covs[c], nil)
		if !ok {
			return 0, fmt.Errorf("component %d: %w", c, ErrSingularCovariance)
		}
		normals[c] = nrm
	}

	var total float64
	logp := make([]float64, k)
	for i, xi := range x {
		for c := 0; c < k; c++ {
			logp[c] = math.Log(m.weights[c]) + normals[c].LogProb(xi)
		}
		lse := floats.LogSumExp(logp)
		for c := 0; c < k; c++ {
			resp[i][c] = math.Exp(logp[c] - lse)
		}
		total += lse
	}
	return total, nil
}

// maximize re-estimates weights, means and covariances from responsibilities.
func (m *mixtureModel) maximize(x [][]float64, resp [][]float64) {
	n, d := len(x), len(x[0])
	k := len(resp[0])
	// Keeps empty components from dividing by zero.
	eps := 10 * (math.Nextafter(1, 2) - 1)

	m.weights = make([]float64, k)
	m.means = make([][]float64, k)
	m.covs = make([]*mat.SymDense, k)

	diff := mat.NewVecDense(d, nil)
	for c := 0; c < k; c++ {
		nk := eps
		mean := make([]float64, d)
		for i := 0; i < n; i++ {
			nk += resp[i][c]
			floats.AddScaled(mean, resp[i][c], x[i])
		}
		floats.Scale(1/nk, mean)

		cov := mat.NewSymDense(d, nil)
		for i := 0; i < n; i++ {
			if resp[i][c] == 0 {
				continue
			}
			for j := 0; j < d; j++ {
				diff.SetVec(j, x[i][j]-mean[j])
			}
			cov.SymRankOne(cov, resp[i][c]/nk, diff)
		}
		for j := 0; j < d; j++ {
			cov.SetSym(j, j, cov.At(j, j)+mixtureRegCovar)
		}

		m.weights[c] = nk / float64(n)
		m.means[c] = mean
		m.covs[c] = cov
	}
	floats.Scale(1/floats.Sum(m.weights), m.weights)
}

// kmeans clusters x into k groups with k-means++ seeding and Lloyd iterations and
// returns each row's cluster label.
func kmeans(x [][]float64, k int, rng *rand.Rand) []int {
	n := len(x)
	centers := make([][]float64, 0, k)
	centers = append(centers, append([]float64(nil), x[rng.IntN(n)]...))

	dist := make([]float64, n)
	for len(centers) < k {
		for i, xi := range x {
			dist[i] = nearestDistance(xi, centers)
		}
		total := floats.Sum(dist)
		next := rng.IntN(n)
		if total > 0 {
			target := rng.Float64() * total
			for i, w := range dist {
				target -= w
				if target <= 0 {
					next = i
					break
				}
			}
		}
		centers = append(centers, append([]float64(nil), x[next]...))
	}

	labels := make([]int, n)
	for iter := 0; iter < kmeansMaxIter; iter++ {
		changed := iter == 0
		for i, xi := range x {
			if best := nearestCenter(xi, centers); best != labels[i] {
				labels[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, len(x[0]))
		}
		for i, xi := range x {
			floats.Add(sums[labels[i]], xi)
			counts[labels[i]]++
		}
		for c := range centers {
			if counts[c] == 0 {
				continue
			}
			floats.Scale(1/float64(counts[c]), sums[c])
			centers[c] = sums[c]
		}
	}
	return labels
}

func nearestDistance(x []float64, centers [][]float64) float64 {
	best := math.Inf(1)
	for _, c := range centers {
		if d := sqDistance(x, c); d < best {
			best = d
		}
	}
	return best
}

func nearestCenter(x []float64, centers [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, center := range centers {
		if d := sqDistance(x, center); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func sqDistance(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}
