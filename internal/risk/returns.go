package risk

import (
	"fmt"
	"math"

	"github.com/haruquant/swingrisk/internal/indicators"
)

// LogReturns computes r[t] = ln(close[t+1] / close[t]). The result is one
// element shorter than the input.
func LogReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		out[i-1] = math.Log(closes[i] / closes[i-1])
	}
	return out
}

// laggedTail returns the last period elements of rets excluding the final
// one, so rolling statistics never read the still-forming bar.
func laggedTail(rets []float64, period int) ([]float64, error) {
	if len(rets) < period+1 {
		return nil, fmt.Errorf("need %d returns for a lagged window of %d, have %d: %w",
			period+1, period, len(rets), indicators.ErrInsufficientData)
	}
	end := len(rets) - 1
	return rets[end-period : end], nil
}

// Volatility is the sample standard deviation of log-returns over the
// lag-shifted rolling window.
func Volatility(rets []float64, period int) (float64, error) {
	window, err := laggedTail(rets, period)
	if err != nil {
		return 0, err
	}
	return sampleStd(window), nil
}

// Correlation is the Pearson correlation of two aligned return series over
// the lag-shifted rolling window.
func Correlation(a, b []float64, period int) (float64, error) {
	wa, err := laggedTail(a, period)
	if err != nil {
		return 0, err
	}
	wb, err := laggedTail(b, period)
	if err != nil {
		return 0, err
	}
	return pearson(wa, wb), nil
}

func sampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := 0.0
	for _, x := range xs {
		m += x
	}
	m /= float64(len(xs))

	ss := 0.0
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

func pearson(a, b []float64) float64 {
	n := len(a)
	if n == 0 || n != len(b) {
		return 0
	}

	ma, mb := 0.0, 0.0
	for i := 0; i < n; i++ {
		ma += a[i]
		mb += b[i]
	}
	ma /= float64(n)
	mb /= float64(n)

	var cov, va, vb float64
	for i := 0; i < n; i++ {
		da, db := a[i]-ma, b[i]-mb
		cov += da * db
		va += da * da
		vb += db * db
	}
	if va == 0 || vb == 0 {
		return 0
	}
	return cov / math.Sqrt(va*vb)
}

// PortfolioStdDev computes sqrt(wᵀΣw) where Σ has volatility² on the
// diagonal and vol_i*vol_j*corr_ij off it. The variance is floored at zero
// to guard against negative numerical artifacts.
func PortfolioStdDev(weights, vols []float64, corr [][]float64) float64 {
	n := len(weights)
	variance := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			c := 1.0
			if i != j {
				c = corr[i][j]
			}
			variance += weights[i] * weights[j] * vols[i] * vols[j] * c
		}
	}
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// zScore is the standard-normal quantile for the given confidence level,
// e.g. about 1.645 at 0.95.
func zScore(confidence float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*confidence-1)
}
