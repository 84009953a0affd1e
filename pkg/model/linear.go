package model

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// dim is the normal-equation size: one intercept column plus the features.
const dim = NumFeatures + 1

var (
	ErrNoSamples = errors.New("model: no training samples")
	ErrSingular  = errors.New("model: design matrix is singular")
)

// LinearModel is an ordinary least squares fit:
// y = Intercept + Σ Coefficients[i]·x[i].
// It accumulates XᵀX and Xᵀy so samples can be streamed in.
type LinearModel struct {
	Coefficients Features
	Intercept    float64

	n   float64
	xtx *mat.SymDense
	xty *mat.VecDense
}

func NewLinearModel() *LinearModel {
	lm := &LinearModel{}
	lm.reset()
	return lm
}

// NewFromParams builds an already-fitted model, e.g. from an artifact.
func NewFromParams(coef Features, intercept float64) *LinearModel {
	lm := NewLinearModel()
	lm.Coefficients = coef
	lm.Intercept = intercept
	return lm
}

func (lm *LinearModel) reset() {
	lm.n = 0
	lm.xtx = mat.NewSymDense(dim, nil)
	lm.xty = mat.NewVecDense(dim, nil)
}

// Train refits from scratch on the given rows.
func (lm *LinearModel) Train(xs []Features, ys []float64) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("model: %d rows but %d targets", len(xs), len(ys))
	}
	lm.reset()
	for i := range xs {
		lm.add(xs[i], ys[i])
	}
	return lm.solve()
}

func (lm *LinearModel) add(x Features, y float64) {
	row := augment(x)
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			lm.xtx.SetSym(i, j, lm.xtx.At(i, j)+row[i]*row[j])
		}
		lm.xty.SetVec(i, lm.xty.AtVec(i)+row[i]*y)
	}
	lm.n++
}

func (lm *LinearModel) solve() error {
	if lm.n == 0 {
		return ErrNoSamples
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(lm.xtx); !ok {
		return ErrSingular
	}
	beta := mat.NewVecDense(dim, nil)
	if err := chol.SolveVecTo(beta, lm.xty); err != nil {
		return fmt.Errorf("%w: %v", ErrSingular, err)
	}
	lm.Intercept = beta.AtVec(0)
	for i := 0; i < NumFeatures; i++ {
		lm.Coefficients[i] = beta.AtVec(i + 1)
	}
	return nil
}

// Samples is the number of rows folded into the current fit.
func (lm *LinearModel) Samples() int { return int(lm.n) }

func (lm *LinearModel) Predict(x Features) float64 {
	y := lm.Intercept
	for i, c := range lm.Coefficients {
		y += c * x[i]
	}
	return y
}

// Score returns the coefficient of determination R² on the given rows.
func (lm *LinearModel) Score(xs []Features, ys []float64) float64 {
	if len(ys) == 0 {
		return 0
	}
	var mean float64
	for _, y := range ys {
		mean += y
	}
	mean /= float64(len(ys))

	var ssRes, ssTot float64
	for i, y := range ys {
		d := y - lm.Predict(xs[i])
		ssRes += d * d
		t := y - mean
		ssTot += t * t
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

func augment(x Features) [dim]float64 {
	var row [dim]float64
	row[0] = 1
	copy(row[1:], x[:])
	return row
}
