// Package pricing composes validation, grade encoding and the price model
// into a single prediction call.
package pricing

import (
	"errors"
	"fmt"
	"math"

	"github.com/lad94220/ML-Lab1/pkg/grade"
	"github.com/lad94220/ML-Lab1/pkg/model"
	"github.com/lad94220/ML-Lab1/pkg/validation"
)

var (
	ErrModelUnavailable = errors.New("model unavailable: train the model first")
	ErrNonFinite        = errors.New("model produced a non-finite price")
)

// ValidationError is returned when the request is outside the model's domain.
// It is the caller's fault and carries a human-readable reason.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Request is one diamond to price.
type Request struct {
	Carat   float64
	Cut     string
	Color   string
	Clarity string
}

// Pipeline is stateless apart from the read-only model and may be shared
// across goroutines.
type Pipeline struct {
	model model.Regressor
}

// NewPipeline wraps m. A nil m leaves the pipeline unloaded: every Predict
// fails with ErrModelUnavailable.
func NewPipeline(m model.Regressor) *Pipeline {
	return &Pipeline{model: m}
}

// Load reads the artifact at path. When the artifact cannot be read the
// returned pipeline is unloaded and err explains why; the pipeline is never nil.
func Load(path string) (*Pipeline, error) {
	lm, err := model.Load(path)
	if err != nil {
		return NewPipeline(nil), err
	}
	return NewPipeline(lm), nil
}

func (p *Pipeline) Loaded() bool { return p.model != nil }

// Encode turns a request into the model's feature row. It assumes the request
// has been validated; unknown grades encode as grade.Unknown.
func Encode(req Request) model.Features {
	var x model.Features
	x[model.LogCarat] = math.Log(req.Carat)
	x[model.CutRank] = float64(grade.Cut.Encode(req.Cut))
	x[model.ColorRank] = float64(grade.Color.Encode(req.Color))
	x[model.ClarityRank] = float64(grade.Clarity.Encode(req.Clarity))
	return x
}

// Predict validates req, runs the model and returns the price in dollars.
func (p *Pipeline) Predict(req Request) (float64, error) {
	if res := validation.Validate(req.Carat, req.Cut, req.Color, req.Clarity); !res.OK {
		return 0, &ValidationError{Reason: res.Reason}
	}
	if p.model == nil {
		return 0, ErrModelUnavailable
	}

	logPrice := p.model.Predict(Encode(req))
	price := math.Exp(logPrice)
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("%w (log price %v)", ErrNonFinite, logPrice)
	}
	return price, nil
}
