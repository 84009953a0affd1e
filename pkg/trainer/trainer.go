// Package trainer fits the price model offline from a cleaned dataset and
// writes the artifact the server loads.
package trainer

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/lad94220/ML-Lab1/pkg/common"
	"github.com/lad94220/ML-Lab1/pkg/dataset"
	"github.com/lad94220/ML-Lab1/pkg/logging"
	"github.com/lad94220/ML-Lab1/pkg/model"
)

var ErrNoRows = errors.New("trainer: no usable rows")

// Result describes a finished fit.
type Result struct {
	Model *model.LinearModel
	Rows  int
	// Skipped counts rows dropped for a non-positive carat or price.
	Skipped int
	R2      float64
}

// Features returns the model row for d: log carat followed by the three ranks.
func Features(d common.Diamond) model.Features {
	var x model.Features
	x[model.LogCarat] = math.Log(d.Carat)
	x[model.CutRank] = float64(d.Cut)
	x[model.ColorRank] = float64(d.Color)
	x[model.ClarityRank] = float64(d.Clarity)
	return x
}

// Fit regresses log price on the feature rows by ordinary least squares.
func Fit(rows []common.Diamond) (*Result, error) {
	clean := dataset.Clean(rows)
	if len(clean) == 0 {
		return nil, ErrNoRows
	}
	xs := make([]model.Features, len(clean))
	ys := make([]float64, len(clean))
	for i, d := range clean {
		xs[i] = Features(d)
		ys[i] = math.Log(d.Price)
	}

	lm := model.NewLinearModel()
	if err := lm.Train(xs, ys); err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	return &Result{
		Model:   lm,
		Rows:    lm.Samples(),
		Skipped: len(rows) - len(clean),
		R2:      lm.Score(xs, ys),
	}, nil
}

// Run reads the cleaned CSV at dataPath, fits the model and saves it to outPath.
func Run(dataPath, outPath string) (*Result, error) {
	start := time.Now()
	rows, err := dataset.ReadFile(dataPath)
	if err != nil {
		return nil, err
	}
	res, err := Fit(rows)
	if err != nil {
		return nil, err
	}
	if err := model.Save(outPath, res.Model); err != nil {
		return nil, fmt.Errorf("save artifact: %w", err)
	}

	ev := logging.Info().
		Str("data", dataPath).
		Str("artifact", outPath).
		Int("rows", res.Rows).
		Int("skipped", res.Skipped).
		Float64("r2", res.R2).
		Float64("intercept", res.Model.Intercept)
	for i, name := range model.FeatureNames {
		ev = ev.Float64(name, res.Model.Coefficients[i])
	}
	ev.Dur("took", time.Since(start)).Msg("model trained")
	return res, nil
}

// Prepare converts a raw labelled dataset into the cleaned ranked form and
// returns the number of rows written.
func Prepare(rawPath, outPath string) (int, error) {
	rows, err := dataset.ReadFile(rawPath)
	if err != nil {
		return 0, err
	}
	clean := dataset.Clean(rows)
	if err := dataset.WriteFile(outPath, clean); err != nil {
		return 0, err
	}
	logging.Info().
		Str("raw", rawPath).
		Str("out", outPath).
		Int("rows", len(clean)).
		Int("dropped", len(rows)-len(clean)).
		Msg("dataset cleaned")
	return len(clean), nil
}
