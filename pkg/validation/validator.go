// Package validation rejects out-of-domain prediction inputs before they reach
// the encoder. Rules are expressed as go-playground/validator struct tags and
// evaluated in field order; the first failing field decides the reason.
package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/lad94220/ML-Lab1/pkg/grade"
)

// Result is the outcome of Validate. Reason is empty when OK is true.
type Result struct {
	OK     bool
	Reason string
}

// Input mirrors a prediction request. Field order is rule order.
type Input struct {
	Carat   float64 `validate:"gt=0,finite"`
	Cut     string  `validate:"cut"`
	Color   string  `validate:"color"`
	Clarity string  `validate:"clarity"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// reasons are keyed by struct field name.
var reasons = map[string]string{
	"Carat":   "carat must be positive",
	"Cut":     "cut must be one of: " + strings.Join(grade.Cut.Labels(), ", "),
	"Color":   "color must be one of: " + strings.Join(grade.Color.Descending(), ", "),
	"Clarity": "clarity must be one of: " + strings.Join(grade.Clarity.Descending(), ", "),
}

func scaleRule(s *grade.Scale) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return fl.Field().Kind() == reflect.String && s.Contains(fl.Field().String())
	}
}

// GetValidator returns the shared validator with the grade rules registered.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		mustRegister(v, "cut", scaleRule(grade.Cut))
		mustRegister(v, "color", scaleRule(grade.Color))
		mustRegister(v, "clarity", scaleRule(grade.Clarity))
		mustRegister(v, "finite", func(fl validator.FieldLevel) bool {
			f := fl.Field().Float()
			return !math.IsInf(f, 0) && !math.IsNaN(f)
		})
		validate = v
	})
	return validate
}

// mustRegister panics so a broken rule cannot silently accept every value.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// Validate checks carat, cut, color and clarity in that order.
func Validate(carat float64, cut, color, clarity string) Result {
	return validateInput(Input{Carat: carat, Cut: cut, Color: color, Clarity: clarity})
}

func validateInput(in Input) Result {
	err := GetValidator().Struct(in)
	if err == nil {
		return Result{OK: true}
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return Result{Reason: err.Error()}
	}
	if reason, ok := reasons[fieldErrs[0].Field()]; ok {
		return Result{Reason: reason}
	}
	return Result{Reason: fieldErrs[0].Error()}
}
