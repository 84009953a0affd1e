package validation

import (
	"math"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/lad94220/ML-Lab1/pkg/grade"
)

func TestValidateAcceptsEveryKnownCombination(t *testing.T) {
	for _, cut := range grade.Cut.Labels() {
		for _, color := range grade.Color.Labels() {
			for _, clarity := range grade.Clarity.Labels() {
				res := Validate(0.31, cut, color, clarity)
				assert.True(t, res.OK, "%s/%s/%s", cut, color, clarity)
				assert.Empty(t, res.Reason)
			}
		}
	}
}

func TestValidateRejectsNonPositiveCarat(t *testing.T) {
	for _, c := range []float64{0, -0.01, -5, math.Inf(-1), math.NaN(), math.Inf(1)} {
		res := Validate(c, "Ideal", "D", "IF")
		assert.False(t, res.OK, "carat=%v", c)
		assert.Equal(t, "carat must be positive", res.Reason)
	}
}

func TestValidateRejectsUnknownCut(t *testing.T) {
	res := Validate(1.0, "Excellent", "D", "IF")
	assert.False(t, res.OK)
	assert.Equal(t, "cut must be one of: Fair, Good, Very Good, Premium, Ideal", res.Reason)

	// case-sensitive
	res = Validate(1.0, "ideal", "D", "IF")
	assert.False(t, res.OK)
	assert.True(t, strings.HasPrefix(res.Reason, "cut must be one of"))
}

func TestValidateRejectsUnknownColorAndClarity(t *testing.T) {
	res := Validate(1.0, "Good", "K", "IF")
	assert.False(t, res.OK)
	assert.Equal(t, "color must be one of: D, E, F, G, H, I, J", res.Reason)

	res = Validate(1.0, "Good", "E", "I2")
	assert.False(t, res.OK)
	assert.Equal(t, "clarity must be one of: IF, VVS1, VVS2, VS1, VS2, SI1, SI2, I1", res.Reason)
}

func TestValidateFirstFailureWins(t *testing.T) {
	res := Validate(0, "bad", "bad", "bad")
	assert.Equal(t, "carat must be positive", res.Reason)

	res = Validate(1, "bad", "bad", "bad")
	assert.True(t, strings.HasPrefix(res.Reason, "cut"))

	res = Validate(1, "Fair", "bad", "bad")
	assert.True(t, strings.HasPrefix(res.Reason, "color"))
}

func TestMustRegisterPanicsOnBadTag(t *testing.T) {
	v := validator.New()
	assert.Panics(t, func() { mustRegister(v, "", scaleRule(grade.Cut)) })
	assert.NotPanics(t, func() { mustRegister(v, "cut", scaleRule(grade.Cut)) })
}

func TestGradeRulesRegistered(t *testing.T) {
	res := validateInput(Input{Carat: 1, Cut: "Ideal", Color: "D", Clarity: "XX"})
	assert.False(t, res.OK)
	assert.True(t, strings.HasPrefix(res.Reason, "clarity"))
}
