// Package sampling estimates the sample size needed for a given confidence and
// margin of error, using the finite-population corrected normal approximation.
package sampling

import (
	"fmt"
	"math"

	"gocleanse/adapters/stats/lookup"
	"gocleanse/domain/core"
	"gocleanse/domain/dataset"
	"gocleanse/ports"
)

// MaxVarianceProportion is p(1-p) at p = 0.5, the conservative choice
const MaxVarianceProportion = 0.25

// Request holds the inputs of a sample size calculation
type Request struct {
	Population  float64 `json:"population"`
	Confidence  float64 `json:"confidence"`
	MarginError float64 `json:"margin_error"`
}

// Result is a sample size calculation together with the inputs used
type Result struct {
	Request
	AdjustedKey   string  `json:"adjusted_key"`
	CriticalValue float64 `json:"critical_value"`
	Required      int     `json:"required"`
}

// Checker computes required sample sizes against a critical value table
type Checker struct {
	table ports.CriticalValueLookup
}

// NewChecker creates a checker backed by the given lookup
func NewChecker(table ports.CriticalValueLookup) *Checker {
	return &Checker{table: table}
}

// Validate checks the parameters before any lookup
func (r Request) Validate() error {
	if !(r.Population > 0) || math.IsInf(r.Population, 1) {
		return core.NewValidationError("population", fmt.Sprintf("must be a positive finite number, got %v", r.Population))
	}
	if !(r.Confidence > 0 && r.Confidence < 1) {
		return core.NewValidationError("confidence", fmt.Sprintf("must be in (0, 1), got %v", r.Confidence))
	}
	if !(r.MarginError > 0 && r.MarginError < 1) {
		return core.NewValidationError("margin_error", fmt.Sprintf("must be in (0, 1), got %v", r.MarginError))
	}
	return nil
}

// RequiredSampleSize returns ceil(n0 / (1 + n0/N)) with n0 = z^2 * 0.25 / e^2
func (c *Checker) RequiredSampleSize(population float64, confidence, marginError float64) (int, error) {
	result, err := c.Calculate(Request{Population: population, Confidence: confidence, MarginError: marginError})
	if err != nil {
		return 0, err
	}
	return result.Required, nil
}

// Calculate is RequiredSampleSize with the intermediate values reported
func (c *Checker) Calculate(req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	key := lookup.Key(req.Confidence)
	z, err := c.table.CriticalValue(key)
	if err != nil {
		return Result{}, err
	}

	e2 := req.MarginError * req.MarginError
	numerator := z * z * MaxVarianceProportion / e2
	denominator := 1 + (z*z*MaxVarianceProportion)/(e2*req.Population)

	return Result{
		Request:       req,
		AdjustedKey:   key,
		CriticalValue: z,
		Required:      int(math.Ceil(numerator / denominator)),
	}, nil
}

// IsAdequate reports whether the table has more rows than the required sample size
func (c *Checker) IsAdequate(t *dataset.Table, population float64, confidence, marginError float64) (bool, int, error) {
	required, err := c.RequiredSampleSize(population, confidence, marginError)
	if err != nil {
		return false, 0, err
	}
	return required < t.RowCount(), required, nil
}
