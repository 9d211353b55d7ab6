package signals

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/bobmcallan/papertrade/internal/models"
)

// closesGen generates a window of positive closing prices.
func closesGen(minLen, maxLen int) gopter.Gen {
	return gen.SliceOfN(maxLen, gen.Float64Range(1.0, 1000.0)).Map(func(closes []float64) []float64 {
		for len(closes) < minLen {
			closes = append(closes, 100.0)
		}
		return closes
	})
}

func TestProperty_ConfidenceWithinBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("confidence is within [0, 1]", prop.ForAll(
		func(closes []float64) bool {
			engine := NewEngine(DefaultParams())
			sig, err := engine.Compute("TEST", closes)
			if err != nil {
				return false
			}
			return sig.Confidence >= 0 && sig.Confidence <= 1
		},
		closesGen(2, 20),
	))

	properties.TestingRun(t)
}

func TestProperty_ActionMatchesZScore(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("BUY and SELL require the z-score to cross the threshold", prop.ForAll(
		func(closes []float64) bool {
			params := DefaultParams()
			engine := NewEngine(params)
			sig, err := engine.Compute("TEST", closes)
			if err != nil {
				return false
			}
			switch sig.Action {
			case models.ActionSell:
				return sig.ZScore > params.StdDevThreshold
			case models.ActionBuy:
				return sig.ZScore < -params.StdDevThreshold
			case models.ActionHold:
				return true
			}
			return false
		},
		closesGen(2, 20),
	))

	properties.TestingRun(t)
}

func TestProperty_WeakSignalsCollapse(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("deviations under the display floor report zero confidence", prop.ForAll(
		func(closes []float64) bool {
			params := DefaultParams()
			engine := NewEngine(params)
			sig, err := engine.Compute("TEST", closes)
			if err != nil || sig.StdDev == 0 {
				return err == nil
			}
			raw := math.Min(1, math.Abs(sig.ZScore)/params.StdDevThreshold)
			if raw < params.MinConfidence {
				return sig.Confidence == 0 && sig.Action == models.ActionHold
			}
			return sig.Confidence == raw
		},
		closesGen(2, 20),
	))

	properties.TestingRun(t)
}

func TestProperty_StatsMatchDefinition(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("mean and std dev follow the population definitions", prop.ForAll(
		func(closes []float64) bool {
			engine := NewEngine(DefaultParams())
			sig, err := engine.Compute("TEST", closes)
			if err != nil {
				return false
			}

			var sum float64
			for _, c := range closes {
				sum += c
			}
			mean := sum / float64(len(closes))

			var sumSq float64
			for _, c := range closes {
				d := c - mean
				sumSq += d * d
			}
			stdDev := math.Sqrt(sumSq / float64(len(closes)))

			return math.Abs(sig.Mean-mean) < 1e-9 &&
				math.Abs(sig.StdDev-stdDev) < 1e-9 &&
				sig.CurrentPrice == closes[len(closes)-1]
		},
		closesGen(2, 20),
	))

	properties.TestingRun(t)
}
