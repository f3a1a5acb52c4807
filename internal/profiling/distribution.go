package profiling

import (
	"math"

	"github.com/montanaflynn/stats"

	domainprofiling "gocleanse/domain/datareadiness/profiling"
)

// Summarize computes the describe() block for a numeric column
func Summarize(data []float64) (domainprofiling.NumericSummary, error) {
	summary := domainprofiling.NumericSummary{}

	mean, err := stats.Mean(data)
	if err != nil {
		return summary, err
	}

	// describe() reports the sample standard deviation
	stdDev := math.NaN()
	if len(data) > 1 {
		stdDev, err = stats.StandardDeviationSample(data)
		if err != nil {
			return summary, err
		}
	}

	min, err := stats.Min(data)
	if err != nil {
		return summary, err
	}

	max, err := stats.Max(data)
	if err != nil {
		return summary, err
	}

	median, err := stats.Median(data)
	if err != nil {
		return summary, err
	}

	q25, err := stats.Percentile(data, 25)
	if err != nil {
		q25 = min
	}

	q75, err := stats.Percentile(data, 75)
	if err != nil {
		q75 = max
	}

	summary.Mean = mean
	summary.StdDev = stdDev
	summary.Min = min
	summary.Q25 = q25
	summary.Median = median
	summary.Q75 = q75
	summary.Max = max
	summary.Skewness = calculateSkewness(data, mean, stdDev)
	summary.Kurtosis = calculateKurtosis(data, mean, stdDev)

	return summary, nil
}

// Mean returns the arithmetic mean
func Mean(data []float64) (float64, error) {
	return stats.Mean(data)
}

// Median returns the median
func Median(data []float64) (float64, error) {
	return stats.Median(data)
}

// Mode returns the most frequent value; ties resolve to the smallest value.
// When every value is equally frequent the smallest value is returned.
func Mode(data []float64) (float64, error) {
	modes, err := stats.Mode(data)
	if err != nil {
		return 0, err
	}
	if len(modes) == 0 {
		return stats.Min(data)
	}
	best := modes[0]
	for _, m := range modes[1:] {
		if m < best {
			best = m
		}
	}
	return best, nil
}

// PopulationMeanStdDev returns the population mean and standard deviation (ddof = 0)
func PopulationMeanStdDev(data []float64) (float64, float64, error) {
	mean, err := stats.Mean(data)
	if err != nil {
		return 0, 0, err
	}
	stdDev, err := stats.StandardDeviationPopulation(data)
	if err != nil {
		return 0, 0, err
	}
	return mean, stdDev, nil
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 || math.IsNaN(stdDev) {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0

	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n

	// Bias correction for sample skewness
	correction := math.Sqrt(n*(n-1)) / (n - 2)
	skewness *= correction

	return skewness
}

// calculateKurtosis computes sample excess kurtosis
func calculateKurtosis(data []float64, mean, stdDev float64) float64 {
	if len(data) < 4 || stdDev == 0 || math.IsNaN(stdDev) {
		return 0
	}

	n := float64(len(data))
	sumFourthDeviations := 0.0

	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumFourthDeviations += deviation * deviation * deviation * deviation
	}

	kurtosis := sumFourthDeviations / n
	excessKurtosis := kurtosis - 3

	// Bias correction for sample excess kurtosis
	correction := (n - 1) / ((n - 2) * (n - 3))
	excessKurtosis = excessKurtosis*correction + 6/(n+1)

	return excessKurtosis
}
