package ports

// CriticalValueLookup maps a formatted two-tailed adjusted confidence level
// (for example "0.975") to its critical value
type CriticalValueLookup interface {
	CriticalValue(key string) (float64, error)
}
