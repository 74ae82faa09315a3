package domain

// DefaultMaxOperationNameDistance is the normalized name distance under which
// two operations with different parameter types may still be paired.
const DefaultMaxOperationNameDistance = 0.4

// Config tunes operation matching.
type Config struct {
	MaxOperationNameDistance float64
}

// DefaultConfig returns the stock matching configuration.
func DefaultConfig() Config {
	return Config{MaxOperationNameDistance: DefaultMaxOperationNameDistance}
}
