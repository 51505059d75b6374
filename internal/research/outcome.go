package research

// Outcome carries a stage result together with how it was produced. A
// degraded outcome still holds a usable value: every stage in the pipeline
// falls back rather than failing, so callers branch on quality, not on
// errors.
type Outcome[T any] struct {
	Value    T
	Degraded bool
	Reason   string
}

// Ok wraps a primary-path result.
func Ok[T any](value T) Outcome[T] {
	return Outcome[T]{Value: value}
}

// Degraded wraps a fallback-path result with the reason the primary path
// was abandoned.
func Degraded[T any](value T, reason string) Outcome[T] {
	return Outcome[T]{Value: value, Degraded: true, Reason: reason}
}
