// Package retry provides a bounded retry helper for fallible operations.
//
// The helper is deliberately minimal: attempt-count bounded, no backoff,
// no jitter. Callers that need time-based policies should wrap it.
package retry

// Do invokes op up to attempts times total and returns the first successful
// result. An error for which retryable reports true consumes one attempt and
// triggers another invocation; the error from the final attempt is returned
// unchanged. An error for which retryable reports false is returned
// immediately without further attempts.
func Do[T any](attempts int, retryable func(error) bool, op func() (T, error)) (T, error) {
	var result T
	var err error
	for i := 0; i < attempts; i++ {
		result, err = op()
		if err == nil {
			return result, nil
		}
		if retryable == nil || !retryable(err) {
			return result, err
		}
	}
	return result, err
}

// Policy is an immutable retry policy: a total attempt budget plus the
// predicate deciding which errors are worth another attempt.
type Policy struct {
	Attempts  int
	Retryable func(error) bool
}

// DoPolicy runs op under policy p. See Do for semantics.
func DoPolicy[T any](p Policy, op func() (T, error)) (T, error) {
	return Do(p.Attempts, p.Retryable, op)
}
