package pipeline

import (
	"context"

	. "jobpower/common"
)

// Apply f to every input on a pool of workers.  The result for inputs[i] is in slot i no matter
// which worker computed it or when.  A panic in f is recovered; the first panic or context error
// is returned after all inputs have been accounted for, and the slots of failed inputs hold zero
// values.
func parallelMap[T, R any](
	ctx context.Context,
	workers int,
	inputs []T,
	f func(T) R,
) ([]R, error) {
	type resultrec struct {
		ix  int
		r   R
		err error
	}
	pending := make(chan int, len(inputs))
	results := make(chan resultrec, len(inputs))

	for range max(min(workers, len(inputs)), 1) {
		go (func() {
			for ix := range pending {
				res := resultrec{ix: ix}
				if res.err = ctx.Err(); res.err == nil {
					res.err = Protect(func() error {
						res.r = f(inputs[ix])
						return nil
					})
				}
				results <- res
			}
		})()
	}

	for ix := range inputs {
		pending <- ix
	}
	// Make the goroutines exit once the work is done.
	close(pending)

	out := make([]R, len(inputs))
	var err error
	for range inputs {
		res := <-results
		out[res.ix] = res.r
		if res.err != nil && err == nil {
			err = res.err
		}
	}
	return out, err
}
