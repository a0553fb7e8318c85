package common

import (
	"fmt"
	"runtime/debug"
)

// Invoke thunk, converting a panic into an error.  This is used to keep one bad unit of work from
// taking down a batch that is running on a worker pool.

func Protect(thunk func() error) (err error) {
	defer func() {
		if msg := recover(); msg != nil {
			Log.Debugf("Recovered panic: %v\n%s", msg, debug.Stack())
			err = fmt.Errorf("Panic: %v", msg)
		}
	}()
	return thunk()
}
