// Package goroutine provides utilities for safely launching goroutines with panic recovery.
package goroutine

import (
	"fmt"
	"runtime/debug"

	"github.com/cryptogift/ledger/internal/shared/logger"
)

// SafeGo launches a goroutine with panic recovery. If the goroutine panics,
// the panic is caught and logged with stack trace instead of crashing the process.
func SafeGo(log logger.Interface, name string, fn func()) {
	go func() {
		defer recoverAndLog(log, name)
		fn()
	}()
}

// SafeGoErr is SafeGo for functions that report failure. A non-nil error is
// logged and, when errCh is not nil, forwarded to it without blocking.
func SafeGoErr(log logger.Interface, name string, errCh chan<- error, fn func() error) {
	go func() {
		defer recoverAndLog(log, name)
		if err := fn(); err != nil {
			log.Errorw("goroutine failed", "goroutine", name, "error", err)
			if errCh != nil {
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()
}

func recoverAndLog(log logger.Interface, name string) {
	if r := recover(); r != nil {
		log.Errorw("goroutine panicked",
			"goroutine", name,
			"panic", fmt.Sprintf("%v", r),
			"stack", string(debug.Stack()),
		)
	}
}
