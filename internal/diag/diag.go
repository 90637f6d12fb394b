// Package diag centralizes the two error channels the IR core uses: hard
// invariant violations (panic, after a log line) and nothing else. Passes
// and matchers report "expected absence" results as plain zero values or
// booleans, never through this package.
package diag

import (
	"fmt"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("midend.ir")

// Invariant panics with a formatted diagnostic when cond is false. It is the
// only sanctioned way to surface a broken IR invariant (misaligned operand
// type, destroying a still-used value, unordered live-interval insertion, an
// unreached case in an exhaustive switch over a closed kind set). There is no
// recovery path: callers never recover from this panic in production code.
func Invariant(cond bool, format string, args ...any) {
	if cond {
		return
	}
	msg := fmt.Sprintf(format, args...)
	log.Errorf("invariant violated: %s", msg)
	panic("midend/ir: invariant violated: " + msg)
}

// Unreachable panics unconditionally. Used in the default arm of a switch
// over a closed enum (InstrKind, TypeKind, ...) where every case must be
// handled explicitly; reaching the default means a new kind was added to the
// enum without updating every exhaustive switch over it.
func Unreachable(format string, args ...any) {
	Invariant(false, format, args...)
}
